package core

import "context"

type (
	// Adapter connects to a backing store by url and produces a Driver.
	// Adapters are chosen once, at registration time, by url scheme.
	Adapter interface {
		Connect(url string) (Driver, error)
	}

	// Driver is the full capability set of one live backing-store
	// connection. Implementations classify their own conflict and
	// absence errors into core.Error kinds before returning; layers
	// above never inspect backend error text.
	Driver interface {
		// CreateTable fails with ErrorAlreadyExists when the table is
		// present and otherwise applies the column constraints verbatim.
		CreateTable(ctx context.Context, table string, columns []ColumnDef) error
		// DropTable is idempotent; a missing table is not an error.
		DropTable(ctx context.Context, table string) error
		// Insert returns the backend-generated row id, 0 when the
		// backend has none.
		Insert(ctx context.Context, table string, values map[string]Value) (int64, error)
		// Update applies values to rows matching the opaque predicate
		// and returns the number of affected rows.
		Update(ctx context.Context, table string, values map[string]Value, predicate string) (int64, error)
		// Delete removes rows matching the opaque predicate and returns
		// the number of affected rows.
		Delete(ctx context.Context, table string, predicate string) (int64, error)
		// BatchInsert inserts all rows in a single transaction. An empty
		// batch returns 0 without opening a transaction; any row failure
		// rolls the whole batch back and surfaces the first error.
		BatchInsert(ctx context.Context, table string, rows []map[string]Value) (int64, error)
		// Query runs sql and materializes the full result. Parameters
		// are bound in lexicographic key order.
		Query(ctx context.Context, sql string, params map[string]Value) (*QueryResult, error)
		// QueryStream runs sql lazily: the returned stream knows its
		// columns before the first row and every pull may fail.
		// Mutating statements execute eagerly and come back as a
		// synthetic one-row "affected_rows" result.
		QueryStream(ctx context.Context, sql string, params map[string]Value) (ResultStream, error)
		// Ping reports connection liveness.
		Ping(ctx context.Context) error
		Close() error
	}
)

type (
	// Row is an ordered sequence of values matching the column list of
	// the query that produced it.
	Row []Value

	// ResultStream is a forward-only, single-pass result iterator.
	ResultStream interface {
		Columns() []Column
		HasNext() bool
		Next() (Row, error)
		Close()
	}
)

// QueryResult is a fully materialized query result.
type QueryResult struct {
	Columns []Column
	Rows    []Row
}

// Drain consumes a stream into a materialized result.
func Drain(stream ResultStream) (*QueryResult, error) {
	defer stream.Close()

	result := &QueryResult{Columns: stream.Columns()}
	for stream.HasNext() {
		row, err := stream.Next()
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}
