package builders

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/kndndrj/datasink/core"
)

// Client implements the sql portion of core.Driver on top of database/sql.
// Specific adapters wrap it and add backend error classification on top.
type Client struct {
	db     *sql.DB
	config *clientConfig
}

func NewClient(db *sql.DB, opts ...ClientOption) *Client {
	config := defaultClientConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Client{
		db:     db,
		config: config,
	}
}

func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) classify(err error) error {
	if err == nil {
		return nil
	}
	return c.config.classify(err)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.db.Close()
}

// sortedKeys fixes the binding order of named value maps. Placeholders are
// positional, so the order has to be deterministic.
func sortedKeys(values map[string]core.Value) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Client) placeholders(from, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = c.config.placeholder(from + i)
	}
	return out
}

// BuildCreateTable renders the CREATE TABLE statement for the configured
// dialect. Column constraints are applied verbatim.
func (c *Client) BuildCreateTable(table string, columns []core.ColumnDef) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		def := fmt.Sprintf("%s %s", col.Name, c.config.typeSQL(col.Type))

		if col.PrimaryKey {
			def += " PRIMARY KEY"
		}
		if !col.Nullable && !col.PrimaryKey {
			def += " NOT NULL"
		}
		if col.Unique && !col.PrimaryKey {
			def += " UNIQUE"
		}
		if col.DefaultValue != "" {
			def += " DEFAULT " + col.DefaultValue
		}

		defs[i] = def
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
}

func (c *Client) CreateTable(ctx context.Context, table string, columns []core.ColumnDef) error {
	if len(columns) == 0 {
		return core.NewErrorf(core.ErrorInvalidArgument, "no columns provided for table %q", table)
	}

	_, err := c.db.ExecContext(ctx, c.BuildCreateTable(table, columns))
	return c.classify(err)
}

func (c *Client) DropTable(ctx context.Context, table string) error {
	_, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	return c.classify(err)
}

func (c *Client) buildInsert(table string, keys []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(keys, ", "),
		strings.Join(c.placeholders(1, len(keys)), ", "),
	)
}

func (c *Client) bindArgs(keys []string, values map[string]core.Value) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = c.config.bindValue(values[k])
	}
	return args
}

func (c *Client) Insert(ctx context.Context, table string, values map[string]core.Value) (int64, error) {
	if len(values) == 0 {
		return 0, core.NewError(core.ErrorInvalidArgument, "no values provided")
	}

	keys := sortedKeys(values)
	res, err := c.db.ExecContext(ctx, c.buildInsert(table, keys), c.bindArgs(keys, values)...)
	if err != nil {
		return 0, c.classify(err)
	}

	// not every backend reports generated ids; 0 is the documented sentinel
	id, err := res.LastInsertId()
	if err != nil {
		return 0, nil
	}
	return id, nil
}

func (c *Client) Update(ctx context.Context, table string, values map[string]core.Value, predicate string) (int64, error) {
	if len(values) == 0 {
		return 0, core.NewError(core.ErrorInvalidArgument, "no values provided")
	}

	keys := sortedKeys(values)
	assignments := make([]string, len(keys))
	for i, k := range keys {
		assignments[i] = fmt.Sprintf("%s = %s", k, c.config.placeholder(i+1))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), predicate)

	res, err := c.db.ExecContext(ctx, query, c.bindArgs(keys, values)...)
	if err != nil {
		return 0, c.classify(err)
	}
	return res.RowsAffected()
}

func (c *Client) Delete(ctx context.Context, table string, predicate string) (int64, error) {
	res, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", table, predicate))
	if err != nil {
		return 0, c.classify(err)
	}
	return res.RowsAffected()
}

// BatchInsert inserts all rows inside a single transaction. The first row
// error aborts and rolls back the whole batch.
func (c *Client) BatchInsert(ctx context.Context, table string, rows []map[string]core.Value) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("db.BeginTx: %w", err)
	}

	var count int64
	for i, row := range rows {
		if len(row) == 0 {
			_ = tx.Rollback()
			return 0, core.NewErrorf(core.ErrorInvalidArgument, "row %d has no values", i)
		}

		keys := sortedKeys(row)
		if _, err := tx.ExecContext(ctx, c.buildInsert(table, keys), c.bindArgs(keys, row)...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("row %d: %w", i, c.classify(err))
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("tx.Commit: %w", err)
	}
	return count, nil
}

func (c *Client) paramArgs(params map[string]core.Value) []any {
	return c.bindArgs(sortedKeys(params), params)
}

// isMutation recognizes statements that produce no row set.
func isMutation(query string) bool {
	head := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(head, "INSERT") ||
		strings.HasPrefix(head, "UPDATE") ||
		strings.HasPrefix(head, "DELETE")
}

// QueryStream executes a query lazily. Mutating statements run eagerly and
// come back as a synthetic one-row "affected_rows" result, so streaming
// callers get a uniform shape regardless of statement kind.
func (c *Client) QueryStream(ctx context.Context, query string, params map[string]core.Value) (core.ResultStream, error) {
	if isMutation(query) {
		res, err := c.db.ExecContext(ctx, query, c.paramArgs(params)...)
		if err != nil {
			return nil, c.classify(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}

		next, hasNext := NextSingle(core.IntegerValue(affected))
		return NewResultBuilder().
			WithNextFunc(next, hasNext).
			WithColumns(core.Column{Name: "affected_rows", Type: core.ColumnTypeInteger}).
			Build(), nil
	}

	dbRows, err := c.db.QueryContext(ctx, query, c.paramArgs(params)...)
	if err != nil {
		return nil, c.classify(err)
	}

	types, err := dbRows.ColumnTypes()
	if err != nil {
		_ = dbRows.Close()
		return nil, err
	}

	columns := make([]core.Column, len(types))
	for i, t := range types {
		columns[i] = core.Column{
			Name: t.Name(),
			Type: c.config.typeMapper(t.DatabaseTypeName()),
		}
	}

	// rows.Next returns false both on exhaustion and on a mid-stream
	// failure; only rows.Err tells them apart. A failure is latched so
	// the stream reports one more element whose Next surfaces the error.
	var pendingErr error

	hasNextFunc := func() bool {
		if pendingErr != nil {
			return true
		}
		if dbRows.Next() {
			return true
		}
		if dbRows.NextResultSet() && dbRows.Next() {
			return true
		}
		if err := dbRows.Err(); err != nil {
			pendingErr = c.classify(err)
			return true
		}
		return false
	}

	nextFunc := func() (core.Row, error) {
		if pendingErr != nil {
			return nil, pendingErr
		}

		scanned := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range scanned {
			pointers[i] = &scanned[i]
		}

		if err := dbRows.Scan(pointers...); err != nil {
			return nil, c.classify(err)
		}
		if err := dbRows.Err(); err != nil {
			return nil, c.classify(err)
		}

		row := make(core.Row, len(columns))
		for i := range columns {
			row[i] = core.FromStorage(scanned[i]).Coerce(columns[i].Type)
		}

		return row, nil
	}

	return NewResultBuilder().
		WithNextFunc(nextFunc, hasNextFunc).
		WithColumns(columns...).
		WithCloseFunc(func() {
			_ = dbRows.Close()
		}).
		Build(), nil
}

// Query executes a query and materializes the whole result.
func (c *Client) Query(ctx context.Context, query string, params map[string]core.Value) (*core.QueryResult, error) {
	stream, err := c.QueryStream(ctx, query, params)
	if err != nil {
		return nil, err
	}

	result, err := core.Drain(stream)
	if err != nil {
		return nil, fmt.Errorf("core.Drain: %w", err)
	}
	return result, nil
}
