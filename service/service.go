// Package service dispatches protocol requests onto registered database
// connections. It owns the request lifecycle and the translation between
// classified storage errors and transport status codes; it never
// inspects backend error text itself.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/registry"
	"github.com/kndndrj/datasink/wire"
)

type Service struct {
	registry  *registry.Registry
	log       *logrus.Logger
	startTime time.Time
}

func New(reg *registry.Registry, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		registry:  reg,
		log:       log,
		startTime: time.Now(),
	}
}

// resolve binds a request to a registry record. An explicitly named
// database that is missing is the caller's mistake; an empty name that
// cannot be defaulted means the server has nothing to offer.
func (s *Service) resolve(req *request, database string) (*registry.Handle, error) {
	handle, ok := s.registry.GetOrDefault(database)
	if !ok {
		if database != "" {
			return nil, core.NewErrorf(core.ErrorNotFound, "Database '%s' not found", database)
		}
		return nil, core.NewError(core.ErrorUnavailable, "No database connections available")
	}

	req.resolved(handle.Name())
	return handle, nil
}

func (s *Service) CreateTable(ctx context.Context, req *wire.CreateTableRequest) (*wire.CreateTableResponse, error) {
	r := newRequest(s.log, "create_table", req.Database)

	columns, err := wire.ToColumnDefs(req.Columns)
	if err != nil {
		return nil, r.failed(err)
	}

	handle, err := s.resolve(r, req.Database)
	if err != nil {
		return nil, r.failed(err)
	}

	r.executing()
	err = handle.Exclusive(func(driver core.Driver) error {
		return driver.CreateTable(ctx, req.TableName, columns)
	})
	if err != nil {
		return nil, r.failed(err)
	}

	r.completed()
	return &wire.CreateTableResponse{
		Success: true,
		Message: fmt.Sprintf("Table '%s' created successfully", req.TableName),
	}, nil
}

func (s *Service) DropTable(ctx context.Context, req *wire.DropTableRequest) (*wire.DropTableResponse, error) {
	r := newRequest(s.log, "drop_table", req.Database)

	handle, err := s.resolve(r, req.Database)
	if err != nil {
		return nil, r.failed(err)
	}

	r.executing()
	err = handle.Exclusive(func(driver core.Driver) error {
		return driver.DropTable(ctx, req.TableName)
	})
	if err != nil {
		return nil, r.failed(err)
	}

	r.completed()
	return &wire.DropTableResponse{
		Success: true,
		Message: fmt.Sprintf("Table '%s' dropped successfully", req.TableName),
	}, nil
}

func (s *Service) Insert(ctx context.Context, req *wire.InsertRequest) (*wire.InsertResponse, error) {
	r := newRequest(s.log, "insert", req.Database)

	handle, err := s.resolve(r, req.Database)
	if err != nil {
		return nil, r.failed(err)
	}

	r.executing()
	var insertedID int64
	err = handle.Exclusive(func(driver core.Driver) error {
		var err error
		insertedID, err = driver.Insert(ctx, req.TableName, wire.ToValues(req.Values))
		return err
	})
	if err != nil {
		return nil, r.failed(err)
	}

	r.completed()
	return &wire.InsertResponse{
		Success:    true,
		Message:    "Insert successful",
		InsertedID: insertedID,
	}, nil
}

func (s *Service) Update(ctx context.Context, req *wire.UpdateRequest) (*wire.UpdateResponse, error) {
	r := newRequest(s.log, "update", req.Database)

	handle, err := s.resolve(r, req.Database)
	if err != nil {
		return nil, r.failed(err)
	}

	r.executing()
	var affected int64
	err = handle.Exclusive(func(driver core.Driver) error {
		var err error
		affected, err = driver.Update(ctx, req.TableName, wire.ToValues(req.Values), req.WhereClause)
		return err
	})
	if err != nil {
		return nil, r.failed(err)
	}

	r.completed()
	return &wire.UpdateResponse{
		Success:      true,
		Message:      fmt.Sprintf("%d rows updated", affected),
		AffectedRows: affected,
	}, nil
}

func (s *Service) Delete(ctx context.Context, req *wire.DeleteRequest) (*wire.DeleteResponse, error) {
	r := newRequest(s.log, "delete", req.Database)

	handle, err := s.resolve(r, req.Database)
	if err != nil {
		return nil, r.failed(err)
	}

	r.executing()
	var affected int64
	err = handle.Exclusive(func(driver core.Driver) error {
		var err error
		affected, err = driver.Delete(ctx, req.TableName, req.WhereClause)
		return err
	})
	if err != nil {
		return nil, r.failed(err)
	}

	r.completed()
	return &wire.DeleteResponse{
		Success:      true,
		Message:      fmt.Sprintf("%d rows deleted", affected),
		AffectedRows: affected,
	}, nil
}

func (s *Service) BatchInsert(ctx context.Context, req *wire.BatchInsertRequest) (*wire.BatchInsertResponse, error) {
	r := newRequest(s.log, "batch_insert", req.Database)

	rows := make([]map[string]core.Value, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = wire.ToValues(row.Values)
	}

	handle, err := s.resolve(r, req.Database)
	if err != nil {
		return nil, r.failed(err)
	}

	r.executing()
	var inserted int64
	err = handle.Exclusive(func(driver core.Driver) error {
		var err error
		inserted, err = driver.BatchInsert(ctx, req.TableName, rows)
		return err
	})
	if err != nil {
		return nil, r.failed(err)
	}

	r.completed()
	return &wire.BatchInsertResponse{
		Success:       true,
		Message:       fmt.Sprintf("%d rows inserted", inserted),
		InsertedCount: inserted,
	}, nil
}

// Query streams results through send: one descriptor message with the
// columns and no rows, then one message per row. A failure before the
// first message is a request error; a failure mid-stream is delivered
// in-band as the final message and ends the stream cleanly.
func (s *Service) Query(ctx context.Context, req *wire.QueryRequest, send func(*wire.QueryResponse) error) error {
	r := newRequest(s.log, "query", req.Database)

	handle, err := s.resolve(r, req.Database)
	if err != nil {
		return r.failed(err)
	}

	r.executing()
	// the capability stays locked for the whole life of the stream, so a
	// slow consumer stalls other operations on this one connection
	err = handle.Exclusive(func(driver core.Driver) error {
		stream, err := driver.QueryStream(ctx, req.SQL, wire.ToValues(req.Parameters))
		if err != nil {
			return err
		}
		defer stream.Close()

		err = send(&wire.QueryResponse{
			ResultSet: &wire.ResultSet{Columns: wire.FromColumns(stream.Columns())},
		})
		if err != nil {
			return err
		}

		for stream.HasNext() {
			row, err := stream.Next()
			if err != nil {
				r.log.WithField("error", err).Warn("query stream failed mid-flight")
				return send(&wire.QueryResponse{
					Error: &wire.Error{Code: "QUERY_ERROR", Message: err.Error()},
				})
			}

			err = send(&wire.QueryResponse{
				ResultSet: &wire.ResultSet{Rows: []wire.Row{wire.FromRow(row)}},
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return r.failed(err)
	}

	r.completed()
	return nil
}

// GetServerStatus reports uptime and the state of every registered
// connection.
func (s *Service) GetServerStatus(_ context.Context, _ *wire.ServerStatusRequest) (*wire.ServerStatusResponse, error) {
	summaries := s.registry.List()

	statuses := make([]wire.DatabaseStatus, len(summaries))
	for i, summary := range summaries {
		statuses[i] = wire.DatabaseStatus{
			Name:              summary.Name,
			URL:               summary.URL,
			Connected:         summary.Connected,
			ConnectionTime:    summary.ConnectionTime.Unix(),
			ActiveConnections: summary.ActiveConnections,
		}
	}

	return &wire.ServerStatusResponse{
		ServerRunning: true,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Databases:     statuses,
	}, nil
}

// AddDatabase registers a new connection. Failures are reported in the
// response payload rather than as a request error, so callers always get
// a message back.
func (s *Service) AddDatabase(ctx context.Context, req *wire.AddDatabaseRequest) (*wire.AddDatabaseResponse, error) {
	r := newRequest(s.log, "add_database", req.Name)

	if req.Name == "" {
		r.failed(core.NewError(core.ErrorInvalidArgument, "empty database name"))
		return &wire.AddDatabaseResponse{
			Success: false,
			Message: "Database name cannot be empty",
		}, nil
	}

	url := normalizeSQLiteURL(req.URL)

	r.executing()
	if err := s.registry.Add(ctx, req.Name, url); err != nil {
		r.failed(err)
		return &wire.AddDatabaseResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to add database '%s': %s", req.Name, err),
		}, nil
	}

	r.completed()
	return &wire.AddDatabaseResponse{
		Success: true,
		Message: fmt.Sprintf("Database '%s' added successfully", req.Name),
	}, nil
}

// normalizeSQLiteURL appends create mode to sqlite urls that carry no
// options, so pointing at a fresh file just works.
func normalizeSQLiteURL(url string) string {
	if strings.HasPrefix(url, "sqlite://") && !strings.Contains(url, "?") {
		return url + "?mode=rwc"
	}
	return url
}
