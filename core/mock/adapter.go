package mock

import (
	"context"
	"sync"

	"github.com/kndndrj/datasink/core"
)

var (
	_ core.Adapter = (*Adapter)(nil)
	_ core.Driver  = (*Driver)(nil)
)

// Adapter produces scripted drivers for tests.
type Adapter struct {
	config *adapterConfig
}

func NewAdapter(opts ...AdapterOption) *Adapter {
	config := defaultAdapterConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Adapter{config: config}
}

func (a *Adapter) Connect(url string) (core.Driver, error) {
	if a.config.connectErr != nil {
		return nil, a.config.connectErr
	}

	return &Driver{
		config: a.config,
		Tables: make(map[string][]core.ColumnDef),
	}, nil
}

// Driver is a scripted capability. It records mutations so tests can
// assert on what reached the backend.
type Driver struct {
	mu     sync.Mutex
	config *adapterConfig

	Tables   map[string][]core.ColumnDef
	Inserted []map[string]core.Value
	Closed   bool
	Pings    int
}

func (d *Driver) CreateTable(_ context.Context, table string, columns []core.ColumnDef) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.Tables[table]; ok {
		return core.NewErrorf(core.ErrorAlreadyExists, "table %q already exists", table)
	}
	d.Tables[table] = columns
	return nil
}

func (d *Driver) DropTable(_ context.Context, table string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.Tables, table)
	return nil
}

func (d *Driver) Insert(_ context.Context, table string, values map[string]core.Value) (int64, error) {
	if len(values) == 0 {
		return 0, core.NewError(core.ErrorInvalidArgument, "no values provided")
	}
	if d.config.execErr != nil {
		return 0, d.config.execErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.Inserted = append(d.Inserted, values)
	return int64(len(d.Inserted)), nil
}

func (d *Driver) Update(_ context.Context, table string, values map[string]core.Value, predicate string) (int64, error) {
	if len(values) == 0 {
		return 0, core.NewError(core.ErrorInvalidArgument, "no values provided")
	}
	if d.config.execErr != nil {
		return 0, d.config.execErr
	}
	return d.config.affectedRows, nil
}

func (d *Driver) Delete(_ context.Context, table string, predicate string) (int64, error) {
	if d.config.execErr != nil {
		return 0, d.config.execErr
	}
	return d.config.affectedRows, nil
}

func (d *Driver) BatchInsert(_ context.Context, table string, rows []map[string]core.Value) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	// all-or-nothing: validate every row before recording any
	for i, row := range rows {
		if len(row) == 0 {
			return 0, core.NewErrorf(core.ErrorInvalidArgument, "row %d has no values", i)
		}
	}
	if d.config.execErr != nil {
		return 0, d.config.execErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.Inserted = append(d.Inserted, rows...)
	return int64(len(rows)), nil
}

func (d *Driver) QueryStream(ctx context.Context, query string, params map[string]core.Value) (core.ResultStream, error) {
	if eff, ok := d.config.querySideEffects[query]; ok {
		if err := eff(ctx); err != nil {
			return nil, err
		}
	}
	if d.config.queryErr != nil {
		return nil, d.config.queryErr
	}

	return NewResultStream(d.config.columns, d.config.rows, d.config.resultStreamOptions...), nil
}

func (d *Driver) Query(ctx context.Context, query string, params map[string]core.Value) (*core.QueryResult, error) {
	stream, err := d.QueryStream(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return core.Drain(stream)
}

func (d *Driver) Ping(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Pings++
	return d.config.pingErr
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Closed = true
	return nil
}
