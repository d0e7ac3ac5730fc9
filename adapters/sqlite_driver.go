package adapters

import (
	"context"
	"fmt"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/core/builders"
)

var _ core.Driver = (*sqliteDriver)(nil)

type sqliteDriver struct {
	*builders.Client
}

// CreateTable classifies the conflict itself: sqlite has no distinct error
// code for an existing table, so presence is checked up front. The caller
// holds the exclusive capability lock for DDL, which makes the check safe.
func (d *sqliteDriver) CreateTable(ctx context.Context, table string, columns []core.ColumnDef) error {
	exists, err := d.tableExists(ctx, table)
	if err != nil {
		return fmt.Errorf("tableExists: %w", err)
	}
	if exists {
		return core.NewErrorf(core.ErrorAlreadyExists, "table %q already exists", table)
	}

	return d.Client.CreateTable(ctx, table, columns)
}

func (d *sqliteDriver) tableExists(ctx context.Context, table string) (bool, error) {
	result, err := d.Client.Query(ctx,
		"SELECT name FROM sqlite_schema WHERE type = 'table' AND name = ?",
		map[string]core.Value{"name": core.TextValue(table)})
	if err != nil {
		return false, err
	}

	return len(result.Rows) > 0, nil
}
