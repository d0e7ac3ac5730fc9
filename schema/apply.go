package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kndndrj/datasink/core"
)

// Target is the capability subset needed to apply a schema. core.Driver
// satisfies it, and so does any remote wrapper with the same shape.
type Target interface {
	CreateTable(ctx context.Context, table string, columns []core.ColumnDef) error
	BatchInsert(ctx context.Context, table string, rows []map[string]core.Value) (int64, error)
	QueryStream(ctx context.Context, sql string, params map[string]core.Value) (core.ResultStream, error)
}

// Apply creates the schema's tables, seeds its data and builds its
// indexes on target. Tables that already exist are left alone; any
// other failure aborts the whole apply.
func Apply(ctx context.Context, target Target, s *Schema, log *logrus.Logger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}

	for _, table := range s.Tables {
		columns, err := table.ToColumnDefs()
		if err != nil {
			return err
		}

		err = target.CreateTable(ctx, table.Name, columns)
		if err != nil {
			if core.KindOf(err) == core.ErrorAlreadyExists {
				log.WithField("table", table.Name).Warn("table already exists, skipping")
				continue
			}
			return fmt.Errorf("create table %q: %w", table.Name, err)
		}
		log.WithField("table", table.Name).Info("table created")
	}

	for tableName, rows := range s.Data {
		if len(rows) == 0 {
			continue
		}

		table, ok := s.Table(tableName)
		if !ok {
			return core.NewErrorf(core.ErrorInvalidArgument, "data for undefined table %q", tableName)
		}

		prepared := make([]map[string]core.Value, len(rows))
		for i, row := range rows {
			values, err := table.PrepareRow(row)
			if err != nil {
				return fmt.Errorf("table %q row %d: %w", tableName, i, err)
			}
			prepared[i] = values
		}

		count, err := target.BatchInsert(ctx, tableName, prepared)
		if err != nil {
			return fmt.Errorf("seed table %q: %w", tableName, err)
		}
		log.WithFields(logrus.Fields{"table": tableName, "rows": count}).Info("seed data inserted")
	}

	for _, index := range s.Indexes {
		stream, err := target.QueryStream(ctx, indexSQL(index), nil)
		if err != nil {
			return fmt.Errorf("create index %q: %w", index.Name, err)
		}
		if _, err := core.Drain(stream); err != nil {
			return fmt.Errorf("create index %q: %w", index.Name, err)
		}
		log.WithFields(logrus.Fields{"index": index.Name, "table": index.Table}).Info("index created")
	}

	return nil
}

func indexSQL(index IndexDef) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		index.Name, index.Table, strings.Join(index.Columns, ", "))
}
