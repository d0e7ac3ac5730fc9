package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/kndndrj/datasink/client"
	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/core/builders"
	"github.com/kndndrj/datasink/schema"
	"github.com/kndndrj/datasink/service"
	"github.com/kndndrj/datasink/wire"
)

func runApplySchema(ctx context.Context, addr string, args []string, log *logrus.Logger) error {
	fs := flag.NewFlagSet("apply-schema", flag.ExitOnError)
	var (
		file     = fs.String("file", "", "path of the schema file")
		database = fs.String("database", "", "target database name, empty for the default")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	loaded, err := schema.Load(*file)
	if err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	target := &remoteTarget{client: c, database: *database}
	return schema.Apply(ctx, target, loaded, log)
}

// remoteTarget applies a schema through a running server instead of a
// direct driver.
type remoteTarget struct {
	client   *client.Client
	database string
}

func (t *remoteTarget) CreateTable(ctx context.Context, tableName string, columns []core.ColumnDef) error {
	_, err := t.client.CreateTable(ctx, &wire.CreateTableRequest{
		TableName: tableName,
		Columns:   wire.FromColumnDefs(columns),
		Database:  t.database,
	})
	// reclassify so the apply loop can skip tables that already exist
	return service.FromStatus(err)
}

func (t *remoteTarget) BatchInsert(ctx context.Context, tableName string, rows []map[string]core.Value) (int64, error) {
	wireRows := make([]wire.NamedRow, len(rows))
	for i, row := range rows {
		wireRows[i] = wire.NamedRow{Values: wire.FromValues(row)}
	}

	resp, err := t.client.BatchInsert(ctx, &wire.BatchInsertRequest{
		TableName: tableName,
		Rows:      wireRows,
		Database:  t.database,
	})
	if err != nil {
		return 0, err
	}
	return resp.InsertedCount, nil
}

func (t *remoteTarget) QueryStream(ctx context.Context, sql string, params map[string]core.Value) (core.ResultStream, error) {
	result, err := t.client.QueryCollect(ctx, &wire.QueryRequest{
		SQL:        sql,
		Parameters: wire.FromValues(params),
		Database:   t.database,
	})
	if err != nil {
		return nil, err
	}

	return builders.NewResultBuilder().
		WithColumns(result.Columns...).
		WithNextFunc(builders.NextSlice(result.Rows)).
		Build(), nil
}
