package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kndndrj/datasink/client"
	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/wire"
)

func dial(addr string) (*client.Client, error) {
	c, err := client.New(addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return c, nil
}

func runStatus(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.GetServerStatus(ctx, &wire.ServerStatusRequest{})
	if err != nil {
		return err
	}

	state := "stopped"
	if resp.ServerRunning {
		state = "running"
	}
	fmt.Printf("Server: %s, uptime %ds\n\n", state, resp.UptimeSeconds)

	if len(resp.Databases) == 0 {
		fmt.Println("No databases connected")
		return nil
	}

	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.AppendHeader(table.Row{"Name", "URL", "Connected", "Since", "Connections"})
	for _, db := range resp.Databases {
		since := "unknown"
		if db.ConnectionTime > 0 {
			since = time.Unix(db.ConnectionTime, 0).UTC().Format("2006-01-02 15:04:05 UTC")
		}
		w.AppendRow(table.Row{db.Name, db.URL, db.Connected, since, db.ActiveConnections})
	}
	w.Render()

	return nil
}

func runAddDatabase(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("add-database", flag.ExitOnError)
	var (
		name = fs.String("name", "", "registry name of the connection")
		url  = fs.String("url", "", "database url, e.g. sqlite://data.db")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.AddDatabase(ctx, &wire.AddDatabaseRequest{Name: *name, URL: *url})
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Message)
	}

	fmt.Println(resp.Message)
	return nil
}

func runCreateTable(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("create-table", flag.ExitOnError)
	var (
		tableName = fs.String("table", "", "table name")
		columns   = fs.String("columns", "", `column definitions as JSON, e.g. [{"name":"id","type":"INTEGER","primary_key":true}]`)
		database  = fs.String("database", "", "target database name, empty for the default")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var defs []wire.ColumnDefinition
	if err := json.Unmarshal([]byte(*columns), &defs); err != nil {
		return fmt.Errorf("parse column definitions: %w", err)
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.CreateTable(ctx, &wire.CreateTableRequest{
		TableName: *tableName,
		Columns:   defs,
		Database:  *database,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)
	return nil
}

func runDropTable(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("drop-table", flag.ExitOnError)
	var (
		tableName = fs.String("table", "", "table name")
		database  = fs.String("database", "", "target database name, empty for the default")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.DropTable(ctx, &wire.DropTableRequest{
		TableName: *tableName,
		Database:  *database,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)
	return nil
}

func runInsert(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	var (
		tableName = fs.String("table", "", "table name")
		data      = fs.String("data", "", `row values as JSON, e.g. {"name":"ada","age":36}`)
		database  = fs.String("database", "", "target database name, empty for the default")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	values, err := parseValues(*data)
	if err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.Insert(ctx, &wire.InsertRequest{
		TableName: *tableName,
		Values:    values,
		Database:  *database,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s ID: %d\n", resp.Message, resp.InsertedID)
	return nil
}

func runUpdate(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	var (
		tableName   = fs.String("table", "", "table name")
		data        = fs.String("data", "", "new values as JSON")
		whereClause = fs.String("where", "", "condition selecting the rows to update")
		database    = fs.String("database", "", "target database name, empty for the default")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	values, err := parseValues(*data)
	if err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.Update(ctx, &wire.UpdateRequest{
		TableName:   *tableName,
		Values:      values,
		WhereClause: *whereClause,
		Database:    *database,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)
	return nil
}

func runDelete(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	var (
		tableName   = fs.String("table", "", "table name")
		whereClause = fs.String("where", "", "condition selecting the rows to delete")
		database    = fs.String("database", "", "target database name, empty for the default")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.Delete(ctx, &wire.DeleteRequest{
		TableName:   *tableName,
		WhereClause: *whereClause,
		Database:    *database,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)
	return nil
}

func runQuery(ctx context.Context, addr string, args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	var (
		sql      = fs.String("sql", "", "statement to run")
		format   = fs.String("format", "table", "output format: table, csv or json")
		database = fs.String("database", "", "target database name, empty for the default")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.QueryCollect(ctx, &wire.QueryRequest{
		SQL:      *sql,
		Database: *database,
	})
	if err != nil {
		return err
	}

	return printResult(os.Stdout, result, *format)
}

func printResult(out io.Writer, result *core.QueryResult, format string) error {
	if format == "json" {
		rows := make([]map[string]any, len(result.Rows))
		for i, row := range result.Rows {
			obj := make(map[string]any, len(result.Columns))
			for j, col := range result.Columns {
				if j < len(row) {
					obj[col.Name] = row[j].ToStorage()
				}
			}
			rows[i] = obj
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := table.NewWriter()
	w.SetOutputMirror(out)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col.Name
	}
	w.AppendHeader(header)

	for _, row := range result.Rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		w.AppendRow(cells)
	}

	if format == "csv" {
		w.RenderCSV()
	} else {
		w.Render()
	}
	return nil
}

// parseValues decodes a JSON object into wire values. Numbers keep
// their integer form when they have one.
func parseValues(data string) (map[string]wire.Value, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}

	values := make(map[string]wire.Value, len(obj))
	for key, raw := range obj {
		switch v := raw.(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				values[key] = wire.FromValue(core.IntegerValue(i))
				continue
			}
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid number for %q: %w", key, err)
			}
			values[key] = wire.FromValue(core.RealValue(f))
		case string:
			values[key] = wire.FromValue(core.TextValue(v))
		case bool:
			values[key] = wire.FromValue(core.BooleanValue(v))
		case nil:
			values[key] = wire.FromValue(core.NullValue())
		default:
			return nil, fmt.Errorf("unsupported value type for %q", key)
		}
	}

	return values, nil
}
