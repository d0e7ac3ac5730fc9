// Package schema loads declarative database definitions from TOML
// files: table layouts, seed data and index definitions.
package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kndndrj/datasink/core"
)

// currentTimestamp is the magic default that resolves to the time of
// application.
const currentTimestamp = "CURRENT_TIMESTAMP"

type Schema struct {
	Database DatabaseInfo         `toml:"database"`
	Tables   []TableDef           `toml:"tables"`
	Data     map[string][]RowData `toml:"data"`
	Indexes  []IndexDef           `toml:"indexes"`
}

// RowData is one seed row as decoded from TOML, keyed by column name.
type RowData map[string]any

type DatabaseInfo struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Version     string `toml:"version"`
}

type TableDef struct {
	Name        string      `toml:"name"`
	Description string      `toml:"description"`
	Columns     []ColumnDef `toml:"columns"`
}

type ColumnDef struct {
	Name          string         `toml:"name"`
	Type          string         `toml:"type"`
	Nullable      bool           `toml:"nullable"`
	PrimaryKey    bool           `toml:"primary_key"`
	Unique        bool           `toml:"unique"`
	AutoIncrement bool           `toml:"auto_increment"`
	Default       string         `toml:"default"`
	ForeignKey    *ForeignKeyDef `toml:"foreign_key"`
}

type ForeignKeyDef struct {
	Table  string `toml:"table"`
	Column string `toml:"column"`
}

type IndexDef struct {
	Table   string   `toml:"table"`
	Name    string   `toml:"name"`
	Columns []string `toml:"columns"`
}

// Load reads and validates a schema file.
func Load(path string) (*Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	var schema Schema
	if err := toml.Unmarshal(content, &schema); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}

	if err := schema.validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (s *Schema) validate() error {
	tables := make(map[string]struct{}, len(s.Tables))

	for _, table := range s.Tables {
		if table.Name == "" {
			return core.NewError(core.ErrorInvalidArgument, "table without a name")
		}
		if _, ok := tables[table.Name]; ok {
			return core.NewErrorf(core.ErrorInvalidArgument, "duplicate table %q", table.Name)
		}
		tables[table.Name] = struct{}{}

		if len(table.Columns) == 0 {
			return core.NewErrorf(core.ErrorInvalidArgument, "table %q has no columns", table.Name)
		}
		for _, col := range table.Columns {
			if _, err := core.ColumnTypeFromString(col.Type); err != nil {
				return core.NewErrorf(core.ErrorInvalidArgument, "table %q column %q: %s", table.Name, col.Name, err)
			}
		}
	}

	for name := range s.Data {
		if _, ok := tables[name]; !ok {
			return core.NewErrorf(core.ErrorInvalidArgument, "data for undefined table %q", name)
		}
	}
	for _, index := range s.Indexes {
		if _, ok := tables[index.Table]; !ok {
			return core.NewErrorf(core.ErrorInvalidArgument, "index %q on undefined table %q", index.Name, index.Table)
		}
	}

	return nil
}

// Table returns the definition of the named table.
func (s *Schema) Table(name string) (*TableDef, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// ToColumnDefs converts a table definition to core column definitions.
func (t *TableDef) ToColumnDefs() ([]core.ColumnDef, error) {
	defs := make([]core.ColumnDef, len(t.Columns))
	for i, col := range t.Columns {
		typ, err := core.ColumnTypeFromString(col.Type)
		if err != nil {
			return nil, core.WrapError(core.ErrorInvalidArgument, err)
		}
		defs[i] = core.NewColumnDef(col.Name, typ, col.Nullable, col.PrimaryKey, col.Unique, col.Default)
	}
	return defs, nil
}

// PrepareRow turns one seed row into insert values: explicit values are
// type checked, absent ones fall back to the column default, and
// auto-increment columns are always left to the backend. A missing
// value on a non-nullable column without a default is an error.
func (t *TableDef) PrepareRow(row RowData) (map[string]core.Value, error) {
	values := make(map[string]core.Value)

	for _, col := range t.Columns {
		if col.AutoIncrement {
			continue
		}

		if raw, ok := row[col.Name]; ok {
			value, err := decodeValue(raw, col.Type)
			if err != nil {
				return nil, core.NewErrorf(core.ErrorInvalidArgument, "column %q: %s", col.Name, err)
			}
			values[col.Name] = value
			continue
		}

		if col.Default != "" {
			if value, ok := decodeDefault(col.Default, col.Type); ok {
				values[col.Name] = value
			}
			continue
		}

		if !col.Nullable {
			return nil, core.NewErrorf(core.ErrorInvalidArgument,
				"missing required field %q and no default value", col.Name)
		}
	}

	return values, nil
}

// decodeValue converts a decoded TOML value against the declared column
// type.
func decodeValue(raw any, columnType string) (core.Value, error) {
	typ := strings.ToUpper(columnType)

	switch v := raw.(type) {
	case int64:
		switch typ {
		case "INTEGER":
			return core.IntegerValue(v), nil
		case "TIMESTAMP":
			return core.TimestampValue(v), nil
		}
	case float64:
		if typ == "REAL" {
			return core.RealValue(v), nil
		}
	case string:
		switch typ {
		case "TEXT":
			return core.TextValue(v), nil
		case "TIMESTAMP":
			if v == currentTimestamp {
				return core.TimestampValue(time.Now().Unix()), nil
			}
		}
	case bool:
		if typ == "BOOLEAN" {
			return core.BooleanValue(v), nil
		}
	case time.Time:
		if typ == "TIMESTAMP" {
			return core.TimestampValue(v.Unix()), nil
		}
	}

	return core.Value{}, fmt.Errorf("cannot convert %T value to %s", raw, columnType)
}

// decodeDefault parses a column default into a value. Unparseable
// defaults are skipped rather than failing the row; the backend applies
// them itself on insert.
func decodeDefault(def, columnType string) (core.Value, bool) {
	switch def {
	case currentTimestamp:
		return core.TimestampValue(time.Now().Unix()), true
	case "true":
		return core.BooleanValue(true), true
	case "false":
		return core.BooleanValue(false), true
	}

	switch strings.ToUpper(columnType) {
	case "INTEGER":
		if i, err := strconv.ParseInt(def, 10, 64); err == nil {
			return core.IntegerValue(i), true
		}
	case "REAL":
		if f, err := strconv.ParseFloat(def, 64); err == nil {
			return core.RealValue(f), true
		}
	case "TEXT":
		text := strings.Trim(strings.Trim(def, "'"), `"`)
		return core.TextValue(text), true
	}

	return core.Value{}, false
}
