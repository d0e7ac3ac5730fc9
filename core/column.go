package core

import (
	"fmt"
	"strings"
)

type ColumnType int

const (
	ColumnTypeInteger ColumnType = iota
	ColumnTypeReal
	ColumnTypeText
	ColumnTypeBlob
	ColumnTypeBoolean
	ColumnTypeTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeReal:
		return "REAL"
	case ColumnTypeText:
		return "TEXT"
	case ColumnTypeBlob:
		return "BLOB"
	case ColumnTypeBoolean:
		return "BOOLEAN"
	case ColumnTypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// ColumnTypeFromString parses a type name, case insensitively.
func ColumnTypeFromString(s string) (ColumnType, error) {
	switch strings.ToUpper(s) {
	case "INTEGER":
		return ColumnTypeInteger, nil
	case "REAL":
		return ColumnTypeReal, nil
	case "TEXT":
		return ColumnTypeText, nil
	case "BLOB":
		return ColumnTypeBlob, nil
	case "BOOLEAN":
		return ColumnTypeBoolean, nil
	case "TIMESTAMP":
		return ColumnTypeTimestamp, nil
	default:
		return ColumnTypeText, fmt.Errorf("unknown column type: %q", s)
	}
}

// ColumnDef describes a single column of a table to be created.
// Instances should be built with NewColumnDef, which keeps the
// primary-key/nullable combination consistent.
type ColumnDef struct {
	Name         string
	Type         ColumnType
	Nullable     bool
	PrimaryKey   bool
	Unique       bool
	DefaultValue string
}

// NewColumnDef builds a column definition. A primary key column is never
// nullable, regardless of the passed flag.
func NewColumnDef(name string, typ ColumnType, nullable, primaryKey, unique bool, defaultValue string) ColumnDef {
	if primaryKey {
		nullable = false
	}
	return ColumnDef{
		Name:         name,
		Type:         typ,
		Nullable:     nullable,
		PrimaryKey:   primaryKey,
		Unique:       unique,
		DefaultValue: defaultValue,
	}
}

// Column is a (name, type) pair of a query result descriptor.
type Column struct {
	Name string
	Type ColumnType
}
