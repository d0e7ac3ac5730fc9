package builders

import (
	"fmt"
	"strings"

	"github.com/kndndrj/datasink/core"
)

type clientConfig struct {
	placeholder func(i int) string
	typeSQL     func(core.ColumnType) string
	typeMapper  func(dbType string) core.ColumnType
	bindValue   func(core.Value) any
	classify    func(error) error
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		placeholder: func(int) string { return "?" },
		typeSQL:     DefaultTypeSQL,
		typeMapper:  DefaultTypeMapper,
		bindValue:   core.Value.ToStorage,
		classify:    func(err error) error { return err },
	}
}

type ClientOption func(*clientConfig)

// WithNumberedPlaceholders switches the statement builders to $1-style
// placeholders (postgres and friends).
func WithNumberedPlaceholders() ClientOption {
	return func(cc *clientConfig) {
		cc.placeholder = func(i int) string { return fmt.Sprintf("$%d", i) }
	}
}

// WithErrorClassifier installs the backend's error classification: fn maps
// driver errors to core.Error kinds before they leave the capability.
func WithErrorClassifier(fn func(error) error) ClientOption {
	return func(cc *clientConfig) {
		cc.classify = fn
	}
}

// WithTypeSQL overrides the column-type rendering for CREATE TABLE.
func WithTypeSQL(fn func(core.ColumnType) string) ClientOption {
	return func(cc *clientConfig) {
		cc.typeSQL = fn
	}
}

// WithValueBinder overrides how values become driver arguments. Backends
// whose drivers mishandle a storage type pick their own representation
// here instead.
func WithValueBinder(fn func(core.Value) any) ClientOption {
	return func(cc *clientConfig) {
		cc.bindValue = fn
	}
}

// WithTypeMapper overrides the mapping of backend column type names to
// descriptor types.
func WithTypeMapper(fn func(dbType string) core.ColumnType) ClientOption {
	return func(cc *clientConfig) {
		cc.typeMapper = fn
	}
}

// DefaultTypeSQL renders column types the way sqlite stores them: booleans
// and timestamps live in INTEGER columns.
func DefaultTypeSQL(t core.ColumnType) string {
	switch t {
	case core.ColumnTypeInteger, core.ColumnTypeBoolean, core.ColumnTypeTimestamp:
		return "INTEGER"
	case core.ColumnTypeReal:
		return "REAL"
	case core.ColumnTypeBlob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// DefaultTypeMapper maps common backend type names to descriptor types.
func DefaultTypeMapper(dbType string) core.ColumnType {
	switch strings.ToUpper(dbType) {
	case "INTEGER", "INT", "INT2", "INT4", "INT8", "BIGINT", "SMALLINT", "MEDIUMINT", "SERIAL", "BIGSERIAL":
		return core.ColumnTypeInteger
	case "REAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "NUMERIC", "DECIMAL":
		return core.ColumnTypeReal
	case "BLOB", "BYTEA", "BINARY", "VARBINARY", "LONGBLOB", "MEDIUMBLOB", "TINYBLOB":
		return core.ColumnTypeBlob
	case "BOOLEAN", "BOOL":
		return core.ColumnTypeBoolean
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "DATE", "TIME":
		return core.ColumnTypeTimestamp
	default:
		return core.ColumnTypeText
	}
}
