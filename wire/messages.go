// Package wire defines the JSON messages of the DataSink protocol and
// their conversions to and from the core model. Both ends of the
// connection share these structs, so the JSON field names are the
// contract.
package wire

// Value carries exactly one of its variants. An explicit Null and an
// absent value both decode to null.
type Value struct {
	IntValue       *int64   `json:"int_value,omitempty"`
	RealValue      *float64 `json:"real_value,omitempty"`
	TextValue      *string  `json:"text_value,omitempty"`
	BlobValue      *[]byte  `json:"blob_value,omitempty"`
	BoolValue      *bool    `json:"bool_value,omitempty"`
	TimestampValue *int64   `json:"timestamp_value,omitempty"`
	NullValue      bool     `json:"null_value,omitempty"`
}

// ColumnDefinition describes one column of a table to be created.
type ColumnDefinition struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Nullable     bool   `json:"nullable"`
	PrimaryKey   bool   `json:"primary_key"`
	Unique       bool   `json:"unique"`
	DefaultValue string `json:"default_value,omitempty"`
}

// Column is one entry of a query result descriptor.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Row struct {
	Values []Value `json:"values"`
}

// Error is the in-band failure payload of a query stream.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateTableRequest struct {
	TableName string             `json:"table_name"`
	Columns   []ColumnDefinition `json:"columns"`
	Database  string             `json:"database,omitempty"`
}

type CreateTableResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type DropTableRequest struct {
	TableName string `json:"table_name"`
	Database  string `json:"database,omitempty"`
}

type DropTableResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type InsertRequest struct {
	TableName string           `json:"table_name"`
	Values    map[string]Value `json:"values"`
	Database  string           `json:"database,omitempty"`
}

type InsertResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	InsertedID int64  `json:"inserted_id"`
}

type UpdateRequest struct {
	TableName   string           `json:"table_name"`
	Values      map[string]Value `json:"values"`
	WhereClause string           `json:"where_clause"`
	Database    string           `json:"database,omitempty"`
}

type UpdateResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AffectedRows int64  `json:"affected_rows"`
}

type DeleteRequest struct {
	TableName   string `json:"table_name"`
	WhereClause string `json:"where_clause"`
	Database    string `json:"database,omitempty"`
}

type DeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AffectedRows int64  `json:"affected_rows"`
}

// NamedRow is one batch-insert row, keyed by column name.
type NamedRow struct {
	Values map[string]Value `json:"values"`
}

type BatchInsertRequest struct {
	TableName string     `json:"table_name"`
	Rows      []NamedRow `json:"rows"`
	Database  string     `json:"database,omitempty"`
}

type BatchInsertResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	InsertedCount int64  `json:"inserted_count"`
}

type QueryRequest struct {
	SQL        string           `json:"sql"`
	Parameters map[string]Value `json:"parameters,omitempty"`
	Database   string           `json:"database,omitempty"`
}

// ResultSet is one message of a query stream. The first message of a
// stream carries the column descriptor and no rows; every later one
// carries exactly one row and no columns.
type ResultSet struct {
	Columns []Column `json:"columns,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`
}

// QueryResponse holds either a result set or an in-band error, never
// both.
type QueryResponse struct {
	ResultSet *ResultSet `json:"result_set,omitempty"`
	Error     *Error     `json:"error,omitempty"`
}

type ServerStatusRequest struct{}

type DatabaseStatus struct {
	Name              string `json:"name"`
	URL               string `json:"url"`
	Connected         bool   `json:"connected"`
	ConnectionTime    int64  `json:"connection_time"`
	ActiveConnections int    `json:"active_connections"`
}

type ServerStatusResponse struct {
	ServerRunning bool             `json:"server_running"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Databases     []DatabaseStatus `json:"databases"`
}

type AddDatabaseRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type AddDatabaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
