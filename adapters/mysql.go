package adapters

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/core/builders"
)

// Register adapter
func init() {
	_ = register(&MySQL{}, "mysql")
}

var _ core.Adapter = (*MySQL)(nil)

type MySQL struct{}

func (m *MySQL) Connect(url string) (core.Driver, error) {
	// connection strings carry a scheme; the driver dsn does not
	_, dsn, err := SplitURL(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mysql database: %v", err)
	}

	return &mySQLDriver{
		Client: builders.NewClient(db,
			builders.WithErrorClassifier(classifyMySQLError),
			builders.WithTypeSQL(mysqlTypeSQL),
		),
	}, nil
}

// server error codes, see mysqld_error.h
const (
	mysqlErrTableExists   = 1050
	mysqlErrNoSuchTable   = 1146
	mysqlErrParse         = 1064
	mysqlErrBadField      = 1054
	mysqlErrBadNull       = 1048
	mysqlErrDupEntry      = 1062
	mysqlErrNoDefault     = 1364
	mysqlErrDataTooLong   = 1406
	mysqlErrTruncatedData = 1265
)

func classifyMySQLError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return err
	}

	switch mysqlErr.Number {
	case mysqlErrTableExists:
		return core.WrapError(core.ErrorAlreadyExists, err)
	case mysqlErrNoSuchTable:
		return core.WrapError(core.ErrorNotFound, err)
	case mysqlErrParse, mysqlErrBadField, mysqlErrBadNull, mysqlErrDupEntry,
		mysqlErrNoDefault, mysqlErrDataTooLong, mysqlErrTruncatedData:
		return core.WrapError(core.ErrorInvalidArgument, err)
	default:
		return err
	}
}

func mysqlTypeSQL(t core.ColumnType) string {
	switch t {
	case core.ColumnTypeInteger:
		return "BIGINT"
	case core.ColumnTypeReal:
		return "DOUBLE"
	case core.ColumnTypeText:
		return "TEXT"
	case core.ColumnTypeBlob:
		return "BLOB"
	case core.ColumnTypeBoolean:
		return "BOOLEAN"
	case core.ColumnTypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

var _ core.Driver = (*mySQLDriver)(nil)

type mySQLDriver struct {
	*builders.Client
}
