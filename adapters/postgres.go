package adapters

import (
	"database/sql"
	"errors"
	"fmt"
	nurl "net/url"

	"github.com/lib/pq"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/core/builders"
)

// Register adapter
func init() {
	_ = register(&Postgres{}, "postgres", "postgresql", "pg")
}

var _ core.Adapter = (*Postgres)(nil)

type Postgres struct{}

func (p *Postgres) Connect(url string) (core.Driver, error) {
	u, err := nurl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w", err)
	}
	// lib/pq wants the canonical scheme
	u.Scheme = "postgres"

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres database: %w", err)
	}

	return &postgresDriver{
		Client: builders.NewClient(db,
			builders.WithErrorClassifier(classifyPostgresError),
			builders.WithNumberedPlaceholders(),
			builders.WithTypeSQL(postgresTypeSQL),
		),
	}, nil
}

func classifyPostgresError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "42P07": // duplicate_table
		return core.WrapError(core.ErrorAlreadyExists, err)
	case "42P01": // undefined_table
		return core.WrapError(core.ErrorNotFound, err)
	case "42601", "42703", "22P02", "23502", "23505":
		return core.WrapError(core.ErrorInvalidArgument, err)
	default:
		return err
	}
}

func postgresTypeSQL(t core.ColumnType) string {
	switch t {
	case core.ColumnTypeInteger:
		return "BIGINT"
	case core.ColumnTypeReal:
		return "DOUBLE PRECISION"
	case core.ColumnTypeText:
		return "TEXT"
	case core.ColumnTypeBlob:
		return "BYTEA"
	case core.ColumnTypeBoolean:
		return "BOOLEAN"
	case core.ColumnTypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

var _ core.Driver = (*postgresDriver)(nil)

type postgresDriver struct {
	*builders.Client
}
