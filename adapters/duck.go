//go:build cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package adapters

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/core/builders"
)

// Register adapter
func init() {
	_ = register(&Duck{}, "duck", "duckdb")
}

var _ core.Adapter = (*Duck)(nil)

type Duck struct{}

func (d *Duck) Connect(url string) (core.Driver, error) {
	_, path, err := SplitURL(url)
	if err != nil {
		return nil, err
	}
	// duckdb://:memory: and duckdb:// both mean in-memory
	if path == ":memory:" {
		path = ""
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to duckdb database: %v", err)
	}

	return &duckDriver{
		Client: builders.NewClient(db,
			builders.WithErrorClassifier(classifyDuckError),
			builders.WithNumberedPlaceholders(),
		),
	}, nil
}

// duckdb surfaces catalog errors as plain strings with stable prefixes;
// the driver exposes no error codes to switch on.
func classifyDuckError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "already exists"):
		return core.WrapError(core.ErrorAlreadyExists, err)
	case strings.Contains(msg, "does not exist"):
		return core.WrapError(core.ErrorNotFound, err)
	case strings.Contains(msg, "Parser Error"), strings.Contains(msg, "Binder Error"):
		return core.WrapError(core.ErrorInvalidArgument, err)
	default:
		return err
	}
}

var _ core.Driver = (*duckDriver)(nil)

type duckDriver struct {
	*builders.Client
}
