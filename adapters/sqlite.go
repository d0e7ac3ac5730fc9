//go:build (darwin && (amd64 || arm64)) || (freebsd && (386 || amd64 || arm || arm64)) || (linux && (386 || amd64 || arm || arm64 || ppc64le || riscv64 || s390x)) || (netbsd && amd64) || (openbsd && (amd64 || arm64)) || (windows && (amd64 || arm64))

package adapters

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/core/builders"
)

// Register adapter
func init() {
	_ = register(&SQLite{}, "sqlite", "sqlite3")
}

var _ core.Adapter = (*SQLite)(nil)

type SQLite struct{}

func (s *SQLite) Connect(url string) (core.Driver, error) {
	db, err := sql.Open("sqlite", sqliteDSN(url))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to sqlite database: %v", err)
	}

	return &sqliteDriver{
		Client: builders.NewClient(db,
			builders.WithValueBinder(sqliteBindValue),
		),
	}, nil
}

// sqliteBindValue binds timestamps as epoch seconds. The driver formats
// time.Time arguments as text, which the INTEGER column declared for
// timestamps cannot give back.
func sqliteBindValue(v core.Value) any {
	if v.Kind() == core.KindTimestamp {
		return v.Timestamp()
	}
	return v.ToStorage()
}

// sqliteDSN converts a sqlite://path?opts connection string to the dsn the
// driver expects. The conventional mode=rwc option is the driver's default
// and gets dropped.
func sqliteDSN(url string) string {
	dsn := url
	if _, rest, err := SplitURL(url); err == nil {
		dsn = rest
	}

	path, query, found := strings.Cut(dsn, "?")
	if !found {
		return path
	}

	var kept []string
	for _, param := range strings.Split(query, "&") {
		if strings.HasPrefix(param, "mode=") {
			continue
		}
		kept = append(kept, param)
	}

	if len(kept) == 0 {
		return path
	}
	return path + "?" + strings.Join(kept, "&")
}
