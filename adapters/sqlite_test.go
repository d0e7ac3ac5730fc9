//go:build (darwin && (amd64 || arm64)) || (freebsd && (386 || amd64 || arm || arm64)) || (linux && (386 || amd64 || arm || arm64 || ppc64le || riscv64 || s390x)) || (netbsd && amd64) || (openbsd && (amd64 || arm64)) || (windows && (amd64 || arm64))

package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/datasink/core"
)

func TestSQLiteDSN(t *testing.T) {
	r := require.New(t)

	cases := map[string]string{
		"sqlite://data.db":                       "data.db",
		"sqlite://data.db?mode=rwc":              "data.db",
		"sqlite://data.db?mode=rwc&cache=shared": "data.db?cache=shared",
		"sqlite:///var/lib/data.db":              "/var/lib/data.db",
		"sqlite3://:memory:":                     ":memory:",
		"data.db":                                "data.db",
	}

	for url, want := range cases {
		r.Equal(want, sqliteDSN(url), "url %s", url)
	}
}

func TestSQLiteBindValue(t *testing.T) {
	r := require.New(t)

	// timestamps bind as epoch seconds so they land in the INTEGER
	// column as numbers, not as formatted text
	r.Equal(int64(1700000000), sqliteBindValue(core.TimestampValue(1700000000)))

	r.Equal(int64(42), sqliteBindValue(core.IntegerValue(42)))
	r.Equal("ada", sqliteBindValue(core.TextValue("ada")))
	r.Equal(true, sqliteBindValue(core.BooleanValue(true)))
	r.Nil(sqliteBindValue(core.NullValue()))
}
