package testhelpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/datasink/adapters"
	"github.com/kndndrj/datasink/core"
)

// NewSQLiteDriver opens a driver on a database file in the test's temp
// directory. The engine runs in-process, so no container is involved.
func NewSQLiteDriver(t *testing.T) core.Driver {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "test.db")

	driver, err := adapters.NewDriver(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	return driver
}
