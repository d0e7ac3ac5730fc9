package schema_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/core/mock"
	"github.com/kndndrj/datasink/schema"
)

const testSchema = `
[database]
name = "inventory"
description = "product inventory"
version = "1.0.0"

[[tables]]
name = "products"
description = "products on offer"

  [[tables.columns]]
  name = "id"
  type = "INTEGER"
  primary_key = true
  auto_increment = true

  [[tables.columns]]
  name = "name"
  type = "TEXT"

  [[tables.columns]]
  name = "price"
  type = "REAL"

  [[tables.columns]]
  name = "in_stock"
  type = "BOOLEAN"
  default = "true"

  [[tables.columns]]
  name = "added_at"
  type = "TIMESTAMP"
  default = "CURRENT_TIMESTAMP"

[[data.products]]
name = "wrench"
price = 9.99

[[data.products]]
name = "hammer"
price = 14.5
in_stock = false

[[indexes]]
table = "products"
name = "idx_products_name"
columns = ["name"]
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.schema")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoad(t *testing.T) {
	r := require.New(t)

	s, err := schema.Load(writeSchema(t, testSchema))
	r.NoError(err)

	r.Equal("inventory", s.Database.Name)
	r.Equal("1.0.0", s.Database.Version)
	r.Len(s.Tables, 1)
	r.Len(s.Tables[0].Columns, 5)
	r.Len(s.Data["products"], 2)
	r.Len(s.Indexes, 1)
}

func TestLoadMissingFile(t *testing.T) {
	r := require.New(t)

	_, err := schema.Load(filepath.Join(t.TempDir(), "nope.schema"))
	r.Error(err)
}

func TestLoadRejectsUnknownColumnType(t *testing.T) {
	r := require.New(t)

	_, err := schema.Load(writeSchema(t, `
[database]
name = "bad"
description = ""
version = "1"

[[tables]]
name = "things"

  [[tables.columns]]
  name = "loc"
  type = "GEOMETRY"
`))
	r.Error(err)
	r.Equal(core.ErrorInvalidArgument, core.KindOf(err))
}

func TestLoadRejectsDataForUndefinedTable(t *testing.T) {
	r := require.New(t)

	_, err := schema.Load(writeSchema(t, `
[database]
name = "bad"
description = ""
version = "1"

[[tables]]
name = "things"

  [[tables.columns]]
  name = "id"
  type = "INTEGER"

[[data.ghosts]]
id = 1
`))
	r.Error(err)
	r.Equal(core.ErrorInvalidArgument, core.KindOf(err))
}

func TestToColumnDefs(t *testing.T) {
	r := require.New(t)

	s, err := schema.Load(writeSchema(t, testSchema))
	r.NoError(err)

	table, ok := s.Table("products")
	r.True(ok)

	defs, err := table.ToColumnDefs()
	r.NoError(err)
	r.Len(defs, 5)

	r.Equal("id", defs[0].Name)
	r.Equal(core.ColumnTypeInteger, defs[0].Type)
	r.True(defs[0].PrimaryKey)
	// primary keys are never nullable
	r.False(defs[0].Nullable)
}

func TestPrepareRow(t *testing.T) {
	r := require.New(t)

	s, err := schema.Load(writeSchema(t, testSchema))
	r.NoError(err)

	table, _ := s.Table("products")

	values, err := table.PrepareRow(schema.RowData{
		"name":  "wrench",
		"price": 9.99,
	})
	r.NoError(err)

	// auto-increment columns are left to the backend
	_, ok := values["id"]
	r.False(ok)

	r.True(core.TextValue("wrench").Equal(values["name"]))
	r.True(core.RealValue(9.99).Equal(values["price"]))

	// defaults fill in absent columns
	r.True(core.BooleanValue(true).Equal(values["in_stock"]))
	r.Equal(core.KindTimestamp, values["added_at"].Kind())
	r.InDelta(time.Now().Unix(), values["added_at"].Timestamp(), 5)
}

func TestPrepareRowTypeMismatch(t *testing.T) {
	r := require.New(t)

	s, err := schema.Load(writeSchema(t, testSchema))
	r.NoError(err)

	table, _ := s.Table("products")

	_, err = table.PrepareRow(schema.RowData{
		"name":  int64(42),
		"price": 9.99,
	})
	r.Error(err)
	r.Equal(core.ErrorInvalidArgument, core.KindOf(err))
}

func TestPrepareRowMissingRequired(t *testing.T) {
	r := require.New(t)

	s, err := schema.Load(writeSchema(t, `
[database]
name = "strict"
description = ""
version = "1"

[[tables]]
name = "users"

  [[tables.columns]]
  name = "email"
  type = "TEXT"
`))
	r.NoError(err)

	table, _ := s.Table("users")

	_, err = table.PrepareRow(schema.RowData{})
	r.Error(err)
	r.Equal(core.ErrorInvalidArgument, core.KindOf(err))
	r.Contains(err.Error(), "email")
}

func TestApply(t *testing.T) {
	r := require.New(t)

	s, err := schema.Load(writeSchema(t, testSchema))
	r.NoError(err)

	adapter := mock.NewAdapter()
	driver, err := adapter.Connect("mock://apply")
	r.NoError(err)
	target := driver.(*mock.Driver)

	r.NoError(schema.Apply(context.Background(), target, s, quietLogger()))

	r.Contains(target.Tables, "products")
	r.Len(target.Inserted, 2)

	// applying twice is fine: existing tables are skipped
	r.NoError(schema.Apply(context.Background(), target, s, quietLogger()))
}
