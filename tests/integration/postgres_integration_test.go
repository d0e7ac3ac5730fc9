package integration

import (
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	tsuite "github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"

	"github.com/kndndrj/datasink/core"
	th "github.com/kndndrj/datasink/tests/testhelpers"
)

// PostgresTestSuite is the test suite for the postgres adapter.
type PostgresTestSuite struct {
	tsuite.Suite
	ctr *th.PostgresContainer
	ctx context.Context
	d   core.Driver
}

func TestPostgresTestSuite(t *testing.T) {
	tsuite.Run(t, new(PostgresTestSuite))
}

func (suite *PostgresTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	ctr, err := th.NewPostgresContainer(suite.ctx)
	if err != nil {
		log.Fatal(err)
	}

	suite.ctr, suite.d = ctr, ctr.Driver
}

func (suite *PostgresTestSuite) TeardownSuite() {
	_ = suite.d.Close()
	tc.CleanupContainer(suite.T(), suite.ctr)
}

func (suite *PostgresTestSuite) TestShouldClassifyDuplicateTable() {
	t := suite.T()

	columns := []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
	}

	err := suite.d.CreateTable(suite.ctx, "dupes", columns)
	assert.NoError(t, err)

	err = suite.d.CreateTable(suite.ctx, "dupes", columns)
	assert.Equal(t, core.ErrorAlreadyExists, core.KindOf(err))
}

func (suite *PostgresTestSuite) TestShouldClassifyMissingTable() {
	t := suite.T()

	_, err := suite.d.Insert(suite.ctx, "no_such_table", map[string]core.Value{
		"id": core.IntegerValue(1),
	})
	assert.Equal(t, core.ErrorNotFound, core.KindOf(err))
}

func (suite *PostgresTestSuite) TestShouldClassifySyntaxError() {
	t := suite.T()

	_, err := suite.d.Query(suite.ctx, "SELCT 1", nil)
	assert.Equal(t, core.ErrorInvalidArgument, core.KindOf(err))
}

func (suite *PostgresTestSuite) TestShouldInsertAndQueryRows() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "users", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("name", core.ColumnTypeText, false, false, true, ""),
		core.NewColumnDef("active", core.ColumnTypeBoolean, false, false, false, "true"),
	})
	assert.NoError(t, err)

	_, err = suite.d.Insert(suite.ctx, "users", map[string]core.Value{
		"id":     core.IntegerValue(1),
		"name":   core.TextValue("ada"),
		"active": core.BooleanValue(true),
	})
	assert.NoError(t, err)

	// unique constraint violation classifies to invalid argument
	_, err = suite.d.Insert(suite.ctx, "users", map[string]core.Value{
		"id":     core.IntegerValue(2),
		"name":   core.TextValue("ada"),
		"active": core.BooleanValue(false),
	})
	assert.Equal(t, core.ErrorInvalidArgument, core.KindOf(err))

	result, err := suite.d.Query(suite.ctx, "SELECT name, active FROM users", nil)
	assert.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, "ada", result.Rows[0][0].Text())
	assert.True(t, result.Rows[0][1].Boolean())
}

func (suite *PostgresTestSuite) TestShouldBindNumberedPlaceholders() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "measurements", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("reading", core.ColumnTypeReal, false, false, false, ""),
	})
	assert.NoError(t, err)

	_, err = suite.d.BatchInsert(suite.ctx, "measurements", []map[string]core.Value{
		{"id": core.IntegerValue(1), "reading": core.RealValue(1.5)},
		{"id": core.IntegerValue(2), "reading": core.RealValue(2.5)},
		{"id": core.IntegerValue(3), "reading": core.RealValue(3.5)},
	})
	assert.NoError(t, err)

	// params bind sorted by key, so $1 is a_min and $2 is b_max
	result, err := suite.d.Query(suite.ctx,
		"SELECT id FROM measurements WHERE reading > $1 AND reading < $2 ORDER BY id",
		map[string]core.Value{
			"a_min": core.RealValue(1.0),
			"b_max": core.RealValue(3.0),
		})
	assert.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.EqualValues(t, 1, result.Rows[0][0].Integer())
	assert.EqualValues(t, 2, result.Rows[1][0].Integer())
}

func (suite *PostgresTestSuite) TestShouldUpdateAndDelete() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "tasks", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("done", core.ColumnTypeBoolean, false, false, false, ""),
	})
	assert.NoError(t, err)

	_, err = suite.d.BatchInsert(suite.ctx, "tasks", []map[string]core.Value{
		{"id": core.IntegerValue(1), "done": core.BooleanValue(false)},
		{"id": core.IntegerValue(2), "done": core.BooleanValue(false)},
	})
	assert.NoError(t, err)

	affected, err := suite.d.Update(suite.ctx, "tasks",
		map[string]core.Value{"done": core.BooleanValue(true)}, "NOT done")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	affected, err = suite.d.Delete(suite.ctx, "tasks", "done")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, affected)
}

func (suite *PostgresTestSuite) TestShouldStreamQueryResults() {
	t := suite.T()

	stream, err := suite.d.QueryStream(suite.ctx, "SELECT generate_series(1, 5) AS n", nil)
	assert.NoError(t, err)

	assert.Len(t, stream.Columns(), 1)
	assert.Equal(t, "n", stream.Columns()[0].Name)

	result, err := core.Drain(stream)
	assert.NoError(t, err)
	assert.Len(t, result.Rows, 5)
	assert.EqualValues(t, 5, result.Rows[4][0].Integer())
}
