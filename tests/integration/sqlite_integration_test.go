package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tsuite "github.com/stretchr/testify/suite"

	"github.com/kndndrj/datasink/core"
	th "github.com/kndndrj/datasink/tests/testhelpers"
)

// SQLiteTestSuite is the test suite for the sqlite adapter. The engine
// runs in-process, so the suite opens each driver on a temp file.
type SQLiteTestSuite struct {
	tsuite.Suite
	ctx context.Context
	d   core.Driver
}

func TestSQLiteTestSuite(t *testing.T) {
	tsuite.Run(t, new(SQLiteTestSuite))
}

func (suite *SQLiteTestSuite) SetupSuite() {
	suite.ctx = context.Background()
	suite.d = th.NewSQLiteDriver(suite.T())
}

func (suite *SQLiteTestSuite) TestShouldCreateAndDropTable() {
	t := suite.T()

	columns := []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("name", core.ColumnTypeText, false, false, true, ""),
	}

	err := suite.d.CreateTable(suite.ctx, "lifecycle", columns)
	assert.NoError(t, err)

	err = suite.d.CreateTable(suite.ctx, "lifecycle", columns)
	assert.Equal(t, core.ErrorAlreadyExists, core.KindOf(err))

	err = suite.d.DropTable(suite.ctx, "lifecycle")
	assert.NoError(t, err)

	// dropping again is not an error
	err = suite.d.DropTable(suite.ctx, "lifecycle")
	assert.NoError(t, err)
}

func (suite *SQLiteTestSuite) TestShouldInsertAndQueryRows() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "users", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("name", core.ColumnTypeText, false, false, false, ""),
		core.NewColumnDef("score", core.ColumnTypeReal, true, false, false, ""),
	})
	assert.NoError(t, err)

	id, err := suite.d.Insert(suite.ctx, "users", map[string]core.Value{
		"id":    core.IntegerValue(1),
		"name":  core.TextValue("ada"),
		"score": core.RealValue(9.5),
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 1, id)

	_, err = suite.d.Insert(suite.ctx, "users", map[string]core.Value{
		"id":    core.IntegerValue(2),
		"name":  core.TextValue("grace"),
		"score": core.NullValue(),
	})
	assert.NoError(t, err)

	result, err := suite.d.Query(suite.ctx, "SELECT name, score FROM users ORDER BY id", nil)
	assert.NoError(t, err)
	assert.Len(t, result.Columns, 2)
	assert.Len(t, result.Rows, 2)
	assert.Equal(t, "ada", result.Rows[0][0].Text())
	assert.True(t, result.Rows[1][1].IsNull())
}

func (suite *SQLiteTestSuite) TestShouldBindParamsInLexicographicOrder() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "params", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("label", core.ColumnTypeText, false, false, false, ""),
	})
	assert.NoError(t, err)

	_, err = suite.d.BatchInsert(suite.ctx, "params", []map[string]core.Value{
		{"id": core.IntegerValue(1), "label": core.TextValue("low")},
		{"id": core.IntegerValue(2), "label": core.TextValue("high")},
	})
	assert.NoError(t, err)

	// keys bind sorted: a_label before b_id
	result, err := suite.d.Query(suite.ctx,
		"SELECT id FROM params WHERE label = ? AND id >= ?",
		map[string]core.Value{
			"a_label": core.TextValue("high"),
			"b_id":    core.IntegerValue(1),
		})
	assert.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.EqualValues(t, 2, result.Rows[0][0].Integer())
}

func (suite *SQLiteTestSuite) TestShouldBatchInsertAtomically() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "batch", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
	})
	assert.NoError(t, err)

	count, err := suite.d.BatchInsert(suite.ctx, "batch", []map[string]core.Value{
		{"id": core.IntegerValue(1)},
		{"id": core.IntegerValue(2)},
		{"id": core.IntegerValue(3)},
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 3, count)

	// duplicate key in the second row rolls the whole batch back
	_, err = suite.d.BatchInsert(suite.ctx, "batch", []map[string]core.Value{
		{"id": core.IntegerValue(4)},
		{"id": core.IntegerValue(1)},
	})
	assert.Error(t, err)

	result, err := suite.d.Query(suite.ctx, "SELECT COUNT(*) FROM batch", nil)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, result.Rows[0][0].Integer())
}

func (suite *SQLiteTestSuite) TestShouldUpdateAndDelete() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "inventory", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("qty", core.ColumnTypeInteger, false, false, false, ""),
	})
	assert.NoError(t, err)

	_, err = suite.d.BatchInsert(suite.ctx, "inventory", []map[string]core.Value{
		{"id": core.IntegerValue(1), "qty": core.IntegerValue(10)},
		{"id": core.IntegerValue(2), "qty": core.IntegerValue(20)},
		{"id": core.IntegerValue(3), "qty": core.IntegerValue(30)},
	})
	assert.NoError(t, err)

	affected, err := suite.d.Update(suite.ctx, "inventory",
		map[string]core.Value{"qty": core.IntegerValue(0)}, "qty >= 20")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	affected, err = suite.d.Delete(suite.ctx, "inventory", "qty = 0")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	affected, err = suite.d.Delete(suite.ctx, "inventory", "qty = 999")
	assert.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func (suite *SQLiteTestSuite) TestShouldRoundTripBooleanAndTimestamp() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "events", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
		core.NewColumnDef("active", core.ColumnTypeBoolean, false, false, false, ""),
		core.NewColumnDef("seen_at", core.ColumnTypeTimestamp, false, false, false, ""),
	})
	assert.NoError(t, err)

	now := time.Now().Unix()
	_, err = suite.d.Insert(suite.ctx, "events", map[string]core.Value{
		"id":      core.IntegerValue(1),
		"active":  core.BooleanValue(true),
		"seen_at": core.TimestampValue(now),
	})
	assert.NoError(t, err)

	result, err := suite.d.Query(suite.ctx, "SELECT active, seen_at FROM events", nil)
	assert.NoError(t, err)
	assert.Len(t, result.Rows, 1)

	active := result.Rows[0][0].Coerce(core.ColumnTypeBoolean)
	assert.True(t, active.Boolean())

	seenAt := result.Rows[0][1].Coerce(core.ColumnTypeTimestamp)
	assert.EqualValues(t, now, seenAt.Timestamp())
}

func (suite *SQLiteTestSuite) TestShouldStreamMutationAsAffectedRows() {
	t := suite.T()

	err := suite.d.CreateTable(suite.ctx, "stream_mut", []core.ColumnDef{
		core.NewColumnDef("id", core.ColumnTypeInteger, false, true, false, ""),
	})
	assert.NoError(t, err)

	stream, err := suite.d.QueryStream(suite.ctx, "INSERT INTO stream_mut (id) VALUES (1), (2)", nil)
	assert.NoError(t, err)

	result, err := core.Drain(stream)
	assert.NoError(t, err)
	assert.Len(t, result.Columns, 1)
	assert.Equal(t, "affected_rows", result.Columns[0].Name)
	assert.Len(t, result.Rows, 1)
	assert.EqualValues(t, 2, result.Rows[0][0].Integer())
}

func (suite *SQLiteTestSuite) TestShouldErrorInvalidQuery() {
	t := suite.T()

	_, err := suite.d.Query(suite.ctx, "not even sql", nil)
	assert.ErrorContains(t, err, "syntax error")
}
