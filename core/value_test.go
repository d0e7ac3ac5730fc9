package core_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/datasink/core"
)

func TestStorageRoundTrip(t *testing.T) {
	r := require.New(t)

	values := []core.Value{
		core.NullValue(),
		core.IntegerValue(0),
		core.IntegerValue(-1),
		core.IntegerValue(math.MinInt64),
		core.IntegerValue(math.MaxInt64),
		core.RealValue(0),
		core.RealValue(3.14),
		core.RealValue(math.NaN()),
		core.RealValue(math.Inf(1)),
		core.RealValue(math.Inf(-1)),
		core.TextValue(""),
		core.TextValue("hello"),
		core.BlobValue([]byte{}),
		core.BlobValue([]byte{0x00, 0xff}),
		core.BooleanValue(true),
		core.BooleanValue(false),
		core.TimestampValue(0),
		core.TimestampValue(1700000000),
	}

	for _, v := range values {
		got := core.FromStorage(v.ToStorage())
		r.True(v.Equal(got), "round trip changed %s value %s", v.Kind(), v)
	}
}

func TestTimestampStorageIsTime(t *testing.T) {
	r := require.New(t)

	storage := core.TimestampValue(1700000000).ToStorage()
	ts, ok := storage.(time.Time)
	r.True(ok, "timestamps must not degrade to bare integers")
	r.Equal(int64(1700000000), ts.Unix())
}

func TestFromStorageScanTypes(t *testing.T) {
	r := require.New(t)

	r.True(core.IntegerValue(7).Equal(core.FromStorage(int(7))))
	r.True(core.IntegerValue(7).Equal(core.FromStorage(int32(7))))
	r.True(core.RealValue(1.5).Equal(core.FromStorage(float32(1.5))))
	r.True(core.NullValue().Equal(core.FromStorage(nil)))
}

func TestValueEqual(t *testing.T) {
	r := require.New(t)

	r.True(core.RealValue(math.NaN()).Equal(core.RealValue(math.NaN())))
	r.False(core.RealValue(0).Equal(core.IntegerValue(0)))
	r.False(core.IntegerValue(1).Equal(core.TimestampValue(1)))
	r.True(core.BlobValue(nil).Equal(core.BlobValue([]byte{})))
	r.False(core.BlobValue([]byte{1}).Equal(core.BlobValue([]byte{2})))
}

func TestCoerce(t *testing.T) {
	r := require.New(t)

	// integer-kept booleans and timestamps come back typed
	r.True(core.BooleanValue(true).Equal(core.IntegerValue(1).Coerce(core.ColumnTypeBoolean)))
	r.True(core.BooleanValue(false).Equal(core.IntegerValue(0).Coerce(core.ColumnTypeBoolean)))
	r.True(core.TimestampValue(1700000000).Equal(core.IntegerValue(1700000000).Coerce(core.ColumnTypeTimestamp)))

	// nulls and mismatched kinds pass through
	r.True(core.NullValue().Equal(core.NullValue().Coerce(core.ColumnTypeBoolean)))
	r.True(core.TextValue("x").Equal(core.TextValue("x").Coerce(core.ColumnTypeBoolean)))
}

func TestValueString(t *testing.T) {
	r := require.New(t)

	r.Equal("NULL", core.NullValue().String())
	r.Equal("42", core.IntegerValue(42).String())
	r.Equal("true", core.BooleanValue(true).String())
	r.Equal("0xdead", core.BlobValue([]byte{0xde, 0xad}).String())
	r.Equal("2023-11-14T22:13:20Z", core.TimestampValue(1700000000).String())
}

func TestColumnTypeFromString(t *testing.T) {
	r := require.New(t)

	typ, err := core.ColumnTypeFromString("timestamp")
	r.NoError(err)
	r.Equal(core.ColumnTypeTimestamp, typ)

	_, err = core.ColumnTypeFromString("GEOMETRY")
	r.Error(err)
}
