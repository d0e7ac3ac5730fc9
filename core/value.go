package core

import (
	"fmt"
	"math"
	"time"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
	KindBoolean
	KindTimestamp
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Value is a single immutable cell value with exactly one active variant.
// The zero value is Null.
type Value struct {
	kind ValueKind

	intVal  int64
	realVal float64
	textVal string
	blobVal []byte
	boolVal bool
}

func NullValue() Value              { return Value{} }
func IntegerValue(v int64) Value    { return Value{kind: KindInteger, intVal: v} }
func RealValue(v float64) Value     { return Value{kind: KindReal, realVal: v} }
func TextValue(v string) Value      { return Value{kind: KindText, textVal: v} }
func BlobValue(v []byte) Value      { return Value{kind: KindBlob, blobVal: v} }
func BooleanValue(v bool) Value     { return Value{kind: KindBoolean, boolVal: v} }
func TimestampValue(v int64) Value  { return Value{kind: KindTimestamp, intVal: v} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

func (v Value) Integer() int64   { return v.intVal }
func (v Value) Real() float64    { return v.realVal }
func (v Value) Text() string     { return v.textVal }
func (v Value) Blob() []byte     { return v.blobVal }
func (v Value) Boolean() bool    { return v.boolVal }
func (v Value) Timestamp() int64 { return v.intVal }

// Equal reports semantic equality of two values. NaN compares equal
// to NaN so that round-trip properties hold for every float.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInteger, KindTimestamp:
		return v.intVal == other.intVal
	case KindReal:
		if math.IsNaN(v.realVal) && math.IsNaN(other.realVal) {
			return true
		}
		return v.realVal == other.realVal
	case KindText:
		return v.textVal == other.textVal
	case KindBoolean:
		return v.boolVal == other.boolVal
	case KindBlob:
		if len(v.blobVal) != len(other.blobVal) {
			return false
		}
		for i := range v.blobVal {
			if v.blobVal[i] != other.blobVal[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return fmt.Sprintf("%d", v.intVal)
	case KindReal:
		return fmt.Sprintf("%g", v.realVal)
	case KindText:
		return v.textVal
	case KindBlob:
		return fmt.Sprintf("0x%x", v.blobVal)
	case KindBoolean:
		return fmt.Sprintf("%t", v.boolVal)
	case KindTimestamp:
		return time.Unix(v.intVal, 0).UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// ToStorage converts a value to its storage representation - the argument
// passed to the database driver. Each variant maps to a distinct Go type
// (timestamps become time.Time, never a bare integer) so the conversion
// stays invertible.
func (v Value) ToStorage() any {
	switch v.kind {
	case KindInteger:
		return v.intVal
	case KindReal:
		return v.realVal
	case KindText:
		return v.textVal
	case KindBlob:
		return v.blobVal
	case KindBoolean:
		return v.boolVal
	case KindTimestamp:
		return time.Unix(v.intVal, 0).UTC()
	default:
		return nil
	}
}

// FromStorage converts a storage-side scan result back to a Value.
// It is the inverse of ToStorage and additionally accepts the scan types
// database/sql produces for the same data (int variants, float32, string
// for text-ish columns).
func FromStorage(storage any) Value {
	switch t := storage.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntegerValue(t)
	case int:
		return IntegerValue(int64(t))
	case int32:
		return IntegerValue(int64(t))
	case float64:
		return RealValue(t)
	case float32:
		return RealValue(float64(t))
	case string:
		return TextValue(t)
	case []byte:
		return BlobValue(t)
	case bool:
		return BooleanValue(t)
	case time.Time:
		return TimestampValue(t.Unix())
	default:
		return TextValue(fmt.Sprintf("%v", t))
	}
}

// Coerce reinterprets a value as the given column type where the storage
// layer lost the distinction (sqlite keeps booleans and timestamps as
// integers). Values that already match, or cannot be coerced, are returned
// unchanged.
func (v Value) Coerce(typ ColumnType) Value {
	if v.kind == KindNull {
		return v
	}
	switch typ {
	case ColumnTypeBoolean:
		if v.kind == KindInteger {
			return BooleanValue(v.intVal != 0)
		}
	case ColumnTypeTimestamp:
		if v.kind == KindInteger {
			return TimestampValue(v.intVal)
		}
	}
	return v
}
