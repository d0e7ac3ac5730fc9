package wire

import (
	"github.com/kndndrj/datasink/core"
)

// FromValue converts a core value to its wire form.
func FromValue(v core.Value) Value {
	switch v.Kind() {
	case core.KindInteger:
		n := v.Integer()
		return Value{IntValue: &n}
	case core.KindReal:
		f := v.Real()
		return Value{RealValue: &f}
	case core.KindText:
		s := v.Text()
		return Value{TextValue: &s}
	case core.KindBlob:
		b := v.Blob()
		if b == nil {
			b = []byte{}
		}
		return Value{BlobValue: &b}
	case core.KindBoolean:
		b := v.Boolean()
		return Value{BoolValue: &b}
	case core.KindTimestamp:
		t := v.Timestamp()
		return Value{TimestampValue: &t}
	default:
		return Value{NullValue: true}
	}
}

// ToValue converts a wire value to its core form. A message with no
// variant set decodes to null, same as an explicit null.
func ToValue(v Value) core.Value {
	switch {
	case v.IntValue != nil:
		return core.IntegerValue(*v.IntValue)
	case v.RealValue != nil:
		return core.RealValue(*v.RealValue)
	case v.TextValue != nil:
		return core.TextValue(*v.TextValue)
	case v.BlobValue != nil:
		return core.BlobValue(*v.BlobValue)
	case v.BoolValue != nil:
		return core.BooleanValue(*v.BoolValue)
	case v.TimestampValue != nil:
		return core.TimestampValue(*v.TimestampValue)
	default:
		return core.NullValue()
	}
}

// ToValues converts a request value map to core values.
func ToValues(values map[string]Value) map[string]core.Value {
	out := make(map[string]core.Value, len(values))
	for k, v := range values {
		out[k] = ToValue(v)
	}
	return out
}

// FromValues converts core values to a request value map.
func FromValues(values map[string]core.Value) map[string]Value {
	out := make(map[string]Value, len(values))
	for k, v := range values {
		out[k] = FromValue(v)
	}
	return out
}

// FromColumnDef converts a core column definition to its wire form.
func FromColumnDef(def core.ColumnDef) ColumnDefinition {
	return ColumnDefinition{
		Name:         def.Name,
		Type:         def.Type.String(),
		Nullable:     def.Nullable,
		PrimaryKey:   def.PrimaryKey,
		Unique:       def.Unique,
		DefaultValue: def.DefaultValue,
	}
}

// FromColumnDefs converts all definitions of a table.
func FromColumnDefs(defs []core.ColumnDef) []ColumnDefinition {
	out := make([]ColumnDefinition, len(defs))
	for i, def := range defs {
		out[i] = FromColumnDef(def)
	}
	return out
}

// FromRow converts one result row to its wire form.
func FromRow(row core.Row) Row {
	values := make([]Value, len(row))
	for i, v := range row {
		values[i] = FromValue(v)
	}
	return Row{Values: values}
}

// ToRow converts a wire row back to core values.
func ToRow(row Row) core.Row {
	out := make(core.Row, len(row.Values))
	for i, v := range row.Values {
		out[i] = ToValue(v)
	}
	return out
}

// FromColumns converts a result descriptor to its wire form.
func FromColumns(columns []core.Column) []Column {
	out := make([]Column, len(columns))
	for i, c := range columns {
		out[i] = Column{Name: c.Name, Type: c.Type.String()}
	}
	return out
}

// ToColumns converts a wire descriptor back to core columns. Unknown
// type names fall back to text.
func ToColumns(columns []Column) []core.Column {
	out := make([]core.Column, len(columns))
	for i, c := range columns {
		typ, err := core.ColumnTypeFromString(c.Type)
		if err != nil {
			typ = core.ColumnTypeText
		}
		out[i] = core.Column{Name: c.Name, Type: typ}
	}
	return out
}

// ToColumnDef converts a wire column definition to its core form,
// normalizing the primary-key/nullable combination.
func ToColumnDef(def ColumnDefinition) (core.ColumnDef, error) {
	typ, err := core.ColumnTypeFromString(def.Type)
	if err != nil {
		return core.ColumnDef{}, core.WrapError(core.ErrorInvalidArgument, err)
	}
	return core.NewColumnDef(def.Name, typ, def.Nullable, def.PrimaryKey, def.Unique, def.DefaultValue), nil
}

// ToColumnDefs converts all definitions of a create-table request.
func ToColumnDefs(defs []ColumnDefinition) ([]core.ColumnDef, error) {
	out := make([]core.ColumnDef, len(defs))
	for i, def := range defs {
		converted, err := ToColumnDef(def)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
