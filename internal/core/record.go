package core

// record.go provides the typed container for validated rows.
//
// A Record holds only keys whose source cell was present and valid, in the
// order the schema declares them. Values keep their coerced Go type so the
// store and the JSON response never have to guess.

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/JonMunkholm/SheetUpload/internal/schema"
)

// DateLayout is the JSON and storage layout for date values.
const DateLayout = "2006-01-02"

// Value is one coerced field value.
type Value struct {
	kind schema.FieldType
	str  string
	num  float64
	date time.Time
	b    bool
}

func StringValue(s string) Value  { return Value{kind: schema.TypeString, str: s} }
func NumberValue(n float64) Value { return Value{kind: schema.TypeNumber, num: n} }
func DateValue(t time.Time) Value { return Value{kind: schema.TypeDate, date: t} }
func BoolValue(b bool) Value      { return Value{kind: schema.TypeBoolean, b: b} }

// String formats the value for display.
func (v Value) String() string {
	switch v.kind {
	case schema.TypeNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case schema.TypeDate:
		return v.date.Format(DateLayout)
	case schema.TypeBoolean:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// MarshalJSON encodes numbers and booleans natively and dates as YYYY-MM-DD.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case schema.TypeNumber:
		return json.Marshal(v.num)
	case schema.TypeBoolean:
		return json.Marshal(v.b)
	case schema.TypeDate:
		return json.Marshal(v.date.Format(DateLayout))
	default:
		return json.Marshal(v.str)
	}
}

// Record is a validated row keyed by output key.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record sized for n fields.
func NewRecord(n int) *Record {
	return &Record{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Set stores v under key. Re-setting a key keeps its original position.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// MarshalJSON encodes the record as an object with keys in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RawRow converts the record back to sheet cells under s, the inverse of
// row validation. Dates become structured values and booleans their
// enumerated spelling.
func (r *Record) RawRow(s *schema.SheetSchema) RawRow {
	row := make(RawRow, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := r.Get(f.OutputKey)
		if !ok {
			continue
		}
		switch f.Type {
		case schema.TypeDate:
			row[f.Column] = v.date
		case schema.TypeBoolean:
			if v.b {
				row[f.Column] = f.TrueValue()
			} else {
				row[f.Column] = f.FalseValue()
			}
		default:
			row[f.Column] = v.String()
		}
	}
	return row
}
