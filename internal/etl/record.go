package etl

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
)

// ── Record ─────────────────────────────────────────────────
// Common intermediate data format.
// Sources produce Tables, transforms reshape them, destinations consume them.
// A Table is rectangular: every row has one cell per schema field.

// ColumnType is the logical type of a column.
type ColumnType string

const (
	TypeText      ColumnType = "text"
	TypeInteger   ColumnType = "integer"
	TypeReal      ColumnType = "real"
	TypeTimestamp ColumnType = "timestamp"
)

// TimestampLayout is the canonical text form of a timestamp value.
const TimestampLayout = "2006-01-02 15:04:05"

// Kind tags the scalar held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindTime
)

// Value is a single scalar cell.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	t    time.Time
}

func Null() Value                 { return Value{} }
func String(s string) Value       { return Value{kind: KindString, s: s} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Float(f float64) Value       { return Value{kind: KindFloat, f: f} }
func Timestamp(t time.Time) Value { return Value{kind: KindTime, t: t} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) Str() string     { return v.s }
func (v Value) Int() int64      { return v.i }
func (v Value) Float() float64  { return v.f }
func (v Value) Time() time.Time { return v.t }

// Key returns the value's canonical text form, used for join matching.
// Null has no key.
func (v Value) Key() (string, bool) {
	if v.kind == KindNull {
		return "", false
	}
	return v.String(), true
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindTime:
		return v.t.Format(TimestampLayout)
	default:
		return ""
	}
}

// Any returns the value as a plain Go value (nil, string, int64, float64, time.Time).
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// Field describes a single column in a dataset.
type Field struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Schema describes the shape of a table.
type Schema struct {
	Fields []Field `json:"fields"`
}

// FieldNames returns an ordered list of field names.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named field, or -1.
func (s *Schema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Table is an ordered sequence of fixed-shape rows.
type Table struct {
	Schema Schema
	Rows   [][]Value
}

// NewTable creates an empty table with the given fields.
func NewTable(fields ...Field) *Table {
	return &Table{Schema: Schema{Fields: fields}}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row. The row must match the schema width.
func (t *Table) Append(row ...Value) error {
	if len(row) != len(t.Schema.Fields) {
		return fmt.Errorf("row has %d cells, schema has %d", len(row), len(t.Schema.Fields))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.Schema.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: column %q", ErrLookup, name)
	}
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Datasets is the Loader's output: one table per extracted dataset.
type Datasets map[domain.DatasetID]*Table

// Get returns the named dataset or an ErrLookup error.
func (d Datasets) Get(id domain.DatasetID) (*Table, error) {
	t, ok := d[id]
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: dataset %q not loaded", ErrLookup, id.Key())
	}
	return t, nil
}
