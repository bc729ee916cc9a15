package etl

import (
	"fmt"
	"strings"
	"time"
)

// ── Transformer ────────────────────────────────────────────
// Transformers reshape a whole table. They are composable: each takes a
// table and returns a (possibly new) table. Any error aborts the chain.

// Transformer processes a table.
type Transformer interface {
	Transform(*Table) (*Table, error)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(*Table) (*Table, error)

func (f TransformerFunc) Transform(t *Table) (*Table, error) { return f(t) }

// ApplyTransformers runs a chain of transformers on a table.
func ApplyTransformers(t *Table, ts []Transformer) (*Table, error) {
	var err error
	for _, tr := range ts {
		t, err = tr.Transform(t)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ── Join ───────────────────────────────────────────────────

// Suffixes appended to non-key columns present on both sides of a join.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// InnerJoin matches rows of left and right on equal, non-null key values.
// Output order follows left rows, then right rows in their original order.
// Columns are left's columns followed by right's minus the key.
func InnerJoin(left, right *Table, key string) (*Table, error) {
	li := left.Schema.Index(key)
	if li < 0 {
		return nil, fmt.Errorf("%w: join key %q missing from left table", ErrLookup, key)
	}
	ri := right.Schema.Index(key)
	if ri < 0 {
		return nil, fmt.Errorf("%w: join key %q missing from right table", ErrLookup, key)
	}

	out := &Table{Schema: Schema{Fields: joinFields(left.Schema, right.Schema, key)}}

	index := make(map[string][]int, len(right.Rows))
	for i, row := range right.Rows {
		if k, ok := row[ri].Key(); ok {
			index[k] = append(index[k], i)
		}
	}

	for _, lrow := range left.Rows {
		k, ok := lrow[li].Key()
		if !ok {
			continue
		}
		for _, j := range index[k] {
			rrow := right.Rows[j]
			row := make([]Value, 0, len(out.Schema.Fields))
			row = append(row, lrow...)
			for c, v := range rrow {
				if c != ri {
					row = append(row, v)
				}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func joinFields(left, right Schema, key string) []Field {
	leftNames := make(map[string]bool, len(left.Fields))
	for _, f := range left.Fields {
		leftNames[f.Name] = true
	}
	rightNames := make(map[string]bool, len(right.Fields))
	for _, f := range right.Fields {
		rightNames[f.Name] = true
	}

	fields := make([]Field, 0, len(left.Fields)+len(right.Fields)-1)
	for _, f := range left.Fields {
		if f.Name != key && rightNames[f.Name] {
			f.Name += LeftSuffix
		}
		fields = append(fields, f)
	}
	for _, f := range right.Fields {
		if f.Name == key {
			continue
		}
		if leftNames[f.Name] {
			f.Name += RightSuffix
		}
		fields = append(fields, f)
	}
	return fields
}

// ── Column operations ──────────────────────────────────────

// timestampLayouts are tried in order. Inputs without an offset are taken
// as wall-clock time; inputs with one keep it, so no zone conversion happens.
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses the textual forms accepted for timestamp columns.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", ErrParse, s)
}

// ParseTimestampColumn converts the named column to TypeTimestamp in place.
// Nulls stay null; any unparseable cell fails the whole table.
func ParseTimestampColumn(name string) Transformer {
	return TransformerFunc(func(t *Table) (*Table, error) {
		idx := t.Schema.Index(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: column %q", ErrLookup, name)
		}
		for i, row := range t.Rows {
			v := row[idx]
			switch v.Kind() {
			case KindNull, KindTime:
				continue
			case KindString:
				ts, err := ParseTimestamp(v.Str())
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", i+1, name, err)
				}
				row[idx] = Timestamp(ts)
			default:
				return nil, fmt.Errorf("%w: row %d column %q: %s is not a timestamp", ErrParse, i+1, name, v)
			}
		}
		t.Schema.Fields[idx].Type = TypeTimestamp
		return t, nil
	})
}

// DeriveFunc computes a new cell from an existing one.
type DeriveFunc func(Value) Value

// DeriveColumn appends a column computed from the named source column.
// A null source yields a null derived cell.
func DeriveColumn(source string, field Field, fn DeriveFunc) Transformer {
	return TransformerFunc(func(t *Table) (*Table, error) {
		idx := t.Schema.Index(source)
		if idx < 0 {
			return nil, fmt.Errorf("%w: column %q", ErrLookup, source)
		}
		if t.Schema.Index(field.Name) >= 0 {
			return nil, fmt.Errorf("derived column %q already exists", field.Name)
		}
		t.Schema.Fields = append(t.Schema.Fields, field)
		for i, row := range t.Rows {
			v := row[idx]
			out := Null()
			if !v.IsNull() {
				out = fn(v)
			}
			t.Rows[i] = append(row, out)
		}
		return t, nil
	})
}

// ── Calendar features ──────────────────────────────────────

// Month returns the calendar month (1–12).
func Month(v Value) Value { return Int(int64(v.Time().Month())) }

// WeekdayName returns the English weekday name, e.g. "Monday".
func WeekdayName(v Value) Value { return String(v.Time().Weekday().String()) }

// Hour returns the hour of day (0–23) as written in the source text.
func Hour(v Value) Value { return Int(int64(v.Time().Hour())) }
