package etl

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV reads comma-delimited text with a mandatory header row and
// infers one type per column: integer if every non-empty cell is an int64,
// real if every non-empty cell is a float, text otherwise. Empty cells are null.
func DecodeCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = ','
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrParse, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var raw [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError carries line and column; ragged rows land here too
			// because FieldsPerRecord defaults to the header width.
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		raw = append(raw, rec)
	}

	types := inferColumnTypes(len(header), raw)
	t := &Table{Schema: Schema{Fields: make([]Field, len(header))}}
	for i, h := range header {
		t.Schema.Fields[i] = Field{Name: h, Type: types[i]}
	}

	t.Rows = make([][]Value, 0, len(raw))
	for _, rec := range raw {
		row := make([]Value, len(header))
		for j, cell := range rec {
			row[j] = convertCell(cell, types[j])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func checkHeader(header []string) error {
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return fmt.Errorf("%w: empty header row", ErrParse)
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if h == "" {
			return fmt.Errorf("%w: blank column name in header", ErrParse)
		}
		if seen[h] {
			return fmt.Errorf("%w: duplicate column %q in header", ErrParse, h)
		}
		seen[h] = true
	}
	return nil
}

func inferColumnTypes(width int, rows [][]string) []ColumnType {
	types := make([]ColumnType, width)
	for j := 0; j < width; j++ {
		isInt, isFloat, seen := true, true, false
		for _, rec := range rows {
			cell := rec[j]
			if cell == "" {
				continue
			}
			seen = true
			if isInt {
				if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
					isInt = false
				}
			}
			if !isInt && isFloat {
				if _, err := strconv.ParseFloat(cell, 64); err != nil {
					isFloat = false
				}
			}
			if !isInt && !isFloat {
				break
			}
		}
		switch {
		case !seen:
			types[j] = TypeText
		case isInt:
			types[j] = TypeInteger
		case isFloat:
			types[j] = TypeReal
		default:
			types[j] = TypeText
		}
	}
	return types
}

// convertCell turns a raw cell into a Value of the inferred column type.
// The type was inferred from these same cells so the parse cannot fail.
func convertCell(cell string, typ ColumnType) Value {
	if cell == "" {
		return Null()
	}
	switch typ {
	case TypeInteger:
		n, _ := strconv.ParseInt(cell, 10, 64)
		return Int(n)
	case TypeReal:
		f, _ := strconv.ParseFloat(cell, 64)
		return Float(f)
	default:
		return String(cell)
	}
}
