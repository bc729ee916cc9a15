package etl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

func TestDecodeCSV_InfersColumnTypes(t *testing.T) {
	in := "order_id,order_item_id,price,shipping_limit_date,note\n" +
		"o1,1,58.90,2017-09-19 09:45:35,\n" +
		"o2,2,239,2017-05-03 11:05:13,fragile\n"

	tbl, err := etl.DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []etl.Field{
		{Name: "order_id", Type: etl.TypeText},
		{Name: "order_item_id", Type: etl.TypeInteger},
		{Name: "price", Type: etl.TypeReal},
		{Name: "shipping_limit_date", Type: etl.TypeText},
		{Name: "note", Type: etl.TypeText},
	}, tbl.Schema.Fields)
	require.Equal(t, 2, tbl.Len())

	row := tbl.Rows[0]
	assert.Equal(t, "o1", row[0].Str())
	assert.Equal(t, int64(1), row[1].Int())
	assert.InDelta(t, 58.90, row[2].Float(), 1e-9)
	assert.True(t, row[4].IsNull(), "empty cell is null")
	assert.Equal(t, float64(239), tbl.Rows[1][2].Float(), "integers in a real column widen")
}

func TestDecodeCSV_AllEmptyColumnIsText(t *testing.T) {
	tbl, err := etl.DecodeCSV(strings.NewReader("a,b\n1,\n2,\n"))
	require.NoError(t, err)
	assert.Equal(t, etl.TypeText, tbl.Schema.Fields[1].Type)
	assert.True(t, tbl.Rows[0][1].IsNull())
}

func TestDecodeCSV_QuotedFields(t *testing.T) {
	in := "customer_id,customer_city\n\"c1\",\"sao paulo, sp\"\n"
	tbl, err := etl.DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "sao paulo, sp", tbl.Rows[0][1].Str())
}

func TestDecodeCSV_StripsBOM(t *testing.T) {
	tbl, err := etl.DecodeCSV(strings.NewReader("\ufeffcustomer_id\nc1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_id"}, tbl.Schema.FieldNames())
}

func TestDecodeCSV_HeaderOnly(t *testing.T) {
	tbl, err := etl.DecodeCSV(strings.NewReader("order_id,customer_id\n"))
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
	assert.Len(t, tbl.Schema.Fields, 2)
}

func TestDecodeCSV_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"blank column name", "a,,c\n1,2,3\n"},
		{"duplicate column", "a,a\n1,2\n"},
		{"ragged row", "a,b\n1,2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := etl.DecodeCSV(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, etl.ErrParse)
		})
	}
}
