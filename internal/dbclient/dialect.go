package dbclient

import (
	"strconv"
	"strings"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// dialect captures the SQL differences between the supported engines.
type dialect struct {
	driver     domain.StoreDriver
	driverName string // database/sql driver name
	types      map[etl.ColumnType]string
	backticks  bool // quote identifiers with ` instead of "
	dollarArgs bool // $1, $2 instead of ?
	timeAsText bool // bind timestamps as TimestampLayout text
}

var sqliteDialect = dialect{
	driver:     domain.StoreDriverSQLite,
	driverName: "sqlite",
	types: map[etl.ColumnType]string{
		etl.TypeText:      "TEXT",
		etl.TypeInteger:   "INTEGER",
		etl.TypeReal:      "REAL",
		etl.TypeTimestamp: "TIMESTAMP",
	},
	timeAsText: true,
}

var postgresDialect = dialect{
	driver:     domain.StoreDriverPostgres,
	driverName: "postgres",
	types: map[etl.ColumnType]string{
		etl.TypeText:      "TEXT",
		etl.TypeInteger:   "BIGINT",
		etl.TypeReal:      "DOUBLE PRECISION",
		etl.TypeTimestamp: "TIMESTAMP",
	},
	dollarArgs: true,
}

var mysqlDialect = dialect{
	driver:     domain.StoreDriverMySQL,
	driverName: "mysql",
	types: map[etl.ColumnType]string{
		etl.TypeText:      "TEXT",
		etl.TypeInteger:   "BIGINT",
		etl.TypeReal:      "DOUBLE",
		etl.TypeTimestamp: "DATETIME",
	},
	backticks: true,
}

var duckdbDialect = dialect{
	driver:     domain.StoreDriverDuckDB,
	driverName: "duckdb",
	types: map[etl.ColumnType]string{
		etl.TypeText:      "VARCHAR",
		etl.TypeInteger:   "BIGINT",
		etl.TypeReal:      "DOUBLE",
		etl.TypeTimestamp: "TIMESTAMP",
	},
}

// quote returns name as a quoted identifier.
func (d dialect) quote(name string) string {
	if d.backticks {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// placeholder returns the bind marker for the n-th (1-based) argument.
func (d dialect) placeholder(n int) string {
	if d.dollarArgs {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d dialect) columnType(t etl.ColumnType) string {
	if s, ok := d.types[t]; ok {
		return s
	}
	return d.types[etl.TypeText]
}

// bind converts a cell into a driver argument.
func (d dialect) bind(v etl.Value) any {
	if v.Kind() == etl.KindTime && d.timeAsText {
		return v.Time().Format(etl.TimestampLayout)
	}
	return v.Any()
}

func (d dialect) dropTable(table string) string {
	return "DROP TABLE IF EXISTS " + d.quote(table)
}

func (d dialect) createTable(table string, schema etl.Schema, ifNotExists bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(d.quote(table))
	b.WriteString(" (")
	for i, f := range schema.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.quote(f.Name))
		b.WriteString(" ")
		b.WriteString(d.columnType(f.Type))
	}
	b.WriteString(")")
	return b.String()
}

func (d dialect) insert(table string, schema etl.Schema) string {
	cols := make([]string, len(schema.Fields))
	args := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = d.quote(f.Name)
		args[i] = d.placeholder(i + 1)
	}
	return "INSERT INTO " + d.quote(table) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(args, ", ") + ")"
}
