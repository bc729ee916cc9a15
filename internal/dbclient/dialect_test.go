package dbclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

func testSchema() etl.Schema {
	return etl.Schema{Fields: []etl.Field{
		{Name: "customer_id", Type: etl.TypeText},
		{Name: "hora_compra", Type: etl.TypeInteger},
		{Name: "price", Type: etl.TypeReal},
		{Name: "order_purchase_timestamp", Type: etl.TypeTimestamp},
	}}
}

func TestDialect_CreateTable(t *testing.T) {
	tests := []struct {
		name string
		d    dialect
		want string
	}{
		{"sqlite", sqliteDialect, `CREATE TABLE "t" ("customer_id" TEXT, "hora_compra" INTEGER, "price" REAL, "order_purchase_timestamp" TIMESTAMP)`},
		{"postgres", postgresDialect, `CREATE TABLE "t" ("customer_id" TEXT, "hora_compra" BIGINT, "price" DOUBLE PRECISION, "order_purchase_timestamp" TIMESTAMP)`},
		{"mysql", mysqlDialect, "CREATE TABLE `t` (`customer_id` TEXT, `hora_compra` BIGINT, `price` DOUBLE, `order_purchase_timestamp` DATETIME)"},
		{"duckdb", duckdbDialect, `CREATE TABLE "t" ("customer_id" VARCHAR, "hora_compra" BIGINT, "price" DOUBLE, "order_purchase_timestamp" TIMESTAMP)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.createTable("t", testSchema(), false))
		})
	}
}

func TestDialect_CreateTableIfNotExists(t *testing.T) {
	got := sqliteDialect.createTable("t", etl.Schema{Fields: []etl.Field{{Name: "a", Type: etl.TypeText}}}, true)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "t" ("a" TEXT)`, got)
}

func TestDialect_Insert(t *testing.T) {
	schema := etl.Schema{Fields: []etl.Field{{Name: "a"}, {Name: "b"}}}
	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES ($1, $2)`, postgresDialect.insert("t", schema))
	assert.Equal(t, "INSERT INTO `t` (`a`, `b`) VALUES (?, ?)", mysqlDialect.insert("t", schema))
	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES (?, ?)`, sqliteDialect.insert("t", schema))
}

func TestDialect_QuoteEscapes(t *testing.T) {
	assert.Equal(t, `"we""ird"`, sqliteDialect.quote(`we"ird`))
	assert.Equal(t, "`we``ird`", mysqlDialect.quote("we`ird"))
}

func TestDialect_Bind(t *testing.T) {
	ts := time.Date(2018, 3, 15, 14, 32, 0, 0, time.UTC)

	assert.Equal(t, "2018-03-15 14:32:00", sqliteDialect.bind(etl.Timestamp(ts)))
	assert.Equal(t, ts, postgresDialect.bind(etl.Timestamp(ts)))
	assert.Nil(t, sqliteDialect.bind(etl.Null()))
	assert.Equal(t, int64(14), mysqlDialect.bind(etl.Int(14)))
}

func TestBuildPostgresDSN(t *testing.T) {
	conn := &domain.StoreConnection{Host: "db", Username: "etl", Password: "pw", Database: "olist"}
	assert.Equal(t, "host=db port=5432 user=etl password=pw dbname=olist sslmode=disable", buildPostgresDSN(conn))

	conn.DSN = "postgres://custom"
	assert.Equal(t, "postgres://custom", buildPostgresDSN(conn))
}

func TestBuildMySQLDSN(t *testing.T) {
	conn := &domain.StoreConnection{Host: "db", Port: 3307, Username: "etl", Password: "pw", Database: "olist", SSLMode: "require"}
	assert.Equal(t, "etl:pw@tcp(db:3307)/olist?parseTime=true&charset=utf8mb4&tls=true", buildMySQLDSN(conn))
}

func TestBuildMongoURI(t *testing.T) {
	assert.Equal(t, "mongodb://localhost:27017", buildMongoURI(&domain.StoreConnection{}))
	assert.Equal(t, "mongodb://etl:pw@db:27018", buildMongoURI(&domain.StoreConnection{
		Host: "db", Port: 27018, Username: "etl", Password: "pw",
	}))
	assert.Equal(t, "mongodb+srv://etl:pw@cluster.example.net/shop", buildMongoURI(&domain.StoreConnection{
		DSN: "mongodb+srv://etl:<password>@cluster.example.net/shop", Password: "pw",
	}))
}

func TestMongoDatabaseName(t *testing.T) {
	assert.Equal(t, "given", mongoDatabaseName("mongodb://h/other", "given"))
	assert.Equal(t, "shop", mongoDatabaseName("mongodb+srv://u:p@cluster/shop?retryWrites=true", ""))
	assert.Equal(t, "olist", mongoDatabaseName("mongodb://localhost:27017", ""))
}

func TestRowDocument_KeepsColumnOrder(t *testing.T) {
	schema := etl.Schema{Fields: []etl.Field{{Name: "b"}, {Name: "a"}}}
	doc := rowDocument(schema, []etl.Value{etl.String("x"), etl.Null()})
	if assert.Len(t, doc, 2) {
		assert.Equal(t, "b", doc[0].Key)
		assert.Equal(t, "x", doc[0].Value)
		assert.Equal(t, "a", doc[1].Key)
		assert.Nil(t, doc[1].Value)
	}
}
