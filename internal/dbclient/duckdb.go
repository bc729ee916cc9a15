package dbclient

import (
	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"

	_ "github.com/duckdb/duckdb-go/v2"
)

// buildDuckDBDSN returns the database file path. An empty path opens an
// in-memory database.
func buildDuckDBDSN(conn *domain.StoreConnection) string {
	if conn.DSN != "" {
		return conn.DSN
	}
	return conn.Path
}
