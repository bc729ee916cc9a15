package dbclient

import (
	"context"
	"fmt"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// Store is a handle on the destination store.
type Store interface {
	etl.Destination

	// Driver reports which driver backs the store.
	Driver() domain.StoreDriver

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the handle.
	Close() error
}

// Open creates a Store for the given connection. No round trip to the
// server is made; drivers connect lazily on first use.
func Open(conn *domain.StoreConnection) (Store, error) {
	switch conn.Driver {
	case domain.StoreDriverSQLite, "":
		dsn, err := buildSQLiteDSN(conn)
		if err != nil {
			return nil, err
		}
		return newSQLStore(sqliteDialect, dsn)
	case domain.StoreDriverPostgres:
		return newSQLStore(postgresDialect, buildPostgresDSN(conn))
	case domain.StoreDriverMySQL:
		return newSQLStore(mysqlDialect, buildMySQLDSN(conn))
	case domain.StoreDriverDuckDB:
		return newSQLStore(duckdbDialect, buildDuckDBDSN(conn))
	case domain.StoreDriverMongoDB:
		return newMongoStore(conn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver)
	}
}

// Describe returns a printable, password-free description of conn.
func Describe(conn *domain.StoreConnection) string {
	switch conn.Driver {
	case domain.StoreDriverSQLite, domain.StoreDriverDuckDB, "":
		driver := conn.Driver
		if driver == "" {
			driver = domain.StoreDriverSQLite
		}
		if conn.DSN != "" {
			return fmt.Sprintf("%s (custom dsn)", driver)
		}
		return fmt.Sprintf("%s:%s", driver, conn.Path)
	default:
		if conn.DSN != "" {
			return fmt.Sprintf("%s (custom dsn)", conn.Driver)
		}
		return fmt.Sprintf("%s://%s@%s:%d/%s", conn.Driver, conn.Username, conn.Host, conn.Port, conn.Database)
	}
}
