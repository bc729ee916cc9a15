package domain

// StoreDriver represents the type of destination store.
type StoreDriver string

const (
	StoreDriverSQLite   StoreDriver = "sqlite"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverMySQL    StoreDriver = "mysql"
	StoreDriverDuckDB   StoreDriver = "duckdb"
	StoreDriverMongoDB  StoreDriver = "mongodb"
)

// StoreDrivers lists every supported driver.
var StoreDrivers = []StoreDriver{
	StoreDriverSQLite,
	StoreDriverPostgres,
	StoreDriverMySQL,
	StoreDriverDuckDB,
	StoreDriverMongoDB,
}

// Valid reports whether d is a supported driver.
func (d StoreDriver) Valid() bool {
	for _, s := range StoreDrivers {
		if s == d {
			return true
		}
	}
	return false
}

// StoreConnection holds what is needed to reach the destination store.
// File-backed drivers (sqlite, duckdb) only use Path.
type StoreConnection struct {
	Driver   StoreDriver `yaml:"driver"`
	Path     string      `yaml:"path"`     // file path for sqlite/duckdb
	Host     string      `yaml:"host"`     // hostname for network drivers
	Port     int         `yaml:"port"`     // 0 selects the driver default
	Database string      `yaml:"database"` // db name; ignored by file drivers
	Username string      `yaml:"username"`
	Password string      `yaml:"password"`
	SSLMode  string      `yaml:"ssl_mode"`
	DSN      string      `yaml:"dsn"` // overrides everything above when set
}
