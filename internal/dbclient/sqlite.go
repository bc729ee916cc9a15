package dbclient

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"

	_ "modernc.org/sqlite"
)

// buildSQLiteDSN returns the DSN for a SQLite file, creating its parent
// directory. The file is created by the driver on first write.
func buildSQLiteDSN(conn *domain.StoreConnection) (string, error) {
	if conn.DSN != "" {
		return conn.DSN, nil
	}
	if conn.Path == "" {
		return "", fmt.Errorf("sqlite: path is required")
	}
	if dir := filepath.Dir(conn.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("sqlite: create directory: %w", err)
		}
	}
	return conn.Path + "?_pragma=busy_timeout(5000)", nil
}
