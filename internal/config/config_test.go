package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "file", cfg.Source)
	assert.Equal(t, domain.StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "olist_etl.db", cfg.Store.Path)
	assert.Equal(t, "pedidos_enriquecidos", cfg.Table)
	assert.Equal(t, etl.SyncReplace, cfg.SyncMode())
}

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `data_dir: /srv/olist
source: s3
s3:
  bucket: raw
  prefix: olist/2018
  region: sa-east-1
  endpoint: http://localhost:9000
store:
  driver: postgres
  host: db
  port: 5433
  database: analytics
  username: etl
  ssl_mode: require
table: orders_enriched
mode: append
history_db: state/history.db
schedule: "0 3 * * *"
run_timeout: 10m
log_level: debug
log_format: json
`
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/olist", cfg.DataDir)
	assert.Equal(t, "s3", cfg.Source)
	assert.Equal(t, "raw", cfg.S3.Bucket)
	assert.Equal(t, "olist/2018", cfg.S3.Prefix)
	assert.Equal(t, "sa-east-1", cfg.S3.Region)
	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.Equal(t, domain.StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "db", cfg.Store.Host)
	assert.Equal(t, 5433, cfg.Store.Port)
	assert.Equal(t, "analytics", cfg.Store.Database)
	assert.Equal(t, "require", cfg.Store.SSLMode)
	assert.Equal(t, "orders_enriched", cfg.Table)
	assert.Equal(t, etl.SyncAppend, cfg.SyncMode())
	assert.Equal(t, "state/history.db", cfg.HistoryDB)
	assert.Equal(t, "0 3 * * *", cfg.Schedule)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_MinimalYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("table: custom\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Table)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "olist_etl.db", cfg.Store.Path)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{{invalid"), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"OLIST_DATA_DIR":     "/in",
		"OLIST_STORE_DRIVER": "mysql",
		"OLIST_STORE_HOST":   "mysql.local",
		"OLIST_STORE_PORT":   "3307",
		"OLIST_MODE":         "append",
		"OLIST_RUN_TIMEOUT":  "90s",
		"UNRELATED":          "x",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/in", cfg.DataDir)
	assert.Equal(t, domain.StoreDriverMySQL, cfg.Store.Driver)
	assert.Equal(t, "mysql.local", cfg.Store.Host)
	assert.Equal(t, 3307, cfg.Store.Port)
	assert.Equal(t, "append", cfg.Mode)
	assert.Equal(t, 90*time.Second, cfg.RunTimeout)
	assert.Equal(t, "pedidos_enriquecidos", cfg.Table)
}

func TestApplyEnv_BadPort(t *testing.T) {
	err := Default().ApplyEnv(envMap(map[string]string{"OLIST_STORE_PORT": "abc"}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Source = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Source = "s3" }},
		{"http without base url", func(c *Config) { c.Source = "http" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "oracle" }},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }},
		{"postgres without host", func(c *Config) { c.Store.Driver = domain.StoreDriverPostgres }},
		{"empty table", func(c *Config) { c.Table = "" }},
		{"unknown mode", func(c *Config) { c.Mode = "merge" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative timeout", func(c *Config) { c.RunTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestSourceConfig(t *testing.T) {
	cfg := Default()
	typ, sc := cfg.SourceConfig()
	assert.Equal(t, "file", typ)
	assert.Equal(t, "data", sc["dir"])

	cfg.Source = "s3"
	cfg.S3.Bucket = "raw"
	typ, sc = cfg.SourceConfig()
	assert.Equal(t, "s3", typ)
	assert.Equal(t, "raw", sc["bucket"])

	cfg.Source = "http"
	cfg.HTTP.BaseURL = "https://files.example.com/olist"
	typ, sc = cfg.SourceConfig()
	assert.Equal(t, "http", typ)
	assert.Equal(t, "https://files.example.com/olist", sc["baseUrl"])
}

func TestResolve_Layers(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(ConfigFileName, []byte("table: from_yaml\nschedule: \"@hourly\"\n"), 0644))
	require.NoError(t, os.WriteFile(".env", []byte("OLIST_HISTORY_DB=from_dotenv.db\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("OLIST_HISTORY_DB") })
	t.Setenv("OLIST_TABLE", "from_env")

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Table, "environment beats YAML")
	assert.Equal(t, "@hourly", cfg.Schedule, "YAML beats defaults")
	assert.Equal(t, "from_dotenv.db", cfg.HistoryDB, ".env feeds the environment")
}

func TestResolve_ExplicitPathMustExist(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Resolve("missing.yaml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResolve_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "olist_etl.db", cfg.Store.Path)
}
