// Package config loads the pipeline configuration from defaults, an
// optional YAML file, a .env file and OLIST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl/sources"
	"github.com/nandonunes77/pipeline-etl-olist/internal/logging"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigFileName is looked up in the working directory when no explicit
// path is given.
const ConfigFileName = "olist-etl.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OLIST_"

// Defaults.
const (
	DefaultDataDir   = "data"
	DefaultStorePath = "olist_etl.db"
)

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type HTTPConfig struct {
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`
}

type Config struct {
	DataDir    string                 `yaml:"data_dir"`
	Source     string                 `yaml:"source"`
	S3         S3Config               `yaml:"s3"`
	HTTP       HTTPConfig             `yaml:"http"`
	Store      domain.StoreConnection `yaml:"store"`
	Table      string                 `yaml:"table"`
	Mode       string                 `yaml:"mode"`
	HistoryDB  string                 `yaml:"history_db"`
	Schedule   string                 `yaml:"schedule"`
	RunTimeout time.Duration          `yaml:"run_timeout"`
	LogLevel   string                 `yaml:"log_level"`
	LogFormat  string                 `yaml:"log_format"`
}

// Default returns the configuration used when nothing overrides it: CSVs
// under ./data and a SQLite file olist_etl.db in the working directory.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Source:  sources.TypeFile,
		Store: domain.StoreConnection{
			Driver: domain.StoreDriverSQLite,
			Path:   DefaultStorePath,
		},
		Table:     etl.DefaultTable,
		Mode:      string(etl.SyncReplace),
		LogLevel:  "info",
		LogFormat: logging.FormatText,
	}
}

// Load reads the YAML file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies every layer below the CLI flags. An explicit path must
// exist; the implicit olist-etl.yaml is optional.
func Resolve(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		cfg = loaded
	default:
		loaded, err := Load(ConfigFileName)
		switch {
		case err == nil:
			cfg = loaded
		case !errors.Is(err, ErrConfigNotFound):
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, ConfigFileName, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from OLIST_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DATA_DIR":             &c.DataDir,
		"SOURCE":               &c.Source,
		"S3_BUCKET":            &c.S3.Bucket,
		"S3_PREFIX":            &c.S3.Prefix,
		"S3_REGION":            &c.S3.Region,
		"S3_ENDPOINT":          &c.S3.Endpoint,
		"S3_ACCESS_KEY_ID":     &c.S3.AccessKeyID,
		"S3_SECRET_ACCESS_KEY": &c.S3.SecretAccessKey,
		"HTTP_BASE_URL":        &c.HTTP.BaseURL,
		"STORE_PATH":           &c.Store.Path,
		"STORE_HOST":           &c.Store.Host,
		"STORE_DATABASE":       &c.Store.Database,
		"STORE_USERNAME":       &c.Store.Username,
		"STORE_PASSWORD":       &c.Store.Password,
		"STORE_SSL_MODE":       &c.Store.SSLMode,
		"STORE_DSN":            &c.Store.DSN,
		"TABLE":                &c.Table,
		"MODE":                 &c.Mode,
		"HISTORY_DB":           &c.HistoryDB,
		"SCHEDULE":             &c.Schedule,
		"LOG_LEVEL":            &c.LogLevel,
		"LOG_FORMAT":           &c.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "STORE_DRIVER"); ok {
		c.Store.Driver = domain.StoreDriver(v)
	}
	if v, ok := lookup(EnvPrefix + "STORE_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sSTORE_PORT: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		c.Store.Port = port
	}
	if v, ok := lookup(EnvPrefix + "RUN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sRUN_TIMEOUT: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		c.RunTimeout = d
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source {
	case sources.TypeFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("data_dir is required for the file source"))
		}
	case sources.TypeS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("s3.bucket is required for the s3 source"))
		}
	case sources.TypeHTTP:
		if c.HTTP.BaseURL == "" {
			errs = append(errs, errors.New("http.base_url is required for the http source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}

	if !c.Store.Driver.Valid() {
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Store.Driver {
	case domain.StoreDriverSQLite:
		if c.Store.Path == "" && c.Store.DSN == "" {
			errs = append(errs, errors.New("store.path is required for sqlite"))
		}
	case domain.StoreDriverPostgres, domain.StoreDriverMySQL:
		if c.Store.Host == "" && c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.host or store.dsn is required for %s", c.Store.Driver))
		}
	}

	if c.Table == "" {
		errs = append(errs, errors.New("table is required"))
	}
	if _, err := etl.ParseSyncMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.RunTimeout < 0 {
		errs = append(errs, errors.New("run_timeout must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SyncMode returns the parsed write mode. Call after Validate.
func (c *Config) SyncMode() etl.SyncMode {
	m, _ := etl.ParseSyncMode(c.Mode)
	return m
}

// SourceConfig returns the registry key and configuration map for the
// selected source.
func (c *Config) SourceConfig() (string, etl.SourceConfig) {
	switch c.Source {
	case sources.TypeS3:
		return c.Source, etl.SourceConfig{
			"bucket":          c.S3.Bucket,
			"prefix":          c.S3.Prefix,
			"region":          c.S3.Region,
			"endpoint":        c.S3.Endpoint,
			"accessKeyId":     c.S3.AccessKeyID,
			"secretAccessKey": c.S3.SecretAccessKey,
		}
	case sources.TypeHTTP:
		return c.Source, etl.SourceConfig{
			"baseUrl": c.HTTP.BaseURL,
			"headers": c.HTTP.Headers,
		}
	default:
		return c.Source, etl.SourceConfig{"dir": c.DataDir}
	}
}
