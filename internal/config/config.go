package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/law-makers/encuestas/internal/store"
	"github.com/law-makers/encuestas/internal/utils/headers"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`
	Quiet    bool   `yaml:"-"`

	Source     SourceConfig   `yaml:"source"`
	Database   DatabaseConfig `yaml:"database"`
	Candidates TableConfig    `yaml:"candidates"`
	Parties    TableConfig    `yaml:"parties"`
	Retry      RetryConfig    `yaml:"retry"`
}

// SourceConfig describes how the source page is fetched
type SourceConfig struct {
	URL          string            `yaml:"url"`
	UserAgent    string            `yaml:"user_agent"`
	Headers      map[string]string `yaml:"headers"`
	Timeout      time.Duration     `yaml:"timeout"`
	Proxy        string            `yaml:"proxy"`
	Mode         string            `yaml:"mode"`
	ChromePath   string            `yaml:"chrome_path"`
	WaitSelector string            `yaml:"wait_selector"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// CacheTTL keeps a fetched page for the other variant of the same run; 0 disables it
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// DatabaseConfig is the destination connection. The password is never
// read from flags.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Login           string `yaml:"login"`
	Password        string `yaml:"password"`
	PasswordKeyring bool   `yaml:"password_keyring"`
	Schema          string `yaml:"schema"`
	SSLMode         string `yaml:"sslmode"`
	BatchSize       int    `yaml:"batch_size"`
}

// Descriptor converts the section into the loader's connection descriptor
func (d DatabaseConfig) Descriptor() store.Descriptor {
	return store.Descriptor{
		Driver:   d.Driver,
		Host:     d.Host,
		Port:     d.Port,
		Login:    d.Login,
		Password: d.Password,
		Schema:   d.Schema,
		SSLMode:  d.SSLMode,
	}
}

// TableConfig maps one source table to its destination
type TableConfig struct {
	Anchor  string `yaml:"anchor"`
	Table   string `yaml:"table"`
	Columns []int  `yaml:"columns"`
}

// RetryConfig bounds the retry of a full run
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		JSONLog:  DefaultJSONLog,
		Source: SourceConfig{
			URL:            DefaultSourceURL,
			UserAgent:      DefaultUserAgent,
			Timeout:        DefaultHTTPTimeout,
			Mode:           DefaultFetchMode,
			RateLimitRPS:   DefaultRateLimitRPS,
			RateLimitBurst: DefaultRateLimitBurst,
			CacheTTL:       DefaultCacheTTL,
		},
		Database: DatabaseConfig{
			Driver:    DefaultDBDriver,
			Host:      DefaultDBHost,
			Port:      DefaultDBPort,
			Schema:    DefaultDBSchema,
			SSLMode:   DefaultDBSSLMode,
			BatchSize: DefaultBatchSize,
		},
		Candidates: TableConfig{
			Anchor:  DefaultCandidatesAnchor,
			Table:   DefaultCandidatesTable,
			Columns: append([]int(nil), DefaultCandidatesColumns...),
		},
		Parties: TableConfig{
			Anchor:  DefaultPartiesAnchor,
			Table:   DefaultPartiesTable,
			Columns: append([]int(nil), DefaultPartiesColumns...),
		},
		Retry: RetryConfig{
			Attempts: DefaultRetryAttempts,
			Delay:    DefaultRetryDelay,
		},
	}
}

// Load builds a Config by combining defaults, an optional YAML file,
// environment variables and CLI flags, in that order of precedence.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv(EnvPrefix + "CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	if err := resolvePassword(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	str("LOG_LEVEL", &cfg.LogLevel)
	str("URL", &cfg.Source.URL)
	str("USER_AGENT", &cfg.Source.UserAgent)
	str("PROXY", &cfg.Source.Proxy)
	str("MODE", &cfg.Source.Mode)
	str("CHROME_PATH", &cfg.Source.ChromePath)
	str("DB_DRIVER", &cfg.Database.Driver)
	str("DB_HOST", &cfg.Database.Host)
	str("DB_LOGIN", &cfg.Database.Login)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_SCHEMA", &cfg.Database.Schema)
	str("DB_SSLMODE", &cfg.Database.SSLMode)

	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Source.Timeout = d
	}
	if v := os.Getenv(EnvPrefix + "DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sDB_PORT: %w", EnvPrefix, err)
		}
		cfg.Database.Port = port
	}
	if v := os.Getenv(EnvPrefix + "DB_PASSWORD_KEYRING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDB_PASSWORD_KEYRING: %w", EnvPrefix, err)
		}
		cfg.Database.PasswordKeyring = b
	}
	return nil
}

func applyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	str := func(name string, dst *string) {
		if changed(name) {
			*dst = flags.Lookup(name).Value.String()
		}
	}

	str("url", &cfg.Source.URL)
	str("user-agent", &cfg.Source.UserAgent)
	str("proxy", &cfg.Source.Proxy)
	str("mode", &cfg.Source.Mode)
	str("db-driver", &cfg.Database.Driver)
	str("db-host", &cfg.Database.Host)
	str("db-login", &cfg.Database.Login)
	str("db-schema", &cfg.Database.Schema)

	if changed("timeout") {
		d, err := time.ParseDuration(flags.Lookup("timeout").Value.String())
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		cfg.Source.Timeout = d
	}
	if changed("db-port") {
		port, err := flags.GetInt("db-port")
		if err != nil {
			return err
		}
		cfg.Database.Port = port
	}
	if changed("batch-size") {
		n, err := flags.GetInt("batch-size")
		if err != nil {
			return err
		}
		cfg.Database.BatchSize = n
	}
	if changed("header") {
		raw, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		parsed, err := headers.ParseHeaders(raw)
		if err != nil {
			return err
		}
		cfg.Source.Headers = headers.Merge(cfg.Source.Headers, parsed)
	}

	if changed("json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.LogLevel = "debug"
	}
	if q, _ := flags.GetBool("quiet"); q {
		cfg.Quiet = true
		cfg.LogLevel = "error"
	}
	return nil
}

// resolvePassword reads the database password from the OS keyring when
// it is not configured and the keyring lookup is enabled.
func resolvePassword(cfg *Config) error {
	db := &cfg.Database
	if db.Password != "" || !db.PasswordKeyring {
		return nil
	}
	if db.Login == "" {
		return fmt.Errorf("database login is required for keyring lookup")
	}

	secret, err := keyring.Get(KeyringService, db.Login)
	if err != nil {
		return fmt.Errorf("failed to read database password from keyring (service %q, user %q): %w",
			KeyringService, db.Login, err)
	}
	db.Password = secret
	return nil
}
