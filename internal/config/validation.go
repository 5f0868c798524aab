package config

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/law-makers/encuestas/internal/extract"
	"github.com/law-makers/encuestas/internal/records"
	"github.com/law-makers/encuestas/internal/store"
	urlutil "github.com/law-makers/encuestas/internal/utils/url"
	"github.com/law-makers/encuestas/pkg/models"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if err := urlutil.ValidateURL(c.Source.URL); err != nil {
		return fmt.Errorf("source url: %w", err)
	}
	if c.Source.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	switch models.FetchMode(c.Source.Mode) {
	case models.ModeStatic, models.ModeBrowser:
	default:
		return fmt.Errorf("fetch mode must be static or browser, got %q", c.Source.Mode)
	}
	if c.Source.Proxy != "" {
		if err := validateProxy(c.Source.Proxy); err != nil {
			return err
		}
	}
	if c.Source.RateLimitRPS <= 0 || c.Source.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if c.Source.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}

	switch c.Database.Driver {
	case store.DriverPostgres, store.DriverSQLite:
	default:
		return fmt.Errorf("database driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.Schema == "" {
		return fmt.Errorf("database schema must be set")
	}
	if _, err := c.Database.Descriptor().DSN(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database port out of range: %d", c.Database.Port)
	}
	if c.Database.BatchSize <= 0 {
		return fmt.Errorf("batch size must be > 0")
	}

	if err := validateTable("candidates", c.Candidates, records.CandidateWidth); err != nil {
		return err
	}
	if err := validateTable("parties", c.Parties, records.PartyWidth); err != nil {
		return err
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry attempts must be >= 1")
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry delay must not be negative")
	}
	return nil
}

func validateTable(name string, t TableConfig, width int) error {
	if t.Anchor == "" {
		return fmt.Errorf("%s: anchor must be set", name)
	}
	if err := extract.ColumnSpec(t.Columns).Validate(width); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := store.ValidateTableName(t.Table); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func validateProxy(p string) error {
	u, err := url.Parse(p)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return fmt.Errorf("proxy scheme must be http, https or socks5, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("proxy: missing host")
	}
	return nil
}
