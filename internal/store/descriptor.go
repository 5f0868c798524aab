// Package store writes estimate snapshots into the relational destination.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const optDisable = "disable"

func init() {
	// sqlx does not know the modernc driver name
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Descriptor holds the resolved connection parameters. For sqlite, Schema is the database file.
type Descriptor struct {
	Driver   string
	Host     string
	Port     int
	Login    string
	Password string
	Schema   string
	SSLMode  string
}

// DSN builds the driver-specific data source name
func (d Descriptor) DSN() (string, error) {
	switch d.driver() {
	case DriverPostgres:
		host := strings.TrimSpace(d.Host)
		if host == "" {
			host = "localhost"
		}
		port := d.Port
		if port == 0 {
			port = 5432
		}
		sslmode := strings.ToLower(strings.TrimSpace(d.SSLMode))
		switch sslmode {
		case "":
			sslmode = optDisable
		case optDisable, "require", "verify-ca", "verify-full":
		default:
			return "", fmt.Errorf("unsupported sslmode %q (want disable, require, verify-ca or verify-full)", d.SSLMode)
		}

		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.Login, d.Password),
			Host:     host + ":" + strconv.Itoa(port),
			Path:     "/" + d.Schema,
			RawQuery: "sslmode=" + sslmode,
		}
		return u.String(), nil
	case DriverSQLite:
		if strings.TrimSpace(d.Schema) == "" {
			return "", fmt.Errorf("sqlite database path is required")
		}
		if strings.Contains(d.Schema, "?") {
			return d.Schema, nil
		}
		// Concurrent variant loads share the file; wait for the writer instead of failing
		return d.Schema + "?_pragma=busy_timeout(10000)&_txlock=immediate", nil
	default:
		return "", fmt.Errorf("unsupported database driver: '%s'", d.Driver)
	}
}

// String renders the descriptor without the password, for logs
func (d Descriptor) String() string {
	if d.driver() == DriverSQLite {
		return fmt.Sprintf("sqlite:%s", d.Schema)
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", d.driver(), d.Login, d.Host, d.Port, d.Schema)
}

// Connect opens and pings a single-connection handle.
// The caller owns it and should close it as soon as the load is done.
func (d Descriptor) Connect(ctx context.Context) (*sqlx.DB, error) {
	dsn, err := d.DSN()
	if err != nil {
		return nil, newLoadError(ErrCodeConnect, "", "invalid connection descriptor", err)
	}

	db, err := sqlx.ConnectContext(ctx, d.driver(), dsn)
	if err != nil {
		return nil, newLoadError(ErrCodeConnect, "", "failed to connect to "+d.String(), err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func (d Descriptor) driver() string {
	return strings.ToLower(strings.TrimSpace(d.Driver))
}
