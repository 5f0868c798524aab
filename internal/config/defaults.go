package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultSourceURL = "https://oraculus.mx/presidente2024/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/113.0"
	DefaultFetchMode = "static"

	DefaultHTTPTimeout    = 30 * time.Second
	DefaultBrowserTimeout = 60 * time.Second
	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 1
	DefaultCacheTTL       = time.Minute

	DefaultDBDriver  = "postgres"
	DefaultDBHost    = "localhost"
	DefaultDBPort    = 5432
	DefaultDBSchema  = "encuestas"
	DefaultDBSSLMode = "disable"
	DefaultBatchSize = 1000

	DefaultCandidatesAnchor = "table_1"
	DefaultCandidatesTable  = "candidatos"
	DefaultPartiesAnchor    = "table_2"
	DefaultPartiesTable     = "partidos"

	DefaultRetryAttempts = 2
	DefaultRetryDelay    = 5 * time.Minute

	// KeyringService is the OS keyring service holding the database password
	KeyringService = "encuestas"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "ENCUESTAS_"
)

// Default column layouts; column 3 of both source tables is skipped
var (
	DefaultCandidatesColumns = []int{0, 1, 2, 4, 5, 6}
	DefaultPartiesColumns    = []int{0, 1, 2, 4, 5, 6, 7, 8, 9, 10, 11}
)
