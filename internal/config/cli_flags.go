package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", false, "Log in JSON format")
	pf.String("config", "", "Path to YAML configuration file (optional)")

	pf.String("url", "", "Source page URL (default "+DefaultSourceURL+")")
	pf.String("user-agent", "", "User-Agent sent to the source")
	pf.StringArrayP("header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")
	pf.String("timeout", "", "Request timeout (e.g. 30s)")
	pf.String("proxy", "", "HTTP/SOCKS5 proxy (e.g. http://localhost:8080)")
	pf.String("mode", "", "Fetch mode: static or browser")

	pf.String("db-driver", "", "Destination driver: postgres or sqlite")
	pf.String("db-host", "", "Destination host")
	pf.Int("db-port", 0, "Destination port")
	pf.String("db-login", "", "Destination login")
	pf.String("db-schema", "", "Destination database (sqlite: file path)")
	pf.Int("batch-size", 0, "Rows per insert batch")
}
