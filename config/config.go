package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV:
//
//	SERVER_PORT=8080
//	ALPHA_VANTAGE_API_KEY=demo
//	ALPHA_VANTAGE_OUTPUT_SIZE=full
//	ALPHA_VANTAGE_DATATYPE=json
//	ALPHA_VANTAGE_TIMEOUT=15s
//	WARM_SYMBOLS=AAPL,MSFT
//	AUDIT_ENABLED=false
//	POSTGRES_HOST=localhost
type Config struct {
	Server       ServerConfig       // HTTP server configuration
	AlphaVantage AlphaVantageConfig // quote provider settings
	Warmup       WarmupConfig       // symbols prefetched at startup
	Audit        AuditConfig        // query audit log
	Postgres     PostgresConfig     // PostgreSQL connection settings (audit log)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        // TCP port the HTTP server listens on (e.g., "8080")
	RequestTimeout     time.Duration // per-request deadline applied by the router
	RateLimitPerMinute int           // requests per client IP per minute
}

// AlphaVantageConfig configures the remote quote source.
//
// Fields:
//   - APIKey: default key; requests may override it. May be empty when every
//     caller supplies its own key.
//   - BaseURL: query endpoint.
//   - OutputSize: "full" or "compact".
//   - DataType: "json" or "csv".
//   - Timeout: overall HTTP timeout of one fetch.
type AlphaVantageConfig struct {
	APIKey     string
	BaseURL    string
	OutputSize string
	DataType   string
	Timeout    time.Duration
}

// WarmupConfig lists symbols fetched into the cache when the API starts.
type WarmupConfig struct {
	Symbols  []string
	Parallel int
}

// AuditConfig toggles the Postgres query audit log.
type AuditConfig struct {
	Enabled bool
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If values are missing or invalid, validateConfig() terminates the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	viper.SetDefault("ALPHA_VANTAGE_API_KEY", "")
	viper.SetDefault("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query")
	viper.SetDefault("ALPHA_VANTAGE_OUTPUT_SIZE", "full")
	viper.SetDefault("ALPHA_VANTAGE_DATATYPE", "json")
	viper.SetDefault("ALPHA_VANTAGE_TIMEOUT", "15s")

	viper.SetDefault("WARM_SYMBOLS", "")
	viper.SetDefault("WARM_PARALLEL", 2)

	viper.SetDefault("AUDIT_ENABLED", false)
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "quotepulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			RequestTimeout:     viper.GetDuration("SERVER_REQUEST_TIMEOUT"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey:     strings.TrimSpace(viper.GetString("ALPHA_VANTAGE_API_KEY")),
			BaseURL:    viper.GetString("ALPHA_VANTAGE_BASE_URL"),
			OutputSize: strings.ToLower(viper.GetString("ALPHA_VANTAGE_OUTPUT_SIZE")),
			DataType:   strings.ToLower(viper.GetString("ALPHA_VANTAGE_DATATYPE")),
			Timeout:    viper.GetDuration("ALPHA_VANTAGE_TIMEOUT"),
		},
		Warmup: WarmupConfig{
			Symbols:  SplitSymbols(viper.GetString("WARM_SYMBOLS")),
			Parallel: viper.GetInt("WARM_PARALLEL"),
		},
		Audit: AuditConfig{
			Enabled: viper.GetBool("AUDIT_ENABLED"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// SplitSymbols parses a comma or whitespace separated symbol list,
// upper-casing entries and dropping blanks and duplicates.
func SplitSymbols(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.ToUpper(f)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// problems lists every missing or invalid setting of cfg.
func problems(cfg Config) []string {
	var out []string

	if cfg.Server.Port == "" {
		out = append(out, "SERVER_PORT")
	}
	if cfg.Server.RequestTimeout <= 0 {
		out = append(out, "SERVER_REQUEST_TIMEOUT")
	}
	if cfg.AlphaVantage.BaseURL == "" {
		out = append(out, "ALPHA_VANTAGE_BASE_URL")
	}
	if cfg.AlphaVantage.OutputSize != "full" && cfg.AlphaVantage.OutputSize != "compact" {
		out = append(out, "ALPHA_VANTAGE_OUTPUT_SIZE (full|compact)")
	}
	if cfg.AlphaVantage.DataType != "json" && cfg.AlphaVantage.DataType != "csv" {
		out = append(out, "ALPHA_VANTAGE_DATATYPE (json|csv)")
	}
	if cfg.AlphaVantage.Timeout <= 0 {
		out = append(out, "ALPHA_VANTAGE_TIMEOUT")
	}

	if cfg.Audit.Enabled {
		if cfg.Postgres.Host == "" {
			out = append(out, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			out = append(out, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			out = append(out, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			out = append(out, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			out = append(out, "POSTGRES_DB")
		}
	}
	return out
}

// validateConfig terminates the application when AppConfig has missing or
// invalid settings.
func validateConfig() {
	if missing := problems(AppConfig); len(missing) > 0 {
		log.Fatalf("❌ Missing or invalid environment variables: %v\n", missing)
	}
}
