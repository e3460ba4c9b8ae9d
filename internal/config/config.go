// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port               string
	RateLimitPerMinute int
	// TrustedProxies are extra CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	CacheTTL     time.Duration

	// AMQP change publication; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror; disabled when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID      string
	GoogleInvoicesSheet      string
	GoogleExpensesSheet      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	SyncInterval             time.Duration

	// Domain
	InvoicePrefix string

	LogLevel string
}

// Backends accepted by DATA_BACKEND.
var Backends = []string{"memory", "sqlite"}

var invoicePrefixPattern = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tripdesk.db"),
		CacheTTL:     getEnvDuration("CACHE_TTL", 2*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tripdesk"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleInvoicesSheet:      getEnv("GOOGLE_INVOICES_SHEET", "Manifest"),
		GoogleExpensesSheet:      getEnv("GOOGLE_EXPENSES_SHEET", "Ledger"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		SyncInterval:             getEnvDuration("SYNC_INTERVAL", 5*time.Minute),

		InvoicePrefix: strings.ToUpper(getEnv("INVOICE_PREFIX", "VRT")),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// AMQPEnabled reports whether record changes should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// MirrorEnabled reports whether the Google Sheets mirror is configured.
func (c *Config) MirrorEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			problems = append(problems, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	validBackend := false
	for _, b := range Backends {
		if c.DataBackend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if info, err := os.Stat(dir); err == nil && !info.IsDir() {
				problems = append(problems, fmt.Sprintf("SQLite database directory '%s' is not a directory", dir))
			}
		}
	}

	if c.CacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleInvoicesSheet == "" || c.GoogleExpensesSheet == "" {
			problems = append(problems, "Google sheet names cannot be empty when a spreadsheet is configured")
		} else if c.GoogleInvoicesSheet == c.GoogleExpensesSheet {
			problems = append(problems, "invoices and expenses must be mirrored to different sheets")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.SyncInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if !invoicePrefixPattern.MatchString(c.InvoicePrefix) {
		problems = append(problems, fmt.Sprintf("invalid invoice prefix '%s': must be 2-8 upper-case letters or digits", c.InvoicePrefix))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
