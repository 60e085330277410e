package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Bank API
	APIBaseURL  string
	AccessToken string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger backend selection
	LedgerBackend string

	// Google Sheets ledger
	GoogleSpreadsheetID string
	LedgerSheetName     string

	// Caching
	AccountCacheTTL time.Duration

	// Worker
	RepublishBatchSize int
}

func Load() *Config {
	cfg := &Config{
		APIBaseURL:  getEnv("API_BASE_URL", "https://api-sandbox.starlingbank.com"),
		AccessToken: getEnv("ACCESS_TOKEN", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/roundup.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "roundup"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_transfers"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "memory"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		LedgerSheetName:     getEnv("LEDGER_SHEET_NAME", "Savings"),

		AccountCacheTTL: getEnvDuration("ACCOUNT_CACHE_TTL", 5*time.Minute),

		RepublishBatchSize: getEnvInt("REPUBLISH_BATCH_SIZE", 50),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.AccessToken == "" {
		errors = append(errors, "ACCESS_TOKEN is required")
	}

	if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	validBackends := []string{"memory", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.LedgerBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	if c.LedgerBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets ledger")
		}
		if c.LedgerSheetName == "" {
			errors = append(errors, "ledger sheet name is required when using sheets ledger")
		}
	}

	if c.AccountCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid account cache TTL %v: must be at least 1 second", c.AccountCacheTTL))
	} else if c.AccountCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid account cache TTL %v: must be at most 24 hours", c.AccountCacheTTL))
	}

	if c.RepublishBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid republish batch size %d: must be at least 1", c.RepublishBatchSize))
	} else if c.RepublishBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid republish batch size %d: must be at most 1000", c.RepublishBatchSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
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
