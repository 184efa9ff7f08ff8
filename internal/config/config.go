package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL            string
	ProviderURL            string
	ProviderRetryMax       int
	ProviderRetryBaseDelay time.Duration
	HoldingsTTL            time.Duration
	RefreshInterval        time.Duration
	ReportInterval         time.Duration
	ReportWatchlist        []string
	GoogleSheetsID         string
	GoogleCredentialsJSON  string
	AdminAPIKey            string
	HTTPPort               string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is applied first when
// present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return Config{
		DatabaseURL:            envOrDefaultWarn("DATABASE_URL", ""),
		ProviderURL:            envOrDefault("PROVIDER_URL", "https://api.etfholdings.app"),
		ProviderRetryMax:       envOrDefaultInt("PROVIDER_RETRY_MAX", 5),
		ProviderRetryBaseDelay: envOrDefaultDuration("PROVIDER_RETRY_BASE_DELAY", 2*time.Second),
		HoldingsTTL:            envOrDefaultDuration("HOLDINGS_TTL", 24*time.Hour),
		RefreshInterval:        envOrDefaultDuration("REFRESH_INTERVAL", 6*time.Hour),
		ReportInterval:         envOrDefaultDuration("REPORT_INTERVAL", 24*time.Hour),
		ReportWatchlist:        envList("REPORT_WATCHLIST"),
		GoogleSheetsID:         envOrDefault("GOOGLE_SHEETS_ID", ""),
		GoogleCredentialsJSON:  envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		AdminAPIKey:            envOrDefault("ADMIN_API_KEY", ""),
		HTTPPort:               envOrDefault("HTTP_PORT", "8080"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

// envList parses a comma-separated env var into uppercased symbols.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
