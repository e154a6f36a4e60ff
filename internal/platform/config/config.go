package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// VaultSecret encrypts stored portal credentials. Mandatory in
	// production; a known development key is substituted otherwise.
	VaultSecret string

	// External portal
	PortalBaseURL string
	PortalTimeout time.Duration

	// Transaction feeds
	BankFeedURL        string
	BankFeedAPIKey     string
	CMSFeedURL         string
	CMSFeedAPIKey      string
	FeedTimeout        time.Duration
	SheetsCredentials  string // path to service account JSON, empty disables the feed
	SheetsReadRange    string
	SheetsSpreadsheets map[string]string // kindergartenID -> spreadsheet ID
	TransmitRatePerMin int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "kinderledger")
	viper.SetDefault("VAULT_SECRET", "")
	viper.SetDefault("PORTAL_BASE_URL", "")
	viper.SetDefault("PORTAL_TIMEOUT", "90s")
	viper.SetDefault("BANK_FEED_URL", "")
	viper.SetDefault("BANK_FEED_API_KEY", "")
	viper.SetDefault("CMS_FEED_URL", "")
	viper.SetDefault("CMS_FEED_API_KEY", "")
	viper.SetDefault("FEED_TIMEOUT", "30s")
	viper.SetDefault("SHEETS_CREDENTIALS_FILE", "")
	viper.SetDefault("SHEETS_READ_RANGE", "A2:E")
	viper.SetDefault("TRANSMIT_RATE_PER_MIN", 10)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-only-insecure-jwt-secret"
		log.Println("Warning: JWT_SECRET not set. Using insecure development key.")
	}

	cfg.JWTExpiryDuration = parseDurationOr("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.VaultSecret = viper.GetString("VAULT_SECRET")
	if cfg.VaultSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("VAULT_SECRET must be set in production")
		}
		cfg.VaultSecret = "dev-only-insecure-vault-secret"
		log.Println("Warning: VAULT_SECRET not set. Using insecure development key.")
	}

	cfg.PortalBaseURL = viper.GetString("PORTAL_BASE_URL")
	cfg.PortalTimeout = parseDurationOr("PORTAL_TIMEOUT", 90*time.Second)

	cfg.BankFeedURL = viper.GetString("BANK_FEED_URL")
	cfg.BankFeedAPIKey = viper.GetString("BANK_FEED_API_KEY")
	cfg.CMSFeedURL = viper.GetString("CMS_FEED_URL")
	cfg.CMSFeedAPIKey = viper.GetString("CMS_FEED_API_KEY")
	cfg.FeedTimeout = parseDurationOr("FEED_TIMEOUT", 30*time.Second)
	cfg.SheetsCredentials = viper.GetString("SHEETS_CREDENTIALS_FILE")
	cfg.SheetsReadRange = viper.GetString("SHEETS_READ_RANGE")
	cfg.SheetsSpreadsheets = viper.GetStringMapString("SHEETS_SPREADSHEETS")
	cfg.TransmitRatePerMin = viper.GetInt64("TRANSMIT_RATE_PER_MIN")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
