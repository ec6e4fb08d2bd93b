package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// WhatsApp delivery providers.
const (
	ProviderLink    = "link"
	ProviderMeta    = "meta"
	ProviderBackend = "backend"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Postgres PostgresConfig
	WhatsApp WhatsAppConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	Sheets   SheetsConfig
	Billing  BillingConfig
	Authz    AuthzConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
	Env  string
}

// BackendConfig points at the REST backend that owns units, staff and students.
type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// PostgresConfig holds the DSN of the hosted Postgres used for stored procedures.
type PostgresConfig struct {
	DSN string
}

// WhatsAppConfig contains options for outbound WhatsApp messages. The "link"
// provider only builds wa.me links; "meta" also sends through the Cloud API;
// "backend" hands invoice reminders to the backend's own sender.
type WhatsAppConfig struct {
	Provider      string
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	CountryCode   string
	// ReportRecipient receives the scheduled cash summary; empty disables it.
	ReportRecipient string
}

// MongoDBConfig holds settings for the payout run journal.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the query cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SheetsConfig contains configuration required to sync payouts to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// BillingConfig holds invoice generation and listing settings.
type BillingConfig struct {
	InvoiceCron string
	ReportCron  string
	DueDay      int
	Timezone    string
	PageSize    int
}

// AuthzConfig selects how role policies are applied.
type AuthzConfig struct {
	Mode string
	// PolicyPath optionally replaces the built-in role policy with a CSV file.
	PolicyPath string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	backendTimeout, err := getenvDuration("BACKEND_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getenvDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	dueDay, err := getenvInt("INVOICE_DUE_DAY", 10)
	if err != nil {
		return nil, err
	}
	pageSize, err := getenvInt("PAGE_SIZE", 25)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
			Env:  getenvWithDefault("APP_ENV", "production"),
		},
		Backend: BackendConfig{
			BaseURL: os.Getenv("BACKEND_API_URL"),
			Token:   os.Getenv("BACKEND_API_TOKEN"),
			Timeout: backendTimeout,
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		WhatsApp: WhatsAppConfig{
			Provider:        strings.ToLower(getenvWithDefault("WHATSAPP_PROVIDER", ProviderLink)),
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			CountryCode:     getenvWithDefault("WHATSAPP_COUNTRY_CODE", "55"),
			ReportRecipient: os.Getenv("REPORT_WHATSAPP_TO"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "franchise"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			TTL:      cacheTTL,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Billing: BillingConfig{
			InvoiceCron: getenvWithDefault("INVOICE_CRON_SCHEDULE", "0 6 1 * *"),
			ReportCron:  getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			DueDay:      dueDay,
			Timezone:    getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
			PageSize:    pageSize,
		},
		Authz: AuthzConfig{
			Mode:       strings.ToLower(getenvWithDefault("AUTHZ_MODE", "enforce")),
			PolicyPath: os.Getenv("AUTHZ_POLICY_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_API_URL must be provided")
	}

	if c.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN must be provided")
	}

	switch c.WhatsApp.Provider {
	case ProviderLink, ProviderBackend:
	case ProviderMeta:
		switch {
		case c.WhatsApp.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided for the meta provider")
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided for the meta provider")
		}
	default:
		return fmt.Errorf("WHATSAPP_PROVIDER %q is not supported (link|meta|backend)", c.WhatsApp.Provider)
	}

	if c.WhatsApp.ReportRecipient != "" && c.WhatsApp.Provider != ProviderMeta {
		return errors.New("REPORT_WHATSAPP_TO requires WHATSAPP_PROVIDER=meta")
	}

	if c.WhatsApp.CountryCode == "" {
		return errors.New("WHATSAPP_COUNTRY_CODE must not be empty")
	}

	if c.Billing.DueDay < 1 || c.Billing.DueDay > 28 {
		return errors.New("INVOICE_DUE_DAY must be between 1 and 28")
	}

	switch c.Billing.PageSize {
	case 25, 50, 100:
	default:
		return errors.New("PAGE_SIZE must be one of 25, 50 or 100")
	}

	if c.Billing.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Billing.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.Billing.InvoiceCron == "" {
		return errors.New("INVOICE_CRON_SCHEDULE must be provided")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPORT_ID must be set together")
	}

	switch c.Authz.Mode {
	case "enforce", "shadow", "disabled":
	default:
		return fmt.Errorf("AUTHZ_MODE %q is invalid (enforce|shadow|disabled)", c.Authz.Mode)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}
