package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	AdminKeySalt   string
	BoothTokenSalt string
	AdminEmails    []string
	Timezone       string
	Location       *time.Location
	SeedFile       string
	LogLevel       string
	PrintAdminKey  string

	// Optional integrations, disabled when empty
	PDFEnabled    bool
	ChromeTimeout time.Duration
	MailgunDomain string
	MailgunAPIKey string
	MailgunFrom   string
	GeminiAPIKey  string
	GeminiModel   string
	WatchCron     string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("cipa-server", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.Timezone, "tz", "", "Timezone used to evaluate the schedule")
	fs.StringVar(&cfg.SeedFile, "seed", "", "YAML seed file applied on first run")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.BoothTokenSalt, "booth-salt", "", "Booth token salt (prefer env)")

	fs.StringVar(&cfg.PrintAdminKey, "print-admin-key", "", "Print the admin key for an email and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.BoothTokenSalt == "" {
		cfg.BoothTokenSalt = os.Getenv("BOOTH_TOKEN_SALT")
	}
	if cfg.BoothTokenSalt == "" {
		return Config{}, errors.New("BOOTH_TOKEN_SALT required")
	}

	if cfg.Timezone == "" {
		cfg.Timezone = envOr("TIMEZONE", "America/Sao_Paulo")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}
	cfg.AdminEmails = splitList(os.Getenv("ADMIN_EMAILS"))
	cfg.LogLevel = envOr("LOG_LEVEL", "info")

	if v := os.Getenv("PDF_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("invalid PDF_ENABLED env variable")
		}
		cfg.PDFEnabled = enabled
	}
	cfg.ChromeTimeout = 30 * time.Second
	if v := os.Getenv("CHROME_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.New("invalid CHROME_TIMEOUT env variable")
		}
		cfg.ChromeTimeout = d
	}

	cfg.MailgunDomain = os.Getenv("MAILGUN_DOMAIN")
	cfg.MailgunAPIKey = os.Getenv("MAILGUN_API_KEY")
	cfg.MailgunFrom = os.Getenv("MAILGUN_FROM")
	if cfg.MailgunFrom == "" && cfg.MailgunDomain != "" {
		cfg.MailgunFrom = "Portal CIPA <cipa@" + cfg.MailgunDomain + ">"
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = envOr("GEMINI_MODEL", "gemini-2.5-flash")
	cfg.WatchCron = envOr("WATCH_CRON", "@every 1m")

	return cfg, nil
}

// MailEnabled reports whether Mailgun credentials are configured
func (c Config) MailEnabled() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
