package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ParseErrorSkip = "skip"
	ParseErrorFail = "fail"

	ContentFormatHTML     = "html"
	ContentFormatMarkdown = "markdown"
)

type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string // "text" or "json"

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Repository layout
	RouteBasepath   string
	ContentBasepath string
	MenuBasepath    string // Created with the other roots, not populated by fixtures

	// Locales
	DefaultLocale    string
	AvailableLocales []string

	// Fixtures
	FixturesSource     string // Local directory or s3://bucket
	FixturesFile       string
	FixturesParseError string // "skip" or "fail"
	ContentFormat      string // "html" or "markdown"

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible, only used for s3:// fixture sources)
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppEnv:    envString("APP_ENV", "development"),
		LogLevel:  envString("LOG_LEVEL", ""),
		LogFormat: envString("LOG_FORMAT", ""),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/cms.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Repository layout
		RouteBasepath:   envString("ROUTE_BASEPATH", "/cms/routes"),
		ContentBasepath: envString("CONTENT_BASEPATH", "/cms/content"),
		MenuBasepath:    envString("MENU_BASEPATH", "/cms/menu"),

		// Locales
		DefaultLocale:    envString("DEFAULT_LOCALE", ""), // empty: first available locale, then en
		AvailableLocales: envList("AVAILABLE_LOCALES"),

		// Fixtures
		FixturesSource:     envString("FIXTURES_SOURCE", "data"),
		FixturesFile:       envString("FIXTURES_FILE", "01-basic.yml"),
		FixturesParseError: envChoice("FIXTURES_PARSE_ERROR", ParseErrorSkip, ParseErrorSkip, ParseErrorFail),
		ContentFormat:      envChoice("CONTENT_FORMAT", ContentFormatHTML, ContentFormatHTML, ContentFormatMarkdown),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:    envString("S3_REGION", "us-east-1"),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

// envList splits a comma separated value, dropping empty entries.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envChoice(key, def string, allowed ...string) string {
	v := strings.ToLower(envString(key, def))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	slog.Warn("config invalid choice, using default", "key", key, "value", v, "allowed", allowed, "default", def)
	return def
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// FailOnParseError reports whether a malformed fixture file fails the load
// instead of being treated as empty.
func (c *Config) FailOnParseError() bool {
	return c.FixturesParseError == ParseErrorFail
}

// RendersMarkdown reports whether page bodies are markdown that should also be
// stored as rendered HTML.
func (c *Config) RendersMarkdown() bool {
	return c.ContentFormat == ContentFormatMarkdown
}

// FixturesFromS3 reports whether fixtures are read from an S3 bucket.
func (c *Config) FixturesFromS3() bool {
	return strings.HasPrefix(c.FixturesSource, "s3://")
}

// FixturesBucket returns the bucket name of an s3:// fixture source.
func (c *Config) FixturesBucket() string {
	return strings.TrimSuffix(strings.TrimPrefix(c.FixturesSource, "s3://"), "/")
}
