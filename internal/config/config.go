// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Auth      AuthConfig
	Editorial EditorialConfig
	Publish   PublishConfig
	WordPress WordPressConfig
	Mail      MailConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // auto, pretty, json
}

// StorageConfig holds on-disk locations. Everything lives under DataPath.
type StorageConfig struct {
	DataPath string
}

// DatabasePath is the SQLite file holding songs, reviews, writers and posts.
func (s StorageConfig) DatabasePath() string { return filepath.Join(s.DataPath, "jukebox.db") }

// SessionPath is the Badger directory holding login sessions.
func (s StorageConfig) SessionPath() string { return filepath.Join(s.DataPath, "sessions") }

// SearchPath is the bleve index directory.
func (s StorageConfig) SearchPath() string { return filepath.Join(s.DataPath, "search") }

// MediaPath is where uploaded mp3 files are kept.
func (s StorageConfig) MediaPath() string { return filepath.Join(s.DataPath, "media") }

// LockPath is the single-instance lock file.
func (s StorageConfig) LockPath() string { return filepath.Join(s.DataPath, "jukebox.lock") }

// KeyPath is the PASETO key file.
func (s StorageConfig) KeyPath() string { return filepath.Join(s.DataPath, "auth.key") }

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	CORSOrigins  []string      // Allowed origins (default: *)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// TokenKey is a hex PASETO v4 key. Empty means use the key file.
	TokenKey             string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// EditorialConfig holds the knobs of the review workflow.
type EditorialConfig struct {
	// ReorderIncludePublished lets published reviews take part in move operations.
	// Off by default: only saved reviews are moved.
	ReorderIncludePublished bool
	// PublicPageSize is the number of posts per public listing page.
	PublicPageSize int
}

// PublishConfig holds the scheduled publishing configuration.
type PublishConfig struct {
	Schedule string // cron spec for the due-song sweep
	Timezone string
}

// WordPressConfig holds the optional XML-RPC push target.
type WordPressConfig struct {
	Endpoint string
	BlogID   string
	Username string
	Password string
}

// Enabled reports whether posts should be pushed to WordPress.
func (w WordPressConfig) Enabled() bool { return w.Endpoint != "" }

// MailConfig holds SMTP settings for editor notifications.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Admins   []string
}

// Enabled reports whether notifications are sent over SMTP rather than logged.
func (m MailConfig) Enabled() bool { return m.Host != "" && len(m.Admins) > 0 }

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return loadFrom(flag.CommandLine, os.Args[1:])
}

// Load is LoadConfig with explicit arguments, for tools that own the
// process command line.
func Load(args []string) (*Config, error) {
	return loadFrom(flag.NewFlagSet("jukebox", flag.ContinueOnError), args)
}

func loadFrom(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (auto, pretty, json)")
	dataPath := fs.String("data-path", "", "Directory for the database, sessions, search index and media")
	serverName := fs.String("server-name", "", "Name for the server")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := fs.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins (default: *)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	reorderIncludePublished := fs.String("reorder-include-published", "", "Let published reviews take part in move operations (default: false)")
	pageSize := fs.String("public-page-size", "", "Posts per public page (default: 5)")
	publishSchedule := fs.String("publish-schedule", "", "Cron spec for publishing due songs (default: */5 * * * *)")
	timezone := fs.String("timezone", "", "Timezone for scheduled publishing (default: UTC)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", "auto"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name:        getConfigValue(*serverName, "SERVER_NAME", "Jukebox"),
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Editorial: EditorialConfig{
			ReorderIncludePublished: getBoolConfigValue(*reorderIncludePublished, "REORDER_INCLUDE_PUBLISHED", false),
			PublicPageSize:          getIntConfigValue(*pageSize, "PUBLIC_PAGE_SIZE", 5),
		},
		Publish: PublishConfig{
			Schedule: getConfigValue(*publishSchedule, "PUBLISH_SCHEDULE", "*/5 * * * *"),
			Timezone: getConfigValue(*timezone, "TIMEZONE", "UTC"),
		},
		WordPress: WordPressConfig{
			Endpoint: getConfigValue("", "WORDPRESS_ENDPOINT", ""),
			BlogID:   getConfigValue("", "WORDPRESS_BLOG_ID", "1"),
			Username: getConfigValue("", "WORDPRESS_USERNAME", ""),
			Password: getConfigValue("", "WORDPRESS_PASSWORD", ""),
		},
		Auth: AuthConfig{
			TokenKey: getConfigValue("", "AUTH_TOKEN_KEY", ""),
		},
		Mail: MailConfig{
			Host:     getConfigValue("", "SMTP_HOST", ""),
			Port:     getIntConfigValue("", "SMTP_PORT", 587),
			Username: getConfigValue("", "SMTP_USERNAME", ""),
			Password: getConfigValue("", "SMTP_PASSWORD", ""),
			From:     getConfigValue("", "MAIL_FROM", "jukebox@localhost"),
			Admins:   splitList(getConfigValue("", "MAIL_ADMINS", "")),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		dest                   *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", &cfg.Auth.AccessTokenDuration},
		{*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h", &cfg.Auth.RefreshTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "auto", "pretty", "json", "":
	default:
		return fmt.Errorf("invalid log format: %s (must be auto, pretty, or json)", c.Logger.Format)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}

	if c.Editorial.PublicPageSize < 1 {
		return fmt.Errorf("public page size must be positive, got %d", c.Editorial.PublicPageSize)
	}

	if _, err := cron.ParseStandard(c.Publish.Schedule); err != nil {
		return fmt.Errorf("invalid publish schedule %q: %w", c.Publish.Schedule, err)
	}

	if _, err := time.LoadLocation(c.Publish.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Publish.Timezone, err)
	}

	if c.WordPress.Enabled() && c.WordPress.Username == "" {
		return errors.New("WORDPRESS_USERNAME is required when WORDPRESS_ENDPOINT is set")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data directory to ~/Jukebox.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "Jukebox"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
