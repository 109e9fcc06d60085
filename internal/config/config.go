package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Remote assistant service
	APIBaseURL string
	APIToken   string
	APITimeout time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the optional ~/.shopchat.yaml overlay.
// Environment variables always win over file values.
type fileConfig struct {
	APIURL   string `yaml:"api_url"`
	Token    string `yaml:"token"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from ~/.shopchat.yaml (if present), a local .env
// file (if present) and environment variables, in increasing precedence.
// Defaults match the original front-end (local service on port 8000).
func Load() Config {
	godotenv.Load()

	fc := loadFile()

	return Config{
		APIBaseURL: getEnv("SHOPCHAT_API_URL", fallback(fc.APIURL, "http://localhost:8000")),
		APIToken:   getEnv("SHOPCHAT_TOKEN", fc.Token),
		APITimeout: parseDuration(os.Getenv("SHOPCHAT_API_TIMEOUT"), 60*time.Second),

		LogFile:  getEnv("SHOPCHAT_LOG_FILE", fallback(fc.LogFile, "/tmp/shopchat.log")),
		LogLevel: parseLogLevel(getEnv("SHOPCHAT_LOG_LEVEL", fallback(fc.LogLevel, "INFO"))),
	}
}

// loadFile reads ~/.shopchat.yaml. A missing or malformed file is not an
// error; the defaults cover everything.
func loadFile() fileConfig {
	var fc fileConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return fc
	}

	data, err := os.ReadFile(filepath.Join(home, ".shopchat.yaml"))
	if err != nil {
		return fc
	}

	_ = yaml.Unmarshal(data, &fc)
	return fc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func fallback(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
