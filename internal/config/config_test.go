package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolateHome points HOME at an empty directory so a developer's real
// ~/.shopchat.yaml cannot leak into the test.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SHOPCHAT_API_URL",
		"SHOPCHAT_TOKEN",
		"SHOPCHAT_API_TIMEOUT",
		"SHOPCHAT_LOG_FILE",
		"SHOPCHAT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateHome(t)
	clearEnv(t)

	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APIToken != "" {
		t.Errorf("APIToken = %q, want empty", cfg.APIToken)
	}
	if cfg.APITimeout != 60*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.LogFile != "/tmp/shopchat.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateHome(t)
	clearEnv(t)
	t.Setenv("SHOPCHAT_API_URL", "https://assistant.example.com")
	t.Setenv("SHOPCHAT_TOKEN", "tok123")
	t.Setenv("SHOPCHAT_API_TIMEOUT", "90s")
	t.Setenv("SHOPCHAT_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.APIBaseURL != "https://assistant.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APIToken != "tok123" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.APITimeout != 90*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoad_FileOverlay(t *testing.T) {
	home := isolateHome(t)
	clearEnv(t)

	yaml := "api_url: https://file.example.com\ntoken: filetok\nlog_level: error\n"
	if err := os.WriteFile(filepath.Join(home, ".shopchat.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load()

	if cfg.APIBaseURL != "https://file.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APIToken != "filetok" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.LogLevel != slog.LevelError {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	home := isolateHome(t)
	clearEnv(t)

	yaml := "api_url: https://file.example.com\n"
	if err := os.WriteFile(filepath.Join(home, ".shopchat.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHOPCHAT_API_URL", "https://env.example.com")

	cfg := Load()

	if cfg.APIBaseURL != "https://env.example.com" {
		t.Errorf("APIBaseURL = %q, want env value to win", cfg.APIBaseURL)
	}
}

func TestLoad_MalformedFileFallsBackToDefaults(t *testing.T) {
	home := isolateHome(t)
	clearEnv(t)

	if err := os.WriteFile(filepath.Join(home, ".shopchat.yaml"), []byte("{{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 60 * time.Second},
		{"90s", 90 * time.Second},
		{"2m", 2 * time.Minute},
		{"garbage", 60 * time.Second},
	}

	for _, tt := range tests {
		if got := parseDuration(tt.in, 60*time.Second); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
