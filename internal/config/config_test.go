package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/liquidevz/rangaone/internal/poller"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "https://api.rangaone.example")
	t.Setenv("REFRESH_INTERVAL", "10s")
	t.Setenv("SEARCH_DEBOUNCE_MS", "150")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	cfg, err := Load(discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Address != "0.0.0.0:9090" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.APIBaseURL != "https://api.rangaone.example" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RefreshInterval != 10*time.Second {
		t.Errorf("RefreshInterval = %s", cfg.RefreshInterval)
	}
	if cfg.SearchDebounce != 150*time.Millisecond {
		t.Errorf("SearchDebounce = %s", cfg.SearchDebounce)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %s", cfg.CacheTTL)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	data := []byte("api_base_url: https://yaml.example\ndb_path: /data/admin.db\nrefresh_interval: 1m\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_PATH", "/override/admin.db")

	cfg, err := Load(discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIBaseURL != "https://yaml.example" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.DBPath != "/override/admin.db" {
		t.Errorf("env must override yaml, DBPath = %q", cfg.DBPath)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("RefreshInterval = %s", cfg.RefreshInterval)
	}
	if cfg.ParseLevel() != slog.LevelDebug {
		t.Errorf("ParseLevel = %s", cfg.ParseLevel())
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_USERNAME=root\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ADMIN_USERNAME") })

	cfg, err := Load(discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminUsername != "root" {
		t.Errorf("AdminUsername = %q", cfg.AdminUsername)
	}
}

func TestLoad_RejectsBadInterval(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REFRESH_INTERVAL", "7s")

	if _, err := Load(discard); !errors.Is(err, poller.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad url", func(c *Config) { c.APIBaseURL = "ftp://x" }, false},
		{"relative url", func(c *Config) { c.APIBaseURL = "/api" }, false},
		{"bad interval", func(c *Config) { c.RefreshInterval = 3 * time.Second }, false},
		{"telegram without chat", func(c *Config) { c.TelegramToken = "t" }, false},
		{"telegram with chat", func(c *Config) { c.TelegramToken = "t"; c.TelegramChatID = 42 }, true},
		{"zero debounce", func(c *Config) { c.SearchDebounce = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
