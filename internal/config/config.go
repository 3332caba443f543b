package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/liquidevz/rangaone/internal/poller"
)

// Config содержит конфигурацию приложения
type Config struct {
	Address   string `yaml:"address"`
	JWTSecret string `yaml:"jwt_secret"`
	DBPath    string `yaml:"db_path"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`
	WebDir    string `yaml:"web_dir"`

	// Удаленный backend платформы
	APIBaseURL string `yaml:"api_base_url"`
	APIToken   string `yaml:"api_token"`

	SearchDebounce  time.Duration `yaml:"search_debounce"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`

	// Уведомления в Telegram (опционально)
	TelegramToken  string `yaml:"telegram_bot_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	// Администратор, создаваемый при первом запуске
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

const defaultJWTSecret = "default-secret-change-me-in-production"

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Address:         "0.0.0.0:8080",
		JWTSecret:       defaultJWTSecret,
		DBPath:          "./rangaone.db",
		LogFile:         "admin-web.log",
		LogLevel:        "info",
		WebDir:          "./web",
		APIBaseURL:      "http://localhost:5000",
		SearchDebounce:  300 * time.Millisecond,
		RefreshInterval: poller.DefaultInterval,
		CacheTTL:        5 * time.Minute,
		AdminUsername:   "admin",
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML из CONFIG_FILE,
// затем переменные окружения (.env подхватывается, если есть).
func Load(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}

		logger.Info("📄 Config file loaded", slog.String("path", path))
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == defaultJWTSecret {
		logger.Warn("⚠️  JWT_SECRET not set, using default (insecure!)")
	}
	if cfg.TelegramToken == "" {
		logger.Info("📭 Telegram notifications disabled")
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Address = "0.0.0.0:" + port
	}

	setString("JWT_SECRET", &c.JWTSecret)
	setString("DB_PATH", &c.DBPath)
	setString("LOG_FILE", &c.LogFile)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("WEB_DIR", &c.WebDir)
	setString("API_BASE_URL", &c.APIBaseURL)
	setString("API_TOKEN", &c.APIToken)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramToken)
	setString("ADMIN_USERNAME", &c.AdminUsername)
	setString("ADMIN_PASSWORD", &c.AdminPassword)

	if v := os.Getenv("SEARCH_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SEARCH_DEBOUNCE_MS %q: %w", v, err)
		}
		c.SearchDebounce = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := poller.ParseInterval(v)
		if err != nil {
			return fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		c.RefreshInterval = d
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		c.CacheTTL = d
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		c.TelegramChatID = id
	}

	return nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid API_BASE_URL %q", c.APIBaseURL))
	}

	if err := poller.ValidateInterval(c.RefreshInterval); err != nil {
		errs = append(errs, err)
	}

	if c.SearchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("search debounce must be positive, got %s", c.SearchDebounce))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL))
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}

	return errors.Join(errs...)
}

// ParseLevel переводит LOG_LEVEL в slog.Level
func (c *Config) ParseLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}
