// Package config loads service configuration from the environment, with an
// optional .env file in the working directory.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	sqlitestore "niftysignal/internal/store/sqlite"
	"niftysignal/internal/strategy"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Engine   EngineConfig   `envPrefix:"ENGINE_"`
	Source   SourceConfig   `envPrefix:"SOURCE_"`
	SQLite   SQLiteConfig   `envPrefix:"SQLITE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
	Webhook  WebhookConfig  `envPrefix:"WEBHOOK_"`
	Schedule ScheduleConfig `envPrefix:"SCHEDULE_"`
}

// AppConfig covers process-level settings.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"signald"`
	Instrument  string `env:"INSTRUMENT" envDefault:"NIFTY"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Nifty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// EngineConfig mirrors strategy.Params.
type EngineConfig struct {
	KPeriod      int     `env:"K_PERIOD" envDefault:"14"`
	DPeriod      int     `env:"D_PERIOD" envDefault:"3"`
	BrickSize    float64 `env:"BRICK_SIZE" envDefault:"20"`
	StrikeOffset float64 `env:"STRIKE_OFFSET" envDefault:"300"`
	StrikeStep   float64 `env:"STRIKE_STEP" envDefault:"50"`
}

// SourceConfig selects where daily bars come from: "sqlite" or "csv".
type SourceConfig struct {
	Kind    string `env:"KIND" envDefault:"sqlite"`
	CSVPath string `env:"CSV_PATH" envDefault:"data/nifty.csv"`
}

// SQLiteConfig locates the bars and signal database. BarLimit is the
// trailing window every bar source is evaluated over; <= 0 means
// sqlitestore.DefaultBarLimit.
type SQLiteConfig struct {
	Path     string `env:"PATH" envDefault:"data/signals.db"`
	BarLimit int    `env:"BAR_LIMIT" envDefault:"63"`
}

// RedisConfig enables the Redis last-signal store when Enabled is set.
type RedisConfig struct {
	Enabled   bool   `env:"ENABLED" envDefault:"false"`
	Addr      string `env:"ADDR" envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"signal:last:"`
}

// TelegramConfig enables Telegram delivery when both fields are set.
// WebhookSecret, when set, must match the X-Telegram-Bot-Api-Secret-Token
// header on every webhook update.
type TelegramConfig struct {
	BotToken      string `env:"BOT_TOKEN"`
	ChatID        string `env:"CHAT_ID"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

// Enabled reports whether alerts can be sent.
func (t TelegramConfig) Enabled() bool { return t.BotToken != "" && t.ChatID != "" }

// WebhookConfig enables JSON webhook delivery when URL is set.
type WebhookConfig struct {
	URL string `env:"URL"`
}

// ScheduleConfig controls the daily evaluation.
type ScheduleConfig struct {
	Delay      time.Duration `env:"DELAY" envDefault:"15m"` // after the 15:30 IST close
	RunOnStart bool          `env:"RUN_ON_START" envDefault:"true"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the cross-field rules env tags cannot express.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Source.Kind {
	case "sqlite", "csv":
	default:
		return fmt.Errorf("config: unknown SOURCE_KIND %q", c.Source.Kind)
	}
	if c.App.Instrument == "" {
		return fmt.Errorf("config: APP_INSTRUMENT is empty")
	}
	c.SQLite.BarLimit = c.Window()
	return nil
}

// Window returns the trailing bar window shared by every bar source.
func (c *Config) Window() int {
	if c.SQLite.BarLimit <= 0 {
		return sqlitestore.DefaultBarLimit
	}
	return c.SQLite.BarLimit
}

// Params returns the engine parameters.
func (c *Config) Params() strategy.Params {
	return strategy.Params{
		KPeriod:      c.Engine.KPeriod,
		DPeriod:      c.Engine.DPeriod,
		BrickSize:    c.Engine.BrickSize,
		StrikeOffset: c.Engine.StrikeOffset,
		StrikeStep:   c.Engine.StrikeStep,
	}
}
