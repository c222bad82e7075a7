package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"giftbot/pkg/telegram"
)

// DefaultJWTSecret допустим только в режиме отладки
const DefaultJWTSecret = "giftbot_secret_key"

// Config содержит все настройки приложения
type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"10000"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	// Debug включает отладочный режим gin и разрешает секрет JWT по умолчанию
	Debug bool `env:"DEBUG" envDefault:"false"`

	// Database
	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH" envDefault:"/tmp/giftbot.db"`
	DatabaseDSN string `env:"DATABASE_DSN"`

	// Telegram
	TelegramBotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookURL string `env:"TELEGRAM_WEBHOOK_URL"`
	BotUsername        string `env:"BOT_USERNAME"`
	AdminTelegramID    int64  `env:"ADMIN_TELEGRAM_ID" envDefault:"0"`

	// Регистрация и жеребьёвка
	AutoConfirm           bool          `env:"AUTO_CONFIRM" envDefault:"true"`
	CapacityCountsPending bool          `env:"CAPACITY_COUNTS_PENDING" envDefault:"false"`
	SessionTTL            time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	DrawMaxAttempts       int           `env:"DRAW_MAX_ATTEMPTS" envDefault:"100"`

	// Уведомления и отчёты
	ReportChunkSize   int    `env:"REPORT_CHUNK_SIZE" envDefault:"4000"`
	ReportPath        string `env:"REPORT_PATH" envDefault:"/tmp/giftbot-reports"`
	ReportMaxSize     int64  `env:"REPORT_MAX_SIZE" envDefault:"1048576"`
	NotifyConcurrency int    `env:"NOTIFY_CONCURRENCY" envDefault:"8"`

	// Фоновая очистка: просроченные анкеты, старые уведомления и отчёты
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	Retention     time.Duration `env:"RETENTION" envDefault:"720h"`

	// Security
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"giftbot_secret_key"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`

	// Telemetry: метрики уходят в OTLP коллектор, если он указан
	TelemetryEnabled     bool          `env:"OTEL_ENABLED" envDefault:"false"`
	TelemetryExporterURL string        `env:"OTEL_EXPORTER_URL"`
	TelemetryInterval    time.Duration `env:"OTEL_EXPORT_INTERVAL" envDefault:"30s"`
	ServiceVersion       string        `env:"SERVICE_VERSION" envDefault:"dev"`
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, от которых зависит корректность работы
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "mysql":
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for mysql driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ReportChunkSize <= 0 || c.ReportChunkSize > telegram.MaxMessageLength {
		return fmt.Errorf("REPORT_CHUNK_SIZE must be between 1 and %d", telegram.MaxMessageLength)
	}
	if c.NotifyConcurrency <= 0 {
		return errors.New("NOTIFY_CONCURRENCY must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	if c.JWTSecret == "" || (c.JWTSecret == DefaultJWTSecret && !c.Debug) {
		return errors.New("JWT_SECRET must be set outside debug mode")
	}
	if c.TelemetryEnabled && c.TelemetryInterval <= 0 {
		return errors.New("OTEL_EXPORT_INTERVAL must be positive")
	}
	return nil
}

// InviteBase возвращает адрес бота для ссылок-приглашений
func (c *Config) InviteBase() string {
	return "https://t.me/" + c.BotUsername
}
