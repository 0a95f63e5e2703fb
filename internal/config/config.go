// Package config loads service settings from the environment and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/auth"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/spf13/viper"
)

type Config struct {
	Service   Service   `mapstructure:"service"`
	Log       Log       `mapstructure:"log"`
	Database  Database  `mapstructure:"database"`
	Redis     Redis     `mapstructure:"redis"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
	Payment   Payment   `mapstructure:"payment"`
	Notify    Notify    `mapstructure:"notify"`
	Auth      Auth      `mapstructure:"auth"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	AMQP      AMQP      `mapstructure:"amqp"`
	Uploads   Uploads   `mapstructure:"uploads"`
}

type Service struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	Timezone        string        `mapstructure:"timezone"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Database struct {
	// URL is a postgres DSN or "sqlite:<path>". Empty keeps everything in memory.
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimit struct {
	Window time.Duration `mapstructure:"window"`
	Max    int           `mapstructure:"max"`
}

type Payment struct {
	ClickServiceID  string        `mapstructure:"click_service_id"`
	ClickMerchantID string        `mapstructure:"click_merchant_id"`
	PaymeMerchantID string        `mapstructure:"payme_merchant_id"`
	UzumMerchantID  string        `mapstructure:"uzum_merchant_id"`
	PaynetServiceID string        `mapstructure:"paynet_service_id"`
	TTL             time.Duration `mapstructure:"ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

func (p Payment) Merchants() payment.Merchants {
	return payment.Merchants{
		ClickServiceID:  p.ClickServiceID,
		ClickMerchantID: p.ClickMerchantID,
		PaymeMerchantID: p.PaymeMerchantID,
		UzumMerchantID:  p.UzumMerchantID,
		PaynetServiceID: p.PaynetServiceID,
	}
}

type Notify struct {
	WebhookURL       string        `mapstructure:"webhook_url"`
	WebhookAPIKey    string        `mapstructure:"webhook_api_key"`
	WebhookTimeout   time.Duration `mapstructure:"webhook_timeout"`
	TelegramBotToken string        `mapstructure:"telegram_bot_token"`
	TelegramRate     float64       `mapstructure:"telegram_rate"`
	// BotPolling runs the registration bot in this process.
	BotPolling       bool          `mapstructure:"bot_polling"`
}

type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// Staff is "username:role:bcrypt-hash[:display name]" entries separated by commas.
	Staff string `mapstructure:"staff"`
}

type Telemetry struct {
	SentryDSN    string  `mapstructure:"sentry_dsn"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type AMQP struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type Uploads struct {
	Dir       string `mapstructure:"dir"`
	PublicURL string `mapstructure:"public_url"`
	MaxWidth  uint   `mapstructure:"max_width"`
}

// env lists the environment variables each key reads, first match wins.
var env = map[string][]string{
	"service.name":              {"SERVICE_NAME"},
	"service.env":               {"ENV", "APP_ENV"},
	"service.http_addr":         {"HTTP_ADDR"},
	"service.public_base_url":   {"PUBLIC_BASE_URL", "WEBSITE_URL"},
	"service.timezone":          {"TIMEZONE"},
	"service.shutdown_timeout":  {"SHUTDOWN_TIMEOUT"},
	"log.level":                 {"LOG_LEVEL"},
	"log.file":                  {"LOG_FILE"},
	"database.url":              {"DATABASE_URL"},
	"database.max_open_conns":   {"DATABASE_MAX_OPEN_CONNS"},
	"database.max_idle_conns":   {"DATABASE_MAX_IDLE_CONNS"},
	"redis.addr":                {"REDIS_ADDR"},
	"redis.password":            {"REDIS_PASSWORD"},
	"redis.db":                  {"REDIS_DB"},
	"ratelimit.window":          {"RATE_LIMIT_WINDOW"},
	"ratelimit.max":             {"RATE_LIMIT_MAX"},
	"payment.click_service_id":  {"CLICK_SERVICE_ID", "VITE_CLICK_SERVICE_ID"},
	"payment.click_merchant_id": {"CLICK_MERCHANT_ID", "VITE_CLICK_MERCHANT_ID"},
	"payment.payme_merchant_id": {"PAYME_MERCHANT_ID", "VITE_PAYME_MERCHANT_ID"},
	"payment.uzum_merchant_id":  {"UZUM_MERCHANT_ID", "VITE_UZUM_MERCHANT_ID"},
	"payment.paynet_service_id": {"PAYNET_SERVICE_ID", "VITE_PAYNET_SERVICE_ID"},
	"payment.ttl":               {"PAYMENT_TTL"},
	"payment.sweep_interval":    {"PAYMENT_SWEEP_INTERVAL"},
	"notify.webhook_url":        {"WEBHOOK_URL", "VITE_TELEGRAM_WEBHOOK_URL"},
	"notify.webhook_api_key":    {"WEBHOOK_API_KEY", "API_SECRET_KEY"},
	"notify.webhook_timeout":    {"WEBHOOK_TIMEOUT"},
	"notify.telegram_bot_token": {"TELEGRAM_BOT_TOKEN", "BOT_TOKEN"},
	"notify.telegram_rate":      {"TELEGRAM_RATE"},
	"notify.bot_polling":        {"TELEGRAM_BOT_POLLING"},
	"auth.jwt_secret":           {"JWT_SECRET"},
	"auth.token_ttl":            {"JWT_TTL"},
	"auth.staff":                {"STAFF_ACCOUNTS"},
	"telemetry.sentry_dsn":      {"SENTRY_DSN"},
	"telemetry.otlp_endpoint":   {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"telemetry.otlp_insecure":   {"OTEL_EXPORTER_OTLP_INSECURE"},
	"telemetry.sample_ratio":    {"OTEL_TRACES_SAMPLER_ARG"},
	"amqp.url":                  {"AMQP_URL"},
	"amqp.exchange":             {"AMQP_EXCHANGE"},
	"uploads.dir":               {"UPLOADS_DIR"},
	"uploads.public_url":        {"UPLOADS_PUBLIC_URL"},
	"uploads.max_width":         {"UPLOADS_MAX_WIDTH"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "ajabo")
	v.SetDefault("service.env", "dev")
	v.SetDefault("service.http_addr", ":8080")
	v.SetDefault("service.public_base_url", "http://localhost:8080")
	v.SetDefault("service.timezone", "Asia/Tashkent")
	v.SetDefault("service.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("ratelimit.window", 60*time.Second)
	v.SetDefault("ratelimit.max", 3)
	v.SetDefault("payment.ttl", 30*time.Minute)
	v.SetDefault("payment.sweep_interval", time.Minute)
	v.SetDefault("notify.webhook_timeout", 5*time.Second)
	v.SetDefault("notify.telegram_rate", 25)
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("amqp.exchange", "ajabo.orders")
	v.SetDefault("uploads.dir", "data/uploads")
	v.SetDefault("uploads.public_url", "/uploads")
	v.SetDefault("uploads.max_width", 800)
}

// Load reads defaults, then the optional file at path, then the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, names := range env {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Service.HTTPAddr == "" {
		errs = append(errs, errors.New("service.http_addr is required"))
	}
	if _, err := time.LoadLocation(c.Service.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("service.timezone: %w", err))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("ratelimit window and max must be positive"))
	}
	if c.Payment.TTL <= 0 {
		errs = append(errs, errors.New("payment.ttl must be positive"))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, errors.New("telemetry.sample_ratio must be within [0,1]"))
	}
	if _, err := c.Auth.Accounts(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.Staff != "" && len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 16 bytes when staff accounts are set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Service.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Accounts parses the staff list.
func (a Auth) Accounts() ([]auth.Account, error) {
	var out []auth.Account
	for _, entry := range strings.Split(a.Staff, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 4)
		if len(parts) < 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("auth.staff: malformed entry %q", entry)
		}
		role := auth.Role(parts[1])
		if role != auth.RoleAdmin && role != auth.RoleDelivery {
			return nil, fmt.Errorf("auth.staff: unknown role %q for %s", parts[1], parts[0])
		}
		acc := auth.Account{Username: parts[0], Role: role, PasswordHash: parts[2], DisplayName: parts[0]}
		if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
			acc.DisplayName = strings.TrimSpace(parts[3])
		}
		out = append(out, acc)
	}
	return out, nil
}
