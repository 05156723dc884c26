package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`
	JWTCookieName string        `mapstructure:"JWT_COOKIE_NAME"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Notification dispatch. Mode "direct" sends email inline, "queue"
	// publishes to the broker for the notify-worker to consume.
	NotifyMode         string   `mapstructure:"NOTIFY_MODE"`
	PublicBaseURL      string   `mapstructure:"PUBLIC_BASE_URL"`
	NotifyDistribution []string `mapstructure:"NOTIFY_DISTRIBUTION"`
	SMTPAddr           string   `mapstructure:"SMTP_ADDR"`
	SMTPFrom           string   `mapstructure:"SMTP_FROM"`

	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	NotifyTopic  string   `mapstructure:"NOTIFY_TOPIC"`
	NotifyGroup  string   `mapstructure:"NOTIFY_GROUP_ID"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("NOTIFY_MODE", "direct")
	v.SetDefault("SMTP_FROM", "no-reply@mail.garuda.com")
	v.SetDefault("NOTIFY_TOPIC", "email-notification")
	v.SetDefault("NOTIFY_GROUP_ID", "email-notification-worker")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_TTL")
	v.BindEnv("JWT_COOKIE_NAME")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("NOTIFY_MODE")
	v.BindEnv("PUBLIC_BASE_URL")
	v.BindEnv("NOTIFY_DISTRIBUTION")
	v.BindEnv("SMTP_ADDR")
	v.BindEnv("SMTP_FROM")
	v.BindEnv("KAFKA_BROKERS")
	v.BindEnv("NOTIFY_TOPIC")
	v.BindEnv("NOTIFY_GROUP_ID")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	}
	if cfg.NotifyDistribution == nil {
		cfg.NotifyDistribution = splitList(v.GetString("NOTIFY_DISTRIBUTION"))
	}
	if cfg.KafkaBrokers == nil {
		cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret must be set so that issued tokens cannot be forged, and queue
// mode requires broker addresses.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	switch c.NotifyMode {
	case "direct", "queue":
	default:
		return fmt.Errorf("NOTIFY_MODE must be \"direct\" or \"queue\", got %q", c.NotifyMode)
	}
	if c.NotifyMode == "queue" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when NOTIFY_MODE is \"queue\"")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}
