package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "solarshare/backend/libs/config"
)

// HTTPConfig configures the listener.
type HTTPConfig struct {
	Port            string        `yaml:"port" env:"WORKFLOW_HTTP_PORT"`
	CORSOrigins     []string      `yaml:"corsOrigins" env:"WORKFLOW_CORS_ORIGINS"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"WORKFLOW_HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"WORKFLOW_HTTP_SHUTDOWN_TIMEOUT"`
}

// AuthConfig configures login and tokens.
type AuthConfig struct {
	JWTSecret         string        `yaml:"jwtSecret" env:"WORKFLOW_JWT_SECRET"`
	JWTExpiresMinutes int           `yaml:"jwtExpiresMinutes" env:"WORKFLOW_JWT_EXPIRES_MINUTES"`
	DemoPassword      string        `yaml:"demoPassword" env:"WORKFLOW_DEMO_PASSWORD"`
	LoginDelay        time.Duration `yaml:"loginDelay" env:"WORKFLOW_LOGIN_DELAY"`
	BcryptCost        int           `yaml:"bcryptCost" env:"WORKFLOW_BCRYPT_COST"`
}

// DatabaseConfig enables the tariff table and transition journal when DSN is set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"WORKFLOW_POSTGRES_DSN"`
}

// RedisConfig enables the persisted actor slot when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"WORKFLOW_REDIS_ADDR"`
	Password string        `yaml:"password" env:"WORKFLOW_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"WORKFLOW_REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"WORKFLOW_REDIS_TTL"`
}

// KafkaConfig enables the broker-backed charging-request feed when Brokers is set.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"WORKFLOW_KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"WORKFLOW_KAFKA_TOPIC"`
	GroupID string   `yaml:"group" env:"WORKFLOW_KAFKA_GROUP"`
}

// ChargingConfig sets pricing and metering defaults.
type ChargingConfig struct {
	PricePerKWh    float64 `yaml:"pricePerKwh" env:"WORKFLOW_PRICE_PER_KWH"`
	ChargerPowerKW float64 `yaml:"chargerPowerKw" env:"WORKFLOW_CHARGER_POWER_KW"`
	SeedDemoData   bool    `yaml:"seedDemoData" env:"WORKFLOW_SEED_DEMO_DATA"`
}

// Config defines workflow service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Charging ChargingConfig `yaml:"charging"`
}

// Default returns the configuration before file and env overrides.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:            "8085",
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			JWTExpiresMinutes: 60,
			DemoPassword:      "demo123",
			LoginDelay:        500 * time.Millisecond,
		},
		Redis: RedisConfig{TTL: 24 * time.Hour},
		Kafka: KafkaConfig{Topic: "ev_charging_requests", GroupID: "workflow-service"},
		Charging: ChargingConfig{
			PricePerKWh:    12,
			ChargerPowerKW: 40,
			SeedDemoData:   true,
		},
	}
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: jwt secret required")
	}
	if c.Auth.DemoPassword == "" {
		return errors.New("config: demo password required")
	}
	if c.Auth.LoginDelay < 0 {
		return errors.New("config: login delay must not be negative")
	}
	if c.Charging.PricePerKWh <= 0 {
		return errors.New("config: price per kWh must be positive")
	}
	if c.Charging.ChargerPowerKW <= 0 {
		return errors.New("config: charger power must be positive")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// TokenTTL returns JWT lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.JWTExpiresMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Auth.JWTExpiresMinutes) * time.Minute
}
