package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the storefront reads at startup.
type Config struct {
	AppPort        string `mapstructure:"APP_PORT"`
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN    string `mapstructure:"DATABASE_DSN"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	RabbitMQURL    string `mapstructure:"RABBITMQ_URL"`
	OTLPEndpoint   string `mapstructure:"OTEL_EXPORTER_ENDPOINT"`
	SessionCookie  string `mapstructure:"SESSION_COOKIE"`

	Delivery DeliveryConfig `mapstructure:",squash"`
	Khalti   KhaltiConfig   `mapstructure:",squash"`
}

// DeliveryConfig carries the fee schedule used at checkout.
type DeliveryConfig struct {
	ExpressFee            float64 `mapstructure:"EXPRESS_DELIVERY_FEE"`
	StandardFee           float64 `mapstructure:"STANDARD_DELIVERY_FEE"`
	FreeShippingThreshold float64 `mapstructure:"FREE_SHIPPING_THRESHOLD"`
}

// KhaltiConfig carries the payment gateway credentials and endpoint.
type KhaltiConfig struct {
	BaseURL   string        `mapstructure:"KHALTI_BASE_URL"`
	SecretKey string        `mapstructure:"KHALTI_SECRET_KEY"`
	PublicKey string        `mapstructure:"KHALTI_PUBLIC_KEY"`
	Timeout   time.Duration `mapstructure:"KHALTI_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("JWT_SECRET", "change_me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("OTEL_EXPORTER_ENDPOINT", "")
	v.SetDefault("SESSION_COOKIE", "session_id")

	v.SetDefault("EXPRESS_DELIVERY_FEE", 200)
	v.SetDefault("STANDARD_DELIVERY_FEE", 100)
	v.SetDefault("FREE_SHIPPING_THRESHOLD", 1000)

	v.SetDefault("KHALTI_BASE_URL", "https://khalti.com/api/v2")
	v.SetDefault("KHALTI_SECRET_KEY", "")
	v.SetDefault("KHALTI_PUBLIC_KEY", "")
	v.SetDefault("KHALTI_TIMEOUT", "15s")
}

// Load reads an optional .env file, then environment variables, on top of the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	return &cfg, nil
}
