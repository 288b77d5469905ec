package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	ProviderStripe    = "stripe"
	ProviderPaypal    = "paypal"
	ProviderBraintree = "braintree"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	Auth       Auth       `envPrefix:"JWT_"`
	Payment    Payment    `envPrefix:"PAYMENT_"`
	Stripe     Stripe     `envPrefix:"STRIPE_"`
	Paypal     Paypal     `envPrefix:"PAYPAL_"`
	BrainTree  Braintree  `envPrefix:"BRAINTREE_"`
	Cloudinary Cloudinary `envPrefix:"CLOUDINARY_"`
	Checkout   Checkout   `envPrefix:"CHECKOUT_"`
	Order      Order      `envPrefix:"ORDER_"`
	Kafka      Kafka      `envPrefix:"KAFKA_"`
	RateLimit  RateLimit
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	// Driver is one of sqlite, mysql, postgres.
	Driver          string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL             string        `env:"DATABASE_URL" envDefault:"marketplace.db"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"1h"`
	LogQueries      bool          `env:"DATABASE_LOG_QUERIES" envDefault:"false"`
}

// Auth holds the per-role token signing secrets.
type Auth struct {
	UserSecret  string        `env:"USER_PASSWORD,required"`
	AdminSecret string        `env:"ADMIN_PASSWORD,required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type Payment struct {
	Provider string        `env:"PROVIDER" envDefault:"stripe"`
	Currency string        `env:"CURRENCY" envDefault:"usd"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type Stripe struct {
	SecretKey string `env:"SECRET_KEY"`
	// APIURL overrides the Stripe API base, used against stripe-mock.
	APIURL string `env:"API_URL"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

type Cloudinary struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
	Folder    string `env:"FOLDER" envDefault:"courses"`
}

type Checkout struct {
	StaleAfter    time.Duration `env:"STALE_AFTER" envDefault:"30m"`
	SweepSchedule string        `env:"SWEEP_SCHEDULE" envDefault:"@every 5m"`
}

type Order struct {
	RequireAuth   bool          `env:"REQUIRE_AUTH" envDefault:"false"`
	RetryAttempts uint          `env:"RETRY_ATTEMPTS" envDefault:"1"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"50ms"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"marketplace.entitlements"`
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

type RateLimit struct {
	PerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"20"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	return LoadWithOptions(env.Options{})
}

// LoadWithOptions parses the environment described by opts and validates the
// settings of the selected payment provider.
func LoadWithOptions(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Payment.Provider {
	case ProviderStripe:
		if c.Stripe.SecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required for payment provider %q", c.Payment.Provider)
		}
	case ProviderPaypal:
		if c.Paypal.ClientID == "" || c.Paypal.ClientSecret == "" {
			return fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required for payment provider %q", c.Payment.Provider)
		}
	case ProviderBraintree:
		if c.BrainTree.MerchantID == "" || c.BrainTree.PublicKey == "" || c.BrainTree.PrivateKey == "" {
			return fmt.Errorf("BRAINTREE_MERCHANT_ID, BRAINTREE_PUBLIC_KEY and BRAINTREE_PRIVATE_KEY are required for payment provider %q", c.Payment.Provider)
		}
	default:
		return fmt.Errorf("unsupported payment provider %q", c.Payment.Provider)
	}

	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("PAYMENT_TIMEOUT must be positive")
	}

	return nil
}
