package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	DatabaseURL string   `env:"DATABASE_URL" envDefault:"sqlite://food.db"`
	UploadsDir  string   `env:"UPLOADS_DIR" envDefault:"./uploads"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174"`
	SeedCatalog bool     `env:"SEED_CATALOG" envDefault:"false"`

	JWT       JWT       `envPrefix:"JWT_"`
	PIN       PIN       `envPrefix:"PIN_"`
	Payment   Payment   `envPrefix:"PAYMENT_"`
	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
	Mail      Mail      `envPrefix:"MAIL_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

type JWT struct {
	Secret string        `env:"SECRET,required"`
	TTL    time.Duration `env:"TTL" envDefault:"168h"`
}

type PIN struct {
	VerifyTTL time.Duration `env:"VERIFY_TTL" envDefault:"10m"`
	ResetTTL  time.Duration `env:"RESET_TTL" envDefault:"10m"`
}

type Payment struct {
	Provider string `env:"PROVIDER" envDefault:"stripe"` // stripe, paypal
	Currency string `env:"CURRENCY" envDefault:"inr"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	// webhook route is only mounted when set
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

// Redis is optional; an empty Addr disables caching and idempotency keys.
type Redis struct {
	Addr           string        `env:"ADDR"`
	Password       string        `env:"PASSWORD"`
	DB             int           `env:"DB" envDefault:"0"`
	CatalogTTL     time.Duration `env:"CATALOG_TTL" envDefault:"10m"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

// Kafka is optional; no brokers means order events are dropped.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"order-topic"`
}

type Mail struct {
	Provider           string `env:"PROVIDER" envDefault:"log"` // log, ses
	Sender             string `env:"SENDER"`
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

type RateLimit struct {
	Rate  float64 `env:"RATE" envDefault:"1"`
	Burst int     `env:"BURST" envDefault:"5"`
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
	Port string `env:"HTTP_PORT" envDefault:"4000"`
}
