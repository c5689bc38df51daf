package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTKey    string
	SaltRound int

	PaypalMode         string // sandbox or live
	PaypalClientID     string
	PaypalClientSecret string
	PaypalWebhookID    string
	PaypalApiURL       string // overrides the mode based URL when set
	FrontendURL        string // base of the gateway return and cancel URLs
	DefaultCurrency    string

	PendingPaymentTTL time.Duration
	PaymentSweepSpec  string
	FreePDFPages      int

	SendgridApiKey  string
	EmailSender     string
	EmailSenderName string

	RollbarToken string
	RateLimitMax int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "8000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lumos"),

		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		PaypalMode:         getEnv("PAYPAL_MODE", "sandbox"),
		PaypalClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		PaypalClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		PaypalWebhookID:    getEnv("PAYPAL_WEBHOOK_ID", ""),
		PaypalApiURL:       getEnv("PAYPAL_API_URL", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		DefaultCurrency:    getEnv("DEFAULT_CURRENCY", "USD"),

		PendingPaymentTTL: getEnvDuration("PENDING_PAYMENT_TTL", 24*time.Hour),
		PaymentSweepSpec:  getEnv("PAYMENT_SWEEP_SPEC", "@every 15m"),
		FreePDFPages:      getEnvInt("FREE_PDF_PAGES", 10),

		SendgridApiKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "noreply@lumoslearning.com"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Lumos Learning"),

		RollbarToken: getEnv("ROLLBAR_TOKEN", ""),
		RateLimitMax: getEnvInt("RATE_LIMIT_MAX", 30),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.PaypalClientID == "" || AppConfig.PaypalClientSecret == "" {
		log.Println("Warning: PayPal credentials are not set. Checkout will fail at the gateway.")
	}
}

// Default returns a configuration with every default applied and no environment lookups.
func Default() *Config {
	return &Config{
		Port:              "8000",
		AppEnv:            "test",
		DBDriver:          "sqlite",
		DBName:            "file::memory:?cache=shared",
		JWTKey:            "testSecret",
		SaltRound:         4,
		PaypalMode:        "sandbox",
		FrontendURL:       "http://localhost:3000",
		DefaultCurrency:   "USD",
		PendingPaymentTTL: 24 * time.Hour,
		PaymentSweepSpec:  "@every 15m",
		FreePDFPages:      10,
		EmailSender:       "noreply@lumoslearning.com",
		EmailSenderName:   "Lumos Learning",
		RateLimitMax:      1000,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
