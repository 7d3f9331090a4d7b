package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"storefront-backend/providers"
)

// Config holds all configuration for the storefront backend.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string
	RedisAddr string

	CashfreeAppID     string
	CashfreeSecretKey string
	CashfreeEnv       string
	CashfreeReturnURL string
	CashfreeNotifyURL string

	ShipwayBaseURL    string
	ShipwayUsername   string
	ShipwayPassword   string
	ShipwayLicenseKey string
	// Default parcel attributes; weight in kg, dimensions in cm.
	ShipwayWeight  string
	ShipwayLength  string
	ShipwayBreadth string
	ShipwayHeight  string

	AutoCreateShipment    bool
	DefaultShippingCharge float64
	RateLimitRPS          float64
	RateLimitBurst        int
}

// ShipwayConfig builds the provider config from the loaded values.
func (c *Config) ShipwayConfig() providers.ShipwayConfig {
	return providers.ShipwayConfig{
		BaseURL:        c.ShipwayBaseURL,
		Username:       c.ShipwayUsername,
		Password:       c.ShipwayPassword,
		LicenseKey:     c.ShipwayLicenseKey,
		DefaultWeight:  c.ShipwayWeight,
		DefaultLength:  c.ShipwayLength,
		DefaultBreadth: c.ShipwayBreadth,
		DefaultHeight:  c.ShipwayHeight,
	}
}

// LoadConfig reads configuration from the environment, with an optional .env
// file for local development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "storefront"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		RedisAddr: os.Getenv("REDIS_ADDR"),

		CashfreeAppID:     os.Getenv("CASHFREE_APP_ID"),
		CashfreeSecretKey: os.Getenv("CASHFREE_SECRET_KEY"),
		CashfreeEnv:       getEnv("CASHFREE_ENV", "sandbox"),
		CashfreeReturnURL: os.Getenv("CASHFREE_RETURN_URL"),
		CashfreeNotifyURL: os.Getenv("CASHFREE_NOTIFY_URL"),

		ShipwayBaseURL:    getEnv("SHIPWAY_BASE_URL", "https://app.shipway.in/api"),
		ShipwayUsername:   os.Getenv("SHIPWAY_USERNAME"),
		ShipwayPassword:   os.Getenv("SHIPWAY_PASSWORD"),
		ShipwayLicenseKey: os.Getenv("SHIPWAY_LICENSE_KEY"),
		ShipwayWeight:     getEnv("SHIPWAY_DEFAULT_WEIGHT", "0.5"),
		ShipwayLength:     getEnv("SHIPWAY_DEFAULT_LENGTH", "10"),
		ShipwayBreadth:    getEnv("SHIPWAY_DEFAULT_BREADTH", "10"),
		ShipwayHeight:     getEnv("SHIPWAY_DEFAULT_HEIGHT", "10"),

		AutoCreateShipment:    getEnv("AUTO_CREATE_SHIPMENT", "false") == "true",
		DefaultShippingCharge: getEnvFloat("DEFAULT_SHIPPING_CHARGE", 50),
		RateLimitRPS:          getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:        getEnvInt("RATE_LIMIT_BURST", 40),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
