package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Payment gateway configuration
	Gateway GatewayConfig

	// Booking engine configuration
	Booking BookingConfig

	// Public payment settings
	Settings SettingsConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// GatewayConfig holds payment gateway credentials and endpoints
type GatewayConfig struct {
	BaseURL       string // gateway REST endpoint
	KeyID         string // public key id, safe to hand to the checkout
	KeySecret     string // SECRET - never expose to client
	WebhookSecret string
	Currency      string
}

// BookingConfig holds the tunables of the pricing and wizard engine
type BookingConfig struct {
	BookingServiceURL string // booking/trip collaborator base URL
	CouponServiceURL  string // coupon collaborator base URL
	ReferralDiscount  float64
	MinPassengerAge   int
	DraftTTL          time.Duration
	AutosaveDelay     time.Duration
	PollInterval      time.Duration
}

// SettingsConfig holds the public payment settings snapshot
type SettingsConfig struct {
	PaymentMode     string // "manual" or "gateway"
	MerchantName    string
	UPIID           string
	QRImageURL      string
	MaintenanceMode bool
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		Gateway: GatewayConfig{
			BaseURL:       getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com"),
			KeyID:         getEnv("GATEWAY_KEY_ID", ""),
			KeySecret:     getEnv("GATEWAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("GATEWAY_WEBHOOK_SECRET", ""),
			Currency:      getEnv("GATEWAY_CURRENCY", "INR"),
		},
		Booking: BookingConfig{
			BookingServiceURL: getEnv("BOOKING_SERVICE_URL", ""),
			CouponServiceURL:  getEnv("COUPON_SERVICE_URL", ""),
			ReferralDiscount:  getEnvAsFloat("REFERRAL_DISCOUNT", 100),
			MinPassengerAge:   getEnvAsInt("MIN_PASSENGER_AGE", 15),
			DraftTTL:          time.Duration(getEnvAsInt("DRAFT_TTL_HOURS", 168)) * time.Hour,
			AutosaveDelay:     time.Duration(getEnvAsInt("AUTOSAVE_DELAY_MS", 1000)) * time.Millisecond,
			PollInterval:      time.Duration(getEnvAsInt("SEAT_POLL_INTERVAL_SECONDS", 30)) * time.Second,
		},
		Settings: SettingsConfig{
			PaymentMode:     getEnv("PAYMENT_MODE", "manual"),
			MerchantName:    getEnv("MERCHANT_NAME", "TripVeda"),
			UPIID:           getEnv("MERCHANT_UPI_ID", ""),
			QRImageURL:      getEnv("MERCHANT_QR_IMAGE_URL", ""),
			MaintenanceMode: getEnvAsBool("MAINTENANCE_MODE", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Booking.BookingServiceURL == "" {
		return fmt.Errorf("BOOKING_SERVICE_URL is required")
	}

	if c.Settings.PaymentMode != "manual" && c.Settings.PaymentMode != "gateway" {
		return fmt.Errorf("PAYMENT_MODE must be \"manual\" or \"gateway\"")
	}

	if c.Settings.PaymentMode == "gateway" {
		if c.Gateway.KeyID == "" || c.Gateway.KeySecret == "" {
			return fmt.Errorf("GATEWAY_KEY_ID and GATEWAY_KEY_SECRET are required in gateway mode")
		}
	}

	if c.Settings.PaymentMode == "manual" && c.Settings.UPIID == "" && c.Settings.QRImageURL == "" {
		return fmt.Errorf("MERCHANT_UPI_ID or MERCHANT_QR_IMAGE_URL is required in manual mode")
	}

	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s, using default %v", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default %v", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsSlice gets an environment variable as a comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
