// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iyunix/go-courier/internal/services/sms"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	Environment  string
	LogLevel     string
	JWTSecretKey string

	DBDriver string
	DBDSN    string

	SMS sms.Config

	// Empty means the in-process lock and no event stream.
	RedisURL        string
	KafkaBrokers    []string
	KafkaAuditTopic string

	DispatchConcurrency  int
	AutoDispatchOnAccept bool
	// Validation submissions allowed per driver per minute.
	ValidateRateLimit  int
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without loading .env.
func FromEnv() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		Environment:  getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:        getEnv("DB_DSN", ""),
		SMS: sms.Config{
			Provider:   strings.ToLower(getEnv("SMS_PROVIDER", sms.ProviderConsole)),
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
			AccessKey:  getEnv("SMS_ACCESS_KEY", ""),
			// Template must declare #CustomerName#, #Code# and #Warning#.
			TemplateID: getEnvAsInt("SMS_TEMPLATE_ID", 0),
			APIURL:     smsAPIURL(),
			Timeout:    getEnvAsDuration("SMS_TIMEOUT", 10*time.Second),
			MaxRetries: getEnvAsInt("SMS_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("SMS_RETRY_DELAY", time.Second),
		},
		RedisURL:             getEnv("REDIS_URL", ""),
		KafkaBrokers:         getEnvAsList("KAFKA_BROKERS"),
		KafkaAuditTopic:      getEnv("KAFKA_AUDIT_TOPIC", "delivery-code-events"),
		DispatchConcurrency:  getEnvAsInt("DISPATCH_CONCURRENCY", 4),
		AutoDispatchOnAccept: getEnvAsBool("AUTO_DISPATCH_ON_ACCEPT", true),
		ValidateRateLimit:    getEnvAsInt("VALIDATE_RATE_LIMIT", 10),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// Validate checks the settings that would otherwise fail on first use.
// Production additionally refuses the console SMS provider.
func (c *Config) Validate() error {
	missing := []string{}
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DBDSN == "" {
			missing = append(missing, "DB_DSN")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}

	if isProduction(c.Environment) && c.SMS.Provider == sms.ProviderConsole {
		return fmt.Errorf("SMS_PROVIDER=console is not allowed in production")
	}
	if err := c.SMS.Validate(); err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool { return isProduction(c.Environment) }

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// smsAPIURL picks the base URL for whichever provider is configured.
func smsAPIURL() string {
	if v := getEnv("TWILIO_API_URL", ""); v != "" && strings.EqualFold(getEnv("SMS_PROVIDER", ""), sms.ProviderTwilio) {
		return v
	}
	return getEnv("SMS_API_URL", "")
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
