/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the funding-ledger service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	FundingEventExchange string `mapstructure:"FUNDING_EVENT_EXCHANGE"`

	GatewayAPIBaseURL    string `mapstructure:"GATEWAY_API_BASE_URL"`
	GatewayAPIKey        string `mapstructure:"GATEWAY_API_KEY"`
	GatewayWebhookSecret string `mapstructure:"GATEWAY_WEBHOOK_SECRET"`

	IdentityJWKSURL  string `mapstructure:"IDENTITY_JWKS_URL"`
	IdentityIssuer   string `mapstructure:"IDENTITY_ISSUER"`
	IdentityAudience string `mapstructure:"IDENTITY_AUDIENCE"`

	CheckoutSuccessURL string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string `mapstructure:"CHECKOUT_CANCEL_URL"`
	Currency           string `mapstructure:"CURRENCY"`

	// Overfunding is allowed by default: a project may raise past its goal.
	// Turning this off marks a project completed once the goal is reached but
	// never rejects a confirmed payment.
	AllowOverfunding bool `mapstructure:"ALLOW_OVERFUNDING"`

	InvestRateLimitPerMinute int    `mapstructure:"INVEST_RATE_LIMIT_PER_MINUTE"`
	ReconcileSchedule        string `mapstructure:"RECONCILE_SCHEDULE"`
	ReconcileLookbackHours   int    `mapstructure:"RECONCILE_LOOKBACK_HOURS"`
	CORSAllowedOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("FUNDING_EVENT_EXCHANGE", "startupconnect.events")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "startupconnect:rate_limit")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("ALLOW_OVERFUNDING", true)
	viper.SetDefault("INVEST_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("RECONCILE_SCHEDULE", "*/10 * * * *")
	viper.SetDefault("RECONCILE_LOOKBACK_HOURS", 24)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("FUNDING_EVENT_EXCHANGE")
	_ = viper.BindEnv("GATEWAY_API_BASE_URL")
	_ = viper.BindEnv("GATEWAY_API_KEY")
	_ = viper.BindEnv("GATEWAY_WEBHOOK_SECRET")
	_ = viper.BindEnv("IDENTITY_JWKS_URL")
	_ = viper.BindEnv("IDENTITY_ISSUER")
	_ = viper.BindEnv("IDENTITY_AUDIENCE")
	_ = viper.BindEnv("CHECKOUT_SUCCESS_URL")
	_ = viper.BindEnv("CHECKOUT_CANCEL_URL")
	_ = viper.BindEnv("CURRENCY")
	_ = viper.BindEnv("ALLOW_OVERFUNDING")
	_ = viper.BindEnv("INVEST_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("RECONCILE_SCHEDULE")
	_ = viper.BindEnv("RECONCILE_LOOKBACK_HOURS")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "startupconnect:rate_limit"
	}
	if strings.TrimSpace(config.Currency) == "" {
		config.Currency = "usd"
	}

	if config.InvestRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative invest rate limit configured; coercing to zero\" limit=%d", config.InvestRateLimitPerMinute)
		config.InvestRateLimitPerMinute = 0
	}
	if config.ReconcileLookbackHours <= 0 {
		config.ReconcileLookbackHours = 24
	}
	if strings.TrimSpace(config.ReconcileSchedule) == "" {
		config.ReconcileSchedule = "*/10 * * * *"
	}

	return
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (c Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		return []string{"*"}
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
