package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`
	TrustedProxies    string `mapstructure:"TRUSTED_PROXIES"`

	// Upstream REST API.
	APIBaseURL      string        `mapstructure:"API_BASE_URL"`
	APITimeout      time.Duration `mapstructure:"API_TIMEOUT"`
	DefaultCurrency string        `mapstructure:"DEFAULT_CURRENCY"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisIntentDB int    `mapstructure:"REDIS_INTENT_DB"`

	// Booking flow.
	IntentTTL            time.Duration `mapstructure:"INTENT_TTL"`
	SuccessDisplayWindow time.Duration `mapstructure:"SUCCESS_DISPLAY_WINDOW"`
	FlowIdleTimeout      time.Duration `mapstructure:"FLOW_IDLE_TIMEOUT"`
	VisitorCookie        string        `mapstructure:"VISITOR_COOKIE"`
}

var AppConfig Config

func LoadConfig() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("API_BASE_URL", "http://localhost:4000/api")
	v.SetDefault("API_TIMEOUT", 10*time.Second)
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_INTENT_DB", 3)
	v.SetDefault("INTENT_TTL", 30*time.Minute)
	v.SetDefault("SUCCESS_DISPLAY_WINDOW", 10*time.Second)
	v.SetDefault("FLOW_IDLE_TIMEOUT", 30*time.Minute)
	v.SetDefault("VISITOR_COOKIE", "visitor_id")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
