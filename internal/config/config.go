package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Commerce   CommerceConfig
	CartCookie CartCookieConfig
	Storefront StorefrontConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// DSN returns the connection string for the pgx stdlib driver
func (c DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Database +
		"?sslmode=disable&search_path=" + c.Schema
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port of the Redis server
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// CommerceConfig points at the commerce platform's storefront API
type CommerceConfig struct {
	StoreDomain     string
	StorefrontToken string
	APIVersion      string
	Timeout         time.Duration
}

type CartCookieConfig struct {
	Name   string
	Secret string
	Secure bool
}

type StorefrontConfig struct {
	PlaceholderImage string
	ThumbnailOption  string
	AllowedOrigins   []string
	PostsToShow      int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// ErrMissingCartCookieSecret is returned when production runs without a
// signing secret for the cart cookie
var ErrMissingCartCookieSecret = errors.New("CART_COOKIE_SECRET must be set in production")

// Validate checks settings the server cannot run without
func (c *Config) Validate() error {
	if c.Server.Env == "production" && strings.TrimSpace(c.CartCookie.Secret) == "" {
		return ErrMissingCartCookieSecret
	}
	return nil
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("COMMERCE_API_VERSION", "2024-04")
	viper.SetDefault("COMMERCE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CART_COOKIE_NAME", "storefront_cart")
	viper.SetDefault("CART_COOKIE_SECURE", false)
	viper.SetDefault("STOREFRONT_PLACEHOLDER_IMAGE", "/static/placeholder.svg")
	viper.SetDefault("STOREFRONT_THUMBNAIL_OPTION", "extras")
	viper.SetDefault("STOREFRONT_ALLOWED_ORIGINS", "")
	viper.SetDefault("STOREFRONT_POSTS_TO_SHOW", 6)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 30)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Commerce: CommerceConfig{
			StoreDomain:     viper.GetString("COMMERCE_STORE_DOMAIN"),
			StorefrontToken: viper.GetString("COMMERCE_STOREFRONT_TOKEN"),
			APIVersion:      viper.GetString("COMMERCE_API_VERSION"),
			Timeout:         time.Duration(viper.GetInt("COMMERCE_TIMEOUT_SECONDS")) * time.Second,
		},
		CartCookie: CartCookieConfig{
			Name:   viper.GetString("CART_COOKIE_NAME"),
			Secret: viper.GetString("CART_COOKIE_SECRET"),
			Secure: viper.GetBool("CART_COOKIE_SECURE"),
		},
		Storefront: StorefrontConfig{
			PlaceholderImage: viper.GetString("STOREFRONT_PLACEHOLDER_IMAGE"),
			ThumbnailOption:  viper.GetString("STOREFRONT_THUMBNAIL_OPTION"),
			AllowedOrigins:   splitList(viper.GetString("STOREFRONT_ALLOWED_ORIGINS")),
			PostsToShow:      viper.GetInt("STOREFRONT_POSTS_TO_SHOW"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
