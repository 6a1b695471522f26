package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEndpoint is the public joke API the demo consumes
const DefaultEndpoint = "https://official-joke-api.appspot.com/random_joke"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Endpoint EndpointConfig
	Jokes    JokesConfig
	Redis    RedisConfig
	LogLevel string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

// EndpointConfig describes the remote API both request flows consume
type EndpointConfig struct {
	URL     string
	Timeout int // seconds, 0 disables the client timeout
}

// JokesConfig holds configuration of the local joke API
type JokesConfig struct {
	Enabled     bool
	CatalogPath string // empty means the bundled catalog
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Endpoint: EndpointConfig{
			URL:     getEnv("JOKE_ENDPOINT", DefaultEndpoint),
			Timeout: getEnvAsInt("ENDPOINT_TIMEOUT", 0),
		},
		Jokes: JokesConfig{
			Enabled:     getEnvAsBool("JOKES_API_ENABLED", true),
			CatalogPath: getEnv("JOKES_CATALOG", ""),
		},
		Redis: RedisConfig{
			Addr:     getRedisAddr(),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// EndpointURL resolves the endpoint. "local" points at this server's own joke API.
func (c *Config) EndpointURL() string {
	if c.Endpoint.URL == "local" {
		return fmt.Sprintf("http://localhost:%d/api/random_joke", c.Server.Port)
	}
	return c.Endpoint.URL
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getRedisAddr resolves REDIS_URL, then REDIS_ADDR. Empty means the in-memory joke store.
func getRedisAddr() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return strings.TrimPrefix(url, "redis://")
	}
	return os.Getenv("REDIS_ADDR")
}
