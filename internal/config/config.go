package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	// Service configuration
	ServicePort string
	ServiceName string

	// Blob store (MinIO/S3) configuration
	BlobEndpoint  string
	BlobAccessKey string
	BlobSecretKey string
	BlobUseSSL    bool

	// Metadata store (MongoDB) configuration
	MongoURI      string
	MongoDatabase string

	// Notification bus (Redis) configuration; empty host selects the
	// in-process bus
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// OTLP trace collector configuration
	OTLPEndpoint string
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. Credentials have no defaults; Validate reports them when absent.
func LoadConfig() (*Config, error) {
	config := &Config{
		// Service defaults
		ServicePort: getEnv("SERVICE_PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "mediashare-service"),

		// Blob store defaults
		BlobEndpoint:  getEnv("BLOB_ENDPOINT", "localhost:9000"),
		BlobAccessKey: getEnv("BLOB_ACCESS_KEY", ""),
		BlobSecretKey: getEnv("BLOB_SECRET_KEY", ""),
		BlobUseSSL:    getEnvAsBool("BLOB_USE_SSL", false),

		// Metadata store defaults
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "mediashare"),

		// Redis defaults
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Collector defaults
		OTLPEndpoint: getEnv("OTLP_ENDPOINT", "localhost:4318"),
	}

	return config, nil
}

// Validate checks that every required setting is present. The error lists
// all missing variables at once so a misconfigured deployment surfaces as a
// single "not configured" condition.
func (c *Config) Validate() error {
	var missing []string
	if c.BlobEndpoint == "" {
		missing = append(missing, "BLOB_ENDPOINT")
	}
	if c.BlobAccessKey == "" {
		missing = append(missing, "BLOB_ACCESS_KEY")
	}
	if c.BlobSecretKey == "" {
		missing = append(missing, "BLOB_SECRET_KEY")
	}
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("storage is not configured: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetRedisAddr returns the Redis address, or "" when Redis is not configured.
func (c *Config) GetRedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
