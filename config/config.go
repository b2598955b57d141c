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

type Config struct {
	Server  ServerConfig
	Graph   GraphConfig
	Catalog CatalogConfig
	AWS     AWSConfig
	Redis   RedisConfig
	Sync    SyncConfig
	App     AppConfig
}

type ServerConfig struct {
	Port string
}

// GraphConfig selects the graph store backend and carries its connection parameters.
type GraphConfig struct {
	Backend  string
	Neo4j    Neo4jConfig
	Postgres PostgresConfig
}

type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

type PostgresConfig struct {
	DSN    string
	Driver string
}

type CatalogConfig struct {
	Source string
	Static []string
}

// AWSConfig configures the Pricing catalog client. PricingRegion is separate
// from AWS_REGION: the Pricing API only has endpoints in a few regions.
type AWSConfig struct {
	PricingRegion  string
	RateLimit      float64
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// RedisConfig enables the catalog cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type SyncConfig struct {
	Workers  int
	Schedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

const (
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	CatalogAWS    = "aws"
	CatalogStatic = "static"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Graph: GraphConfig{
			Backend: strings.ToLower(getEnv("GRAPH_BACKEND", BackendNeo4j)),
			Neo4j: Neo4jConfig{
				URI:      getEnv("NEO4J_URI", "bolt://neo4j:7687"),
				Username: getEnv("NEO4J_USERNAME", "neo4j"),
				Password: getEnv("NEO4J_PASSWORD", "somepassword"),
				Database: getEnv("NEO4J_DATABASE", ""),
			},
			Postgres: PostgresConfig{
				DSN:    getEnv("PG_DSN", ""),
				Driver: getEnv("PG_DRIVER", "pgx"),
			},
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(getEnv("CATALOG_SOURCE", CatalogAWS)),
			Static: getEnvAsList("CATALOG_STATIC"),
		},
		AWS: AWSConfig{
			PricingRegion:  getEnv("AWS_PRICING_REGION", "us-east-1"),
			RateLimit:      getEnvAsFloat("AWS_PRICING_RATE_LIMIT", 8),
			MaxRetries:     getEnvAsInt("AWS_PRICING_MAX_RETRIES", 3),
			BackoffInitial: getEnvAsDuration("AWS_PRICING_BACKOFF_INITIAL", 1*time.Second),
			BackoffMax:     getEnvAsDuration("AWS_PRICING_BACKOFF_MAX", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("CATALOG_CACHE_TTL", time.Hour),
		},
		Sync: SyncConfig{
			Workers:  getEnvAsInt("SYNC_WORKERS", 1),
			Schedule: getEnv("SYNC_SCHEDULE", "0 0 0 * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Graph.Backend {
	case BackendNeo4j:
		if c.Graph.Neo4j.URI == "" {
			return fmt.Errorf("NEO4J_URI is required")
		}
	case BackendPostgres:
		if c.Graph.Postgres.DSN == "" {
			return fmt.Errorf("PG_DSN is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown GRAPH_BACKEND %q", c.Graph.Backend)
	}

	switch c.Catalog.Source {
	case CatalogAWS:
		if c.AWS.PricingRegion == "" {
			return fmt.Errorf("AWS_PRICING_REGION is required")
		}
	case CatalogStatic:
		if len(c.Catalog.Static) == 0 {
			return fmt.Errorf("CATALOG_STATIC is required for the static catalog")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	if c.Sync.Workers < 1 {
		return fmt.Errorf("SYNC_WORKERS must be at least 1")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
