package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRAPH_BACKEND", "")
	t.Setenv("CATALOG_SOURCE", "")
	t.Setenv("NEO4J_URI", "")
	t.Setenv("SYNC_WORKERS", "")
	t.Setenv("AWS_PRICING_REGION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendNeo4j, cfg.Graph.Backend)
	assert.Equal(t, "bolt://neo4j:7687", cfg.Graph.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Graph.Neo4j.Username)
	assert.Equal(t, CatalogAWS, cfg.Catalog.Source)
	assert.Equal(t, "us-east-1", cfg.AWS.PricingRegion)
	assert.Equal(t, 1, cfg.Sync.Workers)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
}

func TestLoadStaticCatalog(t *testing.T) {
	t.Setenv("GRAPH_BACKEND", "memory")
	t.Setenv("CATALOG_SOURCE", "static")
	t.Setenv("CATALOG_STATIC", " ec2, s3 ,,lambda ")
	t.Setenv("CATALOG_CACHE_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"ec2", "s3", "lambda"}, cfg.Catalog.Static)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
}

func TestLoadPricingRegionIgnoresAWSRegion(t *testing.T) {
	t.Setenv("GRAPH_BACKEND", "memory")
	t.Setenv("CATALOG_SOURCE", "aws")
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("AWS_PRICING_REGION", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.AWS.PricingRegion)

	t.Setenv("AWS_PRICING_REGION", "eu-central-1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", cfg.AWS.PricingRegion)
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("GRAPH_BACKEND", "memory")
	t.Setenv("CATALOG_SOURCE", "aws")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("AWS_PRICING_BACKOFF_MAX", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.AWS.BackoffMax)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080"},
			Graph:   GraphConfig{Backend: BackendMemory},
			Catalog: CatalogConfig{Source: CatalogStatic, Static: []string{"ec2"}},
			Sync:    SyncConfig{Workers: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Graph.Backend = "dynamo" }, "unknown GRAPH_BACKEND"},
		{"postgres without dsn", func(c *Config) { c.Graph.Backend = BackendPostgres }, "PG_DSN"},
		{"static without entries", func(c *Config) { c.Catalog.Static = nil }, "CATALOG_STATIC"},
		{"unknown catalog", func(c *Config) { c.Catalog.Source = "botocore" }, "unknown CATALOG_SOURCE"},
		{"aws without pricing region", func(c *Config) { c.Catalog.Source = CatalogAWS }, "AWS_PRICING_REGION"},
		{"zero workers", func(c *Config) { c.Sync.Workers = 0 }, "SYNC_WORKERS"},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
