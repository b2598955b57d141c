package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nextops/aws-services/config"
	httpapi "github.com/nextops/aws-services/internal/api/http"
	"github.com/nextops/aws-services/internal/catalog"
	"github.com/nextops/aws-services/internal/graph"
	"github.com/nextops/aws-services/internal/logging"
)

// OpenStore opens the configured graph store. Schema preparation failures are
// only logged: the connectivity probe decides whether a run may proceed.
func OpenStore(ctx context.Context, cfg config.GraphConfig, logger *logging.Logger) (graph.Store, error) {
	store, err := graph.Open(ctx, cfg)
	if store == nil {
		return nil, fmt.Errorf("graph store open: %w", err)
	}
	if err != nil {
		logger.Warnf("bootstrap", "graph store prepare failed backend=%s error=%q", cfg.Backend, err.Error())
	}
	logger.Infof("bootstrap", "graph store ready backend=%s", cfg.Backend)
	return store, nil
}

// Catalog is the assembled provider plus the optional cache in front of it.
type Catalog struct {
	Provider catalog.Provider
	Cache    *catalog.CachedProvider
	redis    *redis.Client
}

func (c *Catalog) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Refresher returns the cache as a refresher, or nil when caching is off.
func (c *Catalog) Refresher() httpapi.CatalogRefresher {
	if c.Cache == nil {
		return nil
	}
	return c.Cache
}

func BuildCatalog(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Catalog, error) {
	var base catalog.Provider
	switch cfg.Catalog.Source {
	case config.CatalogStatic:
		base = catalog.NewStaticProvider(cfg.Catalog.Static...)
	case config.CatalogAWS:
		p, err := catalog.LoadPricingProvider(ctx, cfg.AWS, logger)
		if err != nil {
			return nil, err
		}
		base = p
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	out := &Catalog{Provider: base}
	if cfg.Redis.Addr == "" {
		return out, nil
	}

	out.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	out.Cache = catalog.NewCachedProvider(base, out.redis, cfg.Redis.TTL, logger)
	out.Provider = out.Cache
	logger.Infof("bootstrap", "catalog cache enabled addr=%s ttl=%s", cfg.Redis.Addr, cfg.Redis.TTL)
	return out, nil
}
