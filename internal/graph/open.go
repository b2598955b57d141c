package graph

import (
	"context"
	"fmt"

	"github.com/nextops/aws-services/config"
)

// Open constructs the store selected by cfg.Backend. Postgres stores get their
// schema created here; a failure to do so is returned alongside the usable store
// so callers can decide whether it matters before the connectivity probe runs.
func Open(ctx context.Context, cfg config.GraphConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendNeo4j:
		neo, err := DialNeo4j(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database)
		if err != nil {
			return nil, err
		}
		return neo, nil
	case config.BackendPostgres:
		pg, err := OpenPostgres(cfg.Postgres.Driver, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		return pg, pg.EnsureSchema(ctx)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
