package graph

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

const (
	createNodesTable = `CREATE TABLE IF NOT EXISTS graph_nodes (
	label      TEXT NOT NULL,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (label, name)
)`
	mergeNodeSQL = `INSERT INTO graph_nodes (label, name) VALUES ($1, $2) ON CONFLICT (label, name) DO NOTHING`
	probeSQL     = `SELECT 1`
	countNodeSQL = `SELECT count(*) FROM graph_nodes WHERE label = $1`
)

// PostgresStore keeps nodes in a single (label, name) keyed table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a pool with the pgx ("pgx") or lib/pq ("postgres") driver.
// It does not contact the server.
func OpenPostgres(driver, dsn string) (*PostgresStore, error) {
	switch driver {
	case "pgx", "postgres":
	default:
		return nil, fmt.Errorf("unsupported postgres driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return NewPostgresStore(db), nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createNodesTable); err != nil {
		return fmt.Errorf("create graph_nodes: %w", err)
	}
	return nil
}

func (s *PostgresStore) Probe(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, probeSQL).Scan(&one); err != nil {
		return fmt.Errorf("postgres probe: %w", err)
	}
	return nil
}

func (s *PostgresStore) MergeNode(ctx context.Context, label, key string) error {
	if err := ValidateLabel(label); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, mergeNodeSQL, label, key); err != nil {
		return fmt.Errorf("postgres merge %s %q: %w", label, key, err)
	}
	return nil
}

// CountNodes reports how many nodes exist under label.
func (s *PostgresStore) CountNodes(ctx context.Context, label string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countNodeSQL, label).Scan(&n); err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}
