package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const probeCypher = "MATCH (n) RETURN n LIMIT 1"

// Neo4jClient runs cypher against a Neo4j database in read or write transactions.
type Neo4jClient interface {
	Read(ctx context.Context, cypher string, params map[string]any) error
	Write(ctx context.Context, cypher string, params map[string]any) error
	Close(ctx context.Context) error
}

// Neo4jStore upserts nodes with MERGE through a single shared driver.
type Neo4jStore struct {
	client Neo4jClient
}

func NewNeo4jStore(client Neo4jClient) *Neo4jStore {
	return &Neo4jStore{client: client}
}

// DialNeo4j builds a driver for uri. No connection is made until first use.
func DialNeo4j(uri, username, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	return NewNeo4jStore(&driverClient{driver: driver, database: database}), nil
}

func (s *Neo4jStore) Probe(ctx context.Context) error {
	if err := s.client.Read(ctx, probeCypher, nil); err != nil {
		return fmt.Errorf("neo4j probe: %w", err)
	}
	return nil
}

func (s *Neo4jStore) MergeNode(ctx context.Context, label, key string) error {
	if err := ValidateLabel(label); err != nil {
		return err
	}
	if err := s.client.Write(ctx, mergeCypher(label), map[string]any{"name": key}); err != nil {
		return fmt.Errorf("neo4j merge %s %q: %w", label, key, err)
	}
	return nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// mergeCypher expects an already validated label; labels cannot be parameters.
func mergeCypher(label string) string {
	return fmt.Sprintf("MERGE (s:%s {name: $name})", label)
}

type driverClient struct {
	driver   neo4j.DriverWithContext
	database string
}

func (c *driverClient) Read(ctx context.Context, cypher string, params map[string]any) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return runAndConsume(ctx, tx, cypher, params)
	})
	return err
}

func (c *driverClient) Write(ctx context.Context, cypher string, params map[string]any) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return runAndConsume(ctx, tx, cypher, params)
	})
	return err
}

func (c *driverClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func runAndConsume(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) (any, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	summary, err := res.Consume(ctx)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
