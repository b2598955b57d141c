package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cypherCall struct {
	mode   string
	cypher string
	params map[string]any
}

type fakeNeo4jClient struct {
	calls    []cypherCall
	readErr  error
	writeErr error
	closed   bool
}

func (f *fakeNeo4jClient) Read(ctx context.Context, cypher string, params map[string]any) error {
	f.calls = append(f.calls, cypherCall{"read", cypher, params})
	return f.readErr
}

func (f *fakeNeo4jClient) Write(ctx context.Context, cypher string, params map[string]any) error {
	f.calls = append(f.calls, cypherCall{"write", cypher, params})
	return f.writeErr
}

func (f *fakeNeo4jClient) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func TestNeo4jStore_ProbeRunsBoundedRead(t *testing.T) {
	client := &fakeNeo4jClient{}
	store := NewNeo4jStore(client)

	require.NoError(t, store.Probe(context.Background()))

	require.Len(t, client.calls, 1)
	assert.Equal(t, "read", client.calls[0].mode)
	assert.Equal(t, "MATCH (n) RETURN n LIMIT 1", client.calls[0].cypher)
}

func TestNeo4jStore_ProbeWrapsError(t *testing.T) {
	unavailable := errors.New("ServiceUnavailable")
	store := NewNeo4jStore(&fakeNeo4jClient{readErr: unavailable})

	err := store.Probe(context.Background())

	assert.ErrorIs(t, err, unavailable)
	assert.Contains(t, err.Error(), "neo4j probe")
}

func TestNeo4jStore_MergeNode(t *testing.T) {
	client := &fakeNeo4jClient{}
	store := NewNeo4jStore(client)

	require.NoError(t, store.MergeNode(context.Background(), ServiceLabel, "ec2"))

	require.Len(t, client.calls, 1)
	call := client.calls[0]
	assert.Equal(t, "write", call.mode)
	assert.Equal(t, "MERGE (s:Service {name: $name})", call.cypher)
	assert.Equal(t, map[string]any{"name": "ec2"}, call.params)
}

func TestNeo4jStore_MergeNodeInvalidLabelSkipsWrite(t *testing.T) {
	client := &fakeNeo4jClient{}
	store := NewNeo4jStore(client)

	err := store.MergeNode(context.Background(), "Service {x:1}) //", "ec2")

	assert.ErrorIs(t, err, ErrInvalidLabel)
	assert.Empty(t, client.calls)
}

func TestNeo4jStore_MergeNodeWrapsError(t *testing.T) {
	constraint := errors.New("constraint violation")
	store := NewNeo4jStore(&fakeNeo4jClient{writeErr: constraint})

	err := store.MergeNode(context.Background(), ServiceLabel, "s3")

	assert.ErrorIs(t, err, constraint)
	assert.Contains(t, err.Error(), `"s3"`)
}

func TestNeo4jStore_Close(t *testing.T) {
	client := &fakeNeo4jClient{}
	store := NewNeo4jStore(client)

	require.NoError(t, store.Close(context.Background()))
	assert.True(t, client.closed)
}

func TestDialNeo4j(t *testing.T) {
	store, err := DialNeo4j("bolt://localhost:7687", "neo4j", "secret", "")
	require.NoError(t, err)
	require.NoError(t, store.Close(context.Background()))

	_, err = DialNeo4j("ftp://localhost", "neo4j", "secret", "")
	assert.Error(t, err)
}
