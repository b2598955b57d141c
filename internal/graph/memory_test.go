package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_MergeNodeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.MergeNode(ctx, ServiceLabel, "ec2"))
	require.NoError(t, store.MergeNode(ctx, ServiceLabel, "ec2"))
	require.NoError(t, store.MergeNode(ctx, ServiceLabel, "s3"))

	n, err := store.CountNodes(ctx, ServiceLabel)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, store.Has(ServiceLabel, "ec2"))
	assert.False(t, store.Has("Region", "ec2"))
	assert.Equal(t, []string{"ec2", "ec2", "s3"}, store.Calls())
}

func TestMemoryStore_InjectedFailures(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("boom")

	store.FailOn("b", boom)
	assert.ErrorIs(t, store.MergeNode(ctx, ServiceLabel, "b"), boom)
	assert.False(t, store.Has(ServiceLabel, "b"))
	assert.Equal(t, []string{"b"}, store.Calls())

	require.NoError(t, store.Probe(ctx))
	store.SetProbeError(boom)
	assert.ErrorIs(t, store.Probe(ctx), boom)
}

func TestMemoryStore_RejectsInvalidLabel(t *testing.T) {
	store := NewMemoryStore()

	err := store.MergeNode(context.Background(), "Service) DETACH DELETE (n", "ec2")

	assert.ErrorIs(t, err, ErrInvalidLabel)
	assert.Empty(t, store.Calls())
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Close(ctx))

	assert.ErrorIs(t, store.Probe(ctx), ErrStoreClosed)
	assert.ErrorIs(t, store.MergeNode(ctx, ServiceLabel, "ec2"), ErrStoreClosed)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore()

	assert.ErrorIs(t, store.Probe(ctx), context.Canceled)
	assert.ErrorIs(t, store.MergeNode(ctx, ServiceLabel, "ec2"), context.Canceled)
}

func TestValidateLabel(t *testing.T) {
	for _, ok := range []string{"Service", "_x", "Aws_Service2"} {
		assert.NoError(t, ValidateLabel(ok), ok)
	}
	for _, bad := range []string{"", "2fast", "Ser vice", "a-b", "S`"} {
		assert.ErrorIs(t, ValidateLabel(bad), ErrInvalidLabel, bad)
	}
}
