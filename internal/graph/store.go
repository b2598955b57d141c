package graph

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ServiceLabel is the node label used for AWS service nodes.
const ServiceLabel = "Service"

var (
	ErrInvalidLabel   = errors.New("invalid node label")
	ErrUnknownBackend = errors.New("unknown graph backend")
	ErrStoreClosed    = errors.New("graph store is closed")
)

// Store is the narrow capability the sync workflow needs from a graph database.
//
// MergeNode must be idempotent: it creates a node with the given label whose
// name attribute equals key when none exists, and leaves an existing one untouched.
type Store interface {
	Probe(ctx context.Context) error
	MergeNode(ctx context.Context, label, key string) error
	Close(ctx context.Context) error
}

// Counter is implemented by stores that can report their node count.
type Counter interface {
	CountNodes(ctx context.Context, label string) (int, error)
}

var labelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateLabel rejects labels that cannot be safely inlined into a query.
func ValidateLabel(label string) error {
	if !labelPattern.MatchString(label) {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return nil
}
