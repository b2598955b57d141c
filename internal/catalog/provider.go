// Package catalog supplies the authoritative list of AWS service names to sync.
package catalog

import "context"

// Provider returns the complete list of raw entity names in a stable order.
type Provider interface {
	ListEntityNames(ctx context.Context) ([]string, error)
}

// StaticProvider serves a fixed list. It backs dry runs and tests.
type StaticProvider struct {
	names []string
}

func NewStaticProvider(names ...string) *StaticProvider {
	cp := make([]string, len(names))
	copy(cp, names)
	return &StaticProvider{names: cp}
}

func (p *StaticProvider) ListEntityNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out, nil
}
