package graph

import (
	"context"
	"sync"
)

// MemoryStore keeps nodes in process. It backs dry runs and tests, and can be
// told to fail probes or individual merges.
type MemoryStore struct {
	mu       sync.Mutex
	nodes    map[string]map[string]struct{}
	calls    []string
	probeErr error
	failOn   map[string]error
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:  make(map[string]map[string]struct{}),
		failOn: make(map[string]error),
	}
}

// SetProbeError makes every subsequent Probe return err (nil restores it).
func (m *MemoryStore) SetProbeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeErr = err
}

// FailOn makes MergeNode return err for the given key.
func (m *MemoryStore) FailOn(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[key] = err
}

func (m *MemoryStore) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	return m.probeErr
}

func (m *MemoryStore) MergeNode(ctx context.Context, label, key string) error {
	if err := ValidateLabel(label); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.calls = append(m.calls, key)
	if err, ok := m.failOn[key]; ok {
		return err
	}

	names, ok := m.nodes[label]
	if !ok {
		names = make(map[string]struct{})
		m.nodes[label] = names
	}
	names[key] = struct{}{}
	return nil
}

func (m *MemoryStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// CountNodes returns the number of distinct nodes under label.
func (m *MemoryStore) CountNodes(ctx context.Context, label string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes[label]), nil
}

func (m *MemoryStore) Has(label, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[label][key]
	return ok
}

// Calls returns the keys passed to MergeNode, in call order, failures included.
func (m *MemoryStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
