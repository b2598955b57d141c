// Package workflow materializes the AWS service catalog as graph nodes.
//
// A run verifies that the graph store answers a probe, reads the full catalog,
// and merges one node per name. Writes are idempotent, so repeated runs over an
// unchanged catalog never grow the graph, and a failed write only fails its item.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nextops/aws-services/internal/catalog"
	"github.com/nextops/aws-services/internal/graph"
	"github.com/nextops/aws-services/internal/logging"
	"github.com/nextops/aws-services/internal/metrics"
)

var (
	ErrNotConnected = errors.New("graph store is not reachable")
	ErrEmptyName    = errors.New("service name is empty after sanitization")
)

// SyncReport summarizes one run. Failed is derived, never stored.
type SyncReport struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Aborted   bool          `json:"aborted"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

func (r SyncReport) Failed() int {
	return r.Total - r.Succeeded
}

func (r SyncReport) String() string {
	if r.Aborted {
		return "Sync aborted: graph store is not reachable."
	}
	return fmt.Sprintf("Added %d of %d services to the graph store.", r.Succeeded, r.Total)
}

type SyncWorkflow struct {
	catalog catalog.Provider
	store   graph.Store
	label   string
	workers int
	logger  *logging.Logger
	metrics *metrics.Registry
}

type Option func(*SyncWorkflow)

func WithLogger(l *logging.Logger) Option {
	return func(w *SyncWorkflow) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(w *SyncWorkflow) { w.metrics = m }
}

// WithLabel overrides the node label (default graph.ServiceLabel).
func WithLabel(label string) Option {
	return func(w *SyncWorkflow) { w.label = label }
}

// WithWorkers bounds concurrent upserts. 1 keeps catalog order strictly.
func WithWorkers(n int) Option {
	return func(w *SyncWorkflow) {
		if n > 0 {
			w.workers = n
		}
	}
}

func New(provider catalog.Provider, store graph.Store, opts ...Option) *SyncWorkflow {
	w := &SyncWorkflow{
		catalog: provider,
		store:   store,
		label:   graph.ServiceLabel,
		workers: 1,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Sanitize strips every leading and trailing double quote from raw.
func Sanitize(raw string) string {
	return strings.Trim(raw, `"`)
}

func (w *SyncWorkflow) Sanitize(raw string) string {
	return Sanitize(raw)
}

// VerifyConnection reports whether the store answered a probe. Errors are
// logged and folded into false.
func (w *SyncWorkflow) VerifyConnection(ctx context.Context) bool {
	return w.verify(ctx, w.logger)
}

// UpsertService merges one node for name. A failure is logged with the name and
// cause and returned for counting; it is never escalated further.
func (w *SyncWorkflow) UpsertService(ctx context.Context, name string) error {
	return w.upsert(ctx, w.logger, name)
}

// ListServices returns the sanitized catalog in catalog order without touching the store.
func (w *SyncWorkflow) ListServices(ctx context.Context) ([]string, error) {
	raw, err := w.catalog.ListEntityNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	names := make([]string, len(raw))
	for i, r := range raw {
		names[i] = Sanitize(r)
	}
	return names, nil
}

// RunSync performs one full run. It returns ErrNotConnected, with an aborted
// report, when the probe fails, and a wrapped error when the catalog cannot be
// read. Per-item write failures only lower the Succeeded count.
func (w *SyncWorkflow) RunSync(ctx context.Context) (SyncReport, error) {
	report := SyncReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	log := w.logger.WithRunID(report.RunID)

	finish := func(result string) {
		report.Duration = time.Since(report.StartedAt)
		w.metrics.RecordSync(result, report.Duration)
	}

	if !w.verify(ctx, log) {
		report.Aborted = true
		finish("aborted")
		log.Error("sync", ErrNotConnected)
		return report, ErrNotConnected
	}

	raw, err := w.catalog.ListEntityNames(ctx)
	if err != nil {
		finish("failed")
		log.Errorf("sync", "catalog fetch failed error=%q", err.Error())
		return report, fmt.Errorf("fetch catalog: %w", err)
	}
	report.Total = len(raw)
	w.metrics.SetCatalogSize(len(raw))
	log.Infof("sync", "catalog services=%d workers=%d", len(raw), w.workers)

	if w.workers > 1 {
		report.Succeeded = w.upsertConcurrent(ctx, log, raw)
	} else {
		for _, name := range raw {
			if err := w.upsert(ctx, log, Sanitize(name)); err == nil {
				report.Succeeded++
			}
		}
	}

	finish("completed")
	log.Infof("sync", "total=%d succeeded=%d failed=%d duration=%s",
		report.Total, report.Succeeded, report.Failed(), report.Duration)
	return report, nil
}

func (w *SyncWorkflow) upsertConcurrent(ctx context.Context, log *logging.Logger, raw []string) int {
	ok := make([]bool, len(raw))

	var g errgroup.Group
	g.SetLimit(w.workers)
	for i, name := range raw {
		i, name := i, name
		g.Go(func() error {
			ok[i] = w.upsert(ctx, log, Sanitize(name)) == nil
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, v := range ok {
		if v {
			n++
		}
	}
	return n
}

func (w *SyncWorkflow) verify(ctx context.Context, log *logging.Logger) bool {
	err := w.store.Probe(ctx)
	w.metrics.RecordProbe(err)
	if err != nil {
		log.Errorf("verify_connection", "probe failed error=%q", err.Error())
		return false
	}
	log.Debugf("verify_connection", "probe ok")
	return true
}

func (w *SyncWorkflow) upsert(ctx context.Context, log *logging.Logger, name string) error {
	err := ErrEmptyName
	if name != "" {
		err = w.store.MergeNode(ctx, w.label, name)
	}
	w.metrics.RecordUpsert(err)
	if err != nil {
		log.Errorf("upsert", "failed to insert service name=%q error=%q", name, err.Error())
		return err
	}
	log.Debugf("upsert", "merged name=%q", name)
	return nil
}
