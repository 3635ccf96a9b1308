package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/storeshop/pkg/logger"
	"github.com/angelmondragon/storeshop/pkg/metrics"
	"go.uber.org/multierr"
)

// Repository holds the current catalog snapshot and swaps it on reload.
type Repository struct {
	mu      sync.RWMutex
	current *Catalog
	lastErr error

	sources Sources
	logg    *logger.Logger
	metrics *metrics.ShopMetrics
}

// NewRepository builds an empty repository; call Reload to populate it.
func NewRepository(sources Sources, logg *logger.Logger, m *metrics.ShopMetrics) *Repository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Repository{
		current: &Catalog{},
		sources: sources,
		logg:    logg,
		metrics: m,
	}
}

// NewStaticRepository serves a fixed catalog; Reload is a no-op.
func NewStaticRepository(cat *Catalog) *Repository {
	if cat == nil {
		cat = &Catalog{}
	}
	return &Repository{current: cat, logg: logger.Nop()}
}

// Current returns the active snapshot.
func (r *Repository) Current() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// LastError returns the error of the most recent reload, if any.
func (r *Repository) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Reload re-reads every source and publishes the result, even when partial.
func (r *Repository) Reload(ctx context.Context) error {
	if r.sources == (Sources{}) {
		return nil
	}
	start := time.Now()
	cat, err := Load(r.sources)
	r.metrics.ObserveCatalogReload(time.Since(start), err)

	r.mu.Lock()
	r.current = cat
	r.lastErr = err
	r.mu.Unlock()

	ctx = r.logg.WithFields(ctx, map[string]any{
		"stores":           len(cat.Stores),
		"products":         len(cat.Standard),
		"special_products": len(cat.Special),
	})
	for _, w := range cat.Warnings {
		r.logg.Warn(r.logg.WithField(ctx, "detail", w), "catalog row skipped or adjusted")
	}
	for _, e := range multierr.Errors(err) {
		r.logg.Error(ctx, "catalog file failed to load", e)
	}
	r.logg.Info(ctx, "catalog loaded")
	return err
}
