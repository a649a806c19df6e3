package features

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// Input is the explicit data a feature is computed from.
type Input struct {
	Ticker string
	// Snapshot holds recent rows, latest first. It may contain other tickers.
	Snapshot types.PriceTable
	// PreviousDay holds the daily bars of the previous session.
	PreviousDay types.PriceTable
}

// Feature computes one or more named values for the latest row of a ticker.
type Feature interface {
	// Name identifies the feature in a registry.
	Name() string
	// Columns lists the value names Compute returns.
	Columns() []string
	Compute(input Input) (map[string]float64, error)
}

// FeatureRegistry manages the features computed for a record.
type FeatureRegistry interface {
	Register(feature Feature) error
	Get(name string) (Feature, error)
	List() []string
	Remove(name string) error
}

// Registry is a thread-safe FeatureRegistry.
type Registry struct {
	features map[string]Feature
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		features: make(map[string]Feature),
	}
}

// Register adds a feature. Names must be unique.
func (r *Registry) Register(feature Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := feature.Name()
	if _, exists := r.features[name]; exists {
		return errors.Newf(errors.ErrCodeFeatureAlreadyExists, "feature with name %s already registered", name)
	}

	r.features[name] = feature

	return nil
}

// Get retrieves a feature by name.
func (r *Registry) Get(name string) (Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feature, exists := r.features[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeFeatureNotFound, "feature with name %s not found", name)
	}

	return feature, nil
}

// List returns the registered feature names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.features))
	for name := range r.features {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Remove removes a feature from the registry.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.features[name]; !exists {
		return errors.Newf(errors.ErrCodeFeatureNotFound, "feature with name %s not found", name)
	}

	delete(r.features, name)

	return nil
}
