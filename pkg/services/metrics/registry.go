package metrics

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
)

// Factory builds a metric from the optional argument that follows the
// identifier in a metric spec ("genre_share:RPG").
type Factory func(arg string) (domain.Metric, error)

// Registry maps metric identifiers to factories
type Registry interface {
	// Register adds a new metric factory
	Register(id string, factory Factory) error
	// Create builds the metric for a single spec
	Create(spec string) (domain.Metric, error)
	// Resolve builds the metrics for specs, preserving their order
	Resolve(specs []string) ([]domain.Metric, error)
	// List returns the registered identifiers in sorted order
	List() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty metric registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry holding every built-in metric.
func DefaultRegistry() Registry {
	r := NewRegistry()
	for id, f := range map[string]Factory{
		"count":           noArg(GameCount),
		"total_sales":     noArg(TotalSales),
		"average_sales":   noArg(AverageSales),
		"median_sales":    noArg(MedianSales),
		"stddev_sales":    noArg(StdDevSales),
		"genre_breakdown": noArg(GenreBreakdown),
		"genre_share": func(arg string) (domain.Metric, error) {
			return GenreShare(arg), nil
		},
	} {
		// ids are unique literals, Register cannot fail here
		_ = r.Register(id, f)
	}
	return r
}

// DefaultMetrics are the metrics of a report with no explicit selection.
func DefaultMetrics() []string {
	return []string{"count", "total_sales", "average_sales", "genre_breakdown"}
}

func noArg(build func() domain.Metric) Factory {
	return func(arg string) (domain.Metric, error) {
		if arg != "" {
			return nil, fmt.Errorf("metric does not take an argument, got %q", arg)
		}
		return build(), nil
	}
}

func (r *registry) Register(id string, factory Factory) error {
	if id == "" {
		return fmt.Errorf("metric id cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("metric %q is already registered", id)
	}

	r.factories[id] = factory
	return nil
}

func (r *registry) Create(spec string) (domain.Metric, error) {
	id, arg, _ := strings.Cut(spec, ":")
	id = strings.TrimSpace(id)

	r.mu.RLock()
	factory, exists := r.factories[id]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("metric %q is not registered", id)
	}

	m, err := factory(strings.TrimSpace(arg))
	if err != nil {
		return nil, fmt.Errorf("metric %q: %w", id, err)
	}
	return m, nil
}

func (r *registry) Resolve(specs []string) ([]domain.Metric, error) {
	out := make([]domain.Metric, 0, len(specs))
	for _, spec := range specs {
		m, err := r.Create(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
