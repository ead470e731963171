package cube

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	domain "cubeengine/internal/core/domain/cube"
	apperrors "cubeengine/pkg/errors"
)

// Registry owns registered cube definitions: instances are immutable after
// registration, reads take the shared lock only, and Register/Invalidate
// are serialized behind the write lock.
type Registry struct {
	mu    sync.RWMutex
	cubes map[string]*domain.Instance
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{cubes: make(map[string]*domain.Instance)}
}

// Register validates and materializes a cube definition, storing an
// immutable Instance.
func (r *Registry) Register(def domain.Definition) (*domain.Instance, error) {
	if err := def.Validate(); err != nil {
		return nil, apperrors.NewBadRequestError("invalid cube definition", err.Error())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cubes[def.Name]; exists {
		return nil, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeCubeDuplicateName), def.Name)
	}

	dimensionIdx := make(map[string]domain.Dimension, len(def.Dimensions))
	for _, d := range def.Dimensions {
		dimensionIdx[d.Name] = d
	}
	measureIdx := make(map[string]domain.Measure, len(def.Measures))
	for _, m := range def.Measures {
		measureIdx[m.Name] = m
	}

	preAggregates, err := materializePreAggregates(def, measureIdx)
	if err != nil {
		return nil, err
	}

	instance := &domain.Instance{
		Definition:    def,
		DimensionIdx:  dimensionIdx,
		MeasureIdx:    measureIdx,
		PreAggregates: preAggregates,
	}
	r.cubes[def.Name] = instance
	return instance, nil
}

// materializePreAggregates builds the (dim.level -> value -> measure map)
// store, fanning the per-dimension work out over an errgroup since each
// dimension's materialization is independent. The call is still synchronous
// from the caller's perspective.
func materializePreAggregates(def domain.Definition, measureIdx map[string]domain.Measure) (domain.PreAggregateStore, error) {
	results := make([]map[string]map[string]domain.PreAggregateEntry, len(def.Dimensions))

	var g errgroup.Group
	for i, dim := range def.Dimensions {
		i, dim := i, dim
		g.Go(func() error {
			results[i] = materializeDimension(def, dim, measureIdx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError("failed to materialize pre-aggregates", err)
	}

	store := make(domain.PreAggregateStore, len(def.Dimensions)*2)
	for i, dim := range def.Dimensions {
		for level, byValue := range results[i] {
			store[domain.LevelKey(dim.Name, level)] = byValue
		}
	}
	return store, nil
}

// materializeDimension ingests every fact row into accumulators keyed by
// (level, value), one independent unit of work for the errgroup fan-out.
// Returns level -> value -> finalized measure entry.
func materializeDimension(def domain.Definition, dim domain.Dimension, measureIdx map[string]domain.Measure) map[string]map[string]domain.PreAggregateEntry {
	type cellKey struct {
		level string
		value string
	}
	accs := make(map[cellKey]map[string]Accumulator)

	for _, fact := range def.Facts {
		for _, level := range dim.Hierarchy {
			levelKey := domain.LevelKey(dim.Name, level)
			v, present := fact.Levels[levelKey]
			if !present {
				continue
			}
			k := cellKey{level: level, value: v.String()}
			byMeasure, ok := accs[k]
			if !ok {
				byMeasure = make(map[string]Accumulator, len(measureIdx))
				for name, m := range measureIdx {
					byMeasure[name] = NewAccumulator(m.Kind)
				}
				accs[k] = byMeasure
			}
			for name, m := range measureIdx {
				byMeasure[name].Add(fact.Metric(m.ValueField))
			}
		}
	}

	out := make(map[string]map[string]domain.PreAggregateEntry, len(dim.Hierarchy))
	for _, level := range dim.Hierarchy {
		out[level] = make(map[string]domain.PreAggregateEntry)
	}
	for k, byMeasure := range accs {
		entry := make(domain.PreAggregateEntry, len(byMeasure))
		for name, acc := range byMeasure {
			entry[name] = acc.Finalize()
		}
		out[k.level][k.value] = entry
	}
	return out
}

// List returns the summary projection for every registered cube, sorted by
// name.
func (r *Registry) List() []domain.CubeSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CubeSummary, 0, len(r.cubes))
	for _, inst := range r.cubes {
		out = append(out, inst.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get looks up a registered cube instance by name.
func (r *Registry) Get(name string) (*domain.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.cubes[name]
	if !ok {
		return nil, apperrors.NewNotFoundError("cube " + name)
	}
	return inst, nil
}

// Invalidate is a registry-side no-op beyond existence checking: cache
// eviction is owned by the Cache, not the Registry.
func (r *Registry) Invalidate(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cubes[name]; !ok {
		return apperrors.NewNotFoundError("cube " + name)
	}
	return nil
}
