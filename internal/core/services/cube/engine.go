package cube

import (
	"log/slog"

	domain "cubeengine/internal/core/domain/cube"
	apperrors "cubeengine/pkg/errors"
	"cubeengine/pkg/logging"
)

// Engine wires together the Registry, Cache, Planner, Executor, and
// Assembler behind domain.Engine: the single entry point an HTTP transport
// or any other collaborator drives the core through.
type Engine struct {
	registry  *Registry
	cache     *Cache
	planner   *Planner
	executor  *Executor
	assembler *Assembler
	events    *eventBus
	logger    *slog.Logger
}

// NewEngine constructs an Engine with the given cache bounds and base
// logger. Pass 0 for either cache parameter to use the documented defaults.
func NewEngine(cacheMax int, cacheTTLMs int64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:  NewRegistry(),
		cache:     NewCache(cacheMax, cacheTTLMs),
		planner:   NewPlanner(),
		executor:  NewExecutor(),
		assembler: NewAssembler(),
		events:    newEventBus(),
		logger:    logger,
	}
}

// RegisterCube validates and materializes a new cube.
func (e *Engine) RegisterCube(def domain.Definition) error {
	inst, err := e.registry.Register(def)
	if err != nil {
		return err
	}
	logging.ForCube(e.logger, def.Name).Info("cube registered",
		slog.Int("dimensions", len(inst.Definition.Dimensions)),
		slog.Int("measures", len(inst.Definition.Measures)),
		slog.Int("facts", len(inst.Definition.Facts)),
	)
	return nil
}

// ListCubes returns the summary projection for every registered cube.
func (e *Engine) ListCubes() []domain.CubeSummary {
	return e.registry.List()
}

// Execute normalizes, plans, and runs a query, serving from cache when
// possible. Any error surfaces before the cache is touched, so a failed
// query leaves cache contents and counters unchanged.
func (e *Engine) Execute(q domain.RawQuery) (domain.Result, error) {
	if q.Cube == "" {
		return domain.Result{}, apperrors.NewBadRequestError("cube name is required", "")
	}
	inst, err := e.registry.Get(q.Cube)
	if err != nil {
		return domain.Result{}, err
	}

	normalized, err := normalizeQuery(inst, q)
	if err != nil {
		return domain.Result{}, err
	}

	verdict := e.planner.Plan(normalized)
	key := BuildKey(normalized, verdict.Strategy)
	if cached, hit := e.cache.Get(key); hit {
		ttl := e.cache.GetRemainingTTL(key)
		cached.Metadata.Cache = domain.CacheMeta{
			Hit:            true,
			Key:            key,
			TTLRemainingMs: ttl,
			Stats:          e.cache.Stats(),
		}
		return cached, nil
	}

	data := e.executor.Execute(inst, normalized, verdict.Strategy)
	result := e.assembler.Assemble(inst, normalized, data, verdict, false, key, nil, e.cache.Stats())
	e.cache.Set(key, result)
	result.Metadata.Cache.Stats = e.cache.Stats()
	return result, nil
}

// InvalidateCube evicts every cache entry for the named cube and publishes
// an invalidation event to subscribed listeners.
func (e *Engine) InvalidateCube(name, reason string) (domain.InvalidationEvent, error) {
	if err := e.registry.Invalidate(name); err != nil {
		return domain.InvalidationEvent{}, err
	}
	evicted := e.cache.InvalidateCube(name)
	event := e.events.publish(name, reason, evicted)
	logging.ForCube(e.logger, name).Info("cube invalidated",
		slog.String("reason", reason),
		slog.Int("evicted", evicted),
	)
	return event, nil
}

// OnInvalidation subscribes to invalidation events, returning an unsubscribe
// func.
func (e *Engine) OnInvalidation(listener domain.InvalidationListener) func() {
	return e.events.subscribe(listener)
}

// RecentInvalidations returns the buffered invalidation events, oldest
// first.
func (e *Engine) RecentInvalidations() []domain.InvalidationEvent {
	return e.events.recent()
}

var _ domain.Engine = (*Engine)(nil)
