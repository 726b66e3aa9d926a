package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting never type-asserts.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	onInit               []OnInit
	onShutdown           []OnShutdown
	onFeesCollected      []OnFeesCollected
	onAutoLiquidityDue   []OnAutoLiquidityDue
	onLiquidityReliefDue []OnLiquidityReliefDue
	onRebaseApplied      []OnRebaseApplied
	onTransferCompleted  []OnTransferCompleted
	onFeesUpdated        []OnFeesUpdated
	onLifecycleChanged   []OnLifecycleChanged
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnFeesCollected); ok {
		r.onFeesCollected = append(r.onFeesCollected, v)
	}
	if v, ok := p.(OnAutoLiquidityDue); ok {
		r.onAutoLiquidityDue = append(r.onAutoLiquidityDue, v)
	}
	if v, ok := p.(OnLiquidityReliefDue); ok {
		r.onLiquidityReliefDue = append(r.onLiquidityReliefDue, v)
	}
	if v, ok := p.(OnRebaseApplied); ok {
		r.onRebaseApplied = append(r.onRebaseApplied, v)
	}
	if v, ok := p.(OnTransferCompleted); ok {
		r.onTransferCompleted = append(r.onTransferCompleted, v)
	}
	if v, ok := p.(OnFeesUpdated); ok {
		r.onFeesUpdated = append(r.onFeesUpdated, v)
	}
	if v, ok := p.(OnLifecycleChanged); ok {
		r.onLifecycleChanged = append(r.onLifecycleChanged, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnFeesCollected", reflect.TypeOf((*OnFeesCollected)(nil)).Elem()},
	{"OnAutoLiquidityDue", reflect.TypeOf((*OnAutoLiquidityDue)(nil)).Elem()},
	{"OnLiquidityReliefDue", reflect.TypeOf((*OnLiquidityReliefDue)(nil)).Elem()},
	{"OnRebaseApplied", reflect.TypeOf((*OnRebaseApplied)(nil)).Elem()},
	{"OnTransferCompleted", reflect.TypeOf((*OnTransferCompleted)(nil)).Elem()},
	{"OnFeesUpdated", reflect.TypeOf((*OnFeesUpdated)(nil)).Elem()},
	{"OnLifecycleChanged", reflect.TypeOf((*OnLifecycleChanged)(nil)).Elem()},
}

func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit runs call for every hook in list, logging and swallowing failures.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, list []T, call func(T) error) {
	for _, p := range list {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

func snapshot[T any](r *Registry, list *[]T) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]T(nil), (*list)...)
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger any) {
	emit(ctx, r, "OnInit", snapshot(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, ledger)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", snapshot(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitFeesCollected emits a swap batch.
func (r *Registry) EmitFeesCollected(ctx context.Context, e *FeesCollected) {
	emit(ctx, r, "OnFeesCollected", snapshot(r, &r.onFeesCollected), func(p OnFeesCollected) error {
		return p.OnFeesCollected(ctx, e)
	})
}

// EmitAutoLiquidityDue emits an auto-liquidity request.
func (r *Registry) EmitAutoLiquidityDue(ctx context.Context, e *AutoLiquidityDue) {
	emit(ctx, r, "OnAutoLiquidityDue", snapshot(r, &r.onAutoLiquidityDue), func(p OnAutoLiquidityDue) error {
		return p.OnAutoLiquidityDue(ctx, e)
	})
}

// EmitLiquidityReliefDue emits a stabilizer request.
func (r *Registry) EmitLiquidityReliefDue(ctx context.Context, e *LiquidityReliefDue) {
	emit(ctx, r, "OnLiquidityReliefDue", snapshot(r, &r.onLiquidityReliefDue), func(p OnLiquidityReliefDue) error {
		return p.OnLiquidityReliefDue(ctx, e)
	})
}

// EmitRebaseApplied emits a committed rebase batch.
func (r *Registry) EmitRebaseApplied(ctx context.Context, e *RebaseApplied) {
	emit(ctx, r, "OnRebaseApplied", snapshot(r, &r.onRebaseApplied), func(p OnRebaseApplied) error {
		return p.OnRebaseApplied(ctx, e)
	})
}

// EmitTransferCompleted emits a committed transfer.
func (r *Registry) EmitTransferCompleted(ctx context.Context, e *TransferCompleted) {
	emit(ctx, r, "OnTransferCompleted", snapshot(r, &r.onTransferCompleted), func(p OnTransferCompleted) error {
		return p.OnTransferCompleted(ctx, e)
	})
}

// EmitFeesUpdated emits a fee change.
func (r *Registry) EmitFeesUpdated(ctx context.Context, e *FeesUpdated) {
	emit(ctx, r, "OnFeesUpdated", snapshot(r, &r.onFeesUpdated), func(p OnFeesUpdated) error {
		return p.OnFeesUpdated(ctx, e)
	})
}

// EmitLifecycleChanged emits a lifecycle transition.
func (r *Registry) EmitLifecycleChanged(ctx context.Context, e *LifecycleChanged) {
	emit(ctx, r, "OnLifecycleChanged", snapshot(r, &r.onLifecycleChanged), func(p OnLifecycleChanged) error {
		return p.OnLifecycleChanged(ctx, e)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the transfer pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("plugin panic: %s: %v", pluginName, rec)
			}
		}()
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
