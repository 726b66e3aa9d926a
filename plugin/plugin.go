// Package plugin lets satellite collaborators observe the ledger. The swap
// executor, the auto-liquidity engine, the liquidity-relief stabilizer,
// metrics and audit sinks all hook in here.
//
// Hooks run after the ledger has committed and released its lock, so a hook
// may call back into the ledger and will see the committed state.
package plugin

import "context"

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts. l is the *elastic.Ledger.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l any) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Satellite hooks
// ──────────────────────────────────────────────────

// OnFeesCollected is called when the swap trigger fires. The receiver owns
// the swap collector and is expected to sell the batch and distribute the
// proceeds.
type OnFeesCollected interface {
	Plugin
	OnFeesCollected(ctx context.Context, e *FeesCollected) error
}

// OnAutoLiquidityDue is called when the liquidity collector should be paired.
type OnAutoLiquidityDue interface {
	Plugin
	OnAutoLiquidityDue(ctx context.Context, e *AutoLiquidityDue) error
}

// OnLiquidityReliefDue is called when the stabilizer should run.
type OnLiquidityReliefDue interface {
	Plugin
	OnLiquidityReliefDue(ctx context.Context, e *LiquidityReliefDue) error
}

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnRebaseApplied is called after a rebase batch commits.
type OnRebaseApplied interface {
	Plugin
	OnRebaseApplied(ctx context.Context, e *RebaseApplied) error
}

// OnTransferCompleted is called after every committed transfer.
type OnTransferCompleted interface {
	Plugin
	OnTransferCompleted(ctx context.Context, e *TransferCompleted) error
}

// OnFeesUpdated is called when fee rates change.
type OnFeesUpdated interface {
	Plugin
	OnFeesUpdated(ctx context.Context, e *FeesUpdated) error
}

// OnLifecycleChanged is called when the token moves to a new lifecycle state.
type OnLifecycleChanged interface {
	Plugin
	OnLifecycleChanged(ctx context.Context, e *LifecycleChanged) error
}
