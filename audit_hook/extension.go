// Package audithook bridges elastic ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import an
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnTransferCompleted  = (*Extension)(nil)
	_ plugin.OnRebaseApplied      = (*Extension)(nil)
	_ plugin.OnFeesCollected      = (*Extension)(nil)
	_ plugin.OnAutoLiquidityDue   = (*Extension)(nil)
	_ plugin.OnLiquidityReliefDue = (*Extension)(nil)
	_ plugin.OnFeesUpdated        = (*Extension)(nil)
	_ plugin.OnLifecycleChanged   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a backend-neutral audit record.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder  Recorder
	enabled   map[string]bool // nil = all enabled
	threshold types.Amount
	logger    *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Trading hooks
// ──────────────────────────────────────────────────

// OnTransferCompleted implements plugin.OnTransferCompleted.
func (e *Extension) OnTransferCompleted(ctx context.Context, t *plugin.TransferCompleted) error {
	if t.Amount.LessThan(e.threshold) {
		return nil
	}

	action := ActionTransferPlain
	switch t.Kind {
	case fee.KindBuy:
		action = ActionTransferBuy
	case fee.KindSell:
		action = ActionTransferSell
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceTransfer, t.TransferID.String(), CategoryTrading,
		"from", t.From.Hex(),
		"to", t.To.Hex(),
		"amount", t.Amount.String(),
		"fee", t.Fee.String(),
		"net", t.Net.String(),
	)
}

// ──────────────────────────────────────────────────
// Supply hooks
// ──────────────────────────────────────────────────

// OnRebaseApplied implements plugin.OnRebaseApplied.
func (e *Extension) OnRebaseApplied(ctx context.Context, r *plugin.RebaseApplied) error {
	outcome := OutcomeSuccess
	if r.Remaining > 0 {
		outcome = OutcomePartial
	}
	return e.record(ctx, ActionRebaseApplied, SeverityInfo, outcome,
		ResourceRebase, r.RebaseID.String(), CategorySupply,
		"applied", r.Applied,
		"remaining", r.Remaining,
		"epoch", r.EpochIndex,
		"total_supply", r.TotalSupply.String(),
		"auto", r.Auto,
	)
}

// ──────────────────────────────────────────────────
// Trigger hooks
// ──────────────────────────────────────────────────

// OnFeesCollected implements plugin.OnFeesCollected.
func (e *Extension) OnFeesCollected(ctx context.Context, f *plugin.FeesCollected) error {
	return e.record(ctx, ActionFeesCollected, SeverityInfo, OutcomeSuccess,
		ResourceSwap, f.SwapID.String(), CategoryTreasury,
		"collector", f.Collector.Hex(),
		"treasury", f.Treasury.String(),
		"liquidity_relief", f.LiquidityRelief.String(),
		"insurance", f.Insurance.String(),
	)
}

// OnAutoLiquidityDue implements plugin.OnAutoLiquidityDue.
func (e *Extension) OnAutoLiquidityDue(ctx context.Context, l *plugin.AutoLiquidityDue) error {
	return e.record(ctx, ActionLiquidityDue, SeverityInfo, OutcomeSuccess,
		ResourceLiquidity, l.Collector.Hex(), CategoryTreasury,
		"balance", l.Balance.String(),
		"pair", l.Pair.Hex(),
	)
}

// OnLiquidityReliefDue implements plugin.OnLiquidityReliefDue.
func (e *Extension) OnLiquidityReliefDue(ctx context.Context, l *plugin.LiquidityReliefDue) error {
	return e.record(ctx, ActionLiquidityReliefDue, SeverityInfo, OutcomeSuccess,
		ResourceLiquidity, l.Stabilizer.Hex(), CategoryTreasury,
	)
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnFeesUpdated implements plugin.OnFeesUpdated.
func (e *Extension) OnFeesUpdated(ctx context.Context, f *plugin.FeesUpdated) error {
	severity := SeverityInfo
	if f.Current.Total() > f.Previous.Total() {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionFeesUpdated, severity, OutcomeSuccess,
		ResourceFees, f.Side.String(), CategoryGovernance,
		"previous_bps", f.Previous.Total(),
		"current_bps", f.Current.Total(),
	)
}

// OnLifecycleChanged implements plugin.OnLifecycleChanged.
func (e *Extension) OnLifecycleChanged(ctx context.Context, l *plugin.LifecycleChanged) error {
	return e.record(ctx, ActionLifecycleChanged, SeverityWarning, OutcomeSuccess,
		ResourceLifecycle, l.To.String(), CategoryGovernance,
		"from", l.From.String(),
		"to", l.To.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
