// Package observability provides a metrics extension for the elastic ledger
// that records transfer, fee and rebase activity via a MetricFactory.
// PrometheusFactory backs it with a prometheus.Registerer.
package observability

import (
	"context"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnTransferCompleted  = (*MetricsExtension)(nil)
	_ plugin.OnRebaseApplied      = (*MetricsExtension)(nil)
	_ plugin.OnFeesCollected      = (*MetricsExtension)(nil)
	_ plugin.OnAutoLiquidityDue   = (*MetricsExtension)(nil)
	_ plugin.OnLiquidityReliefDue = (*MetricsExtension)(nil)
	_ plugin.OnFeesUpdated        = (*MetricsExtension)(nil)
	_ plugin.OnLifecycleChanged   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// Gauge interface for metric gauges.
type Gauge interface {
	Set(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
	Gauge(name string) Gauge
}

// MetricsExtension records token activity.
// Register it as a ledger plugin to track transfers, fees and rebases.
type MetricsExtension struct {
	factory MetricFactory

	// Transfer metrics
	TransfersPlain Counter
	TransfersBuy   Counter
	TransfersSell  Counter
	TransferVolume Histogram
	FeesCharged    Histogram

	// Rebase metrics
	RebasesApplied  Counter
	RebasesAuto     Counter
	EpochsApplied   Counter
	EpochIndex      Gauge
	TotalSupply     Gauge
	EpochsRemaining Gauge

	// Trigger metrics
	SwapsTriggered           Counter
	SwapAmount               Histogram
	LiquidityTriggered       Counter
	LiquidityReliefTriggered Counter

	// Admin metrics
	FeeUpdates       Counter
	LifecycleChanges Counter
	LifecycleState   Gauge
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// NewPrometheusFactory supplies one backed by a Prometheus registry.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Transfer metrics
		TransfersPlain: factory.Counter("elastic.transfer.plain"),
		TransfersBuy:   factory.Counter("elastic.transfer.buy"),
		TransfersSell:  factory.Counter("elastic.transfer.sell"),
		TransferVolume: factory.Histogram("elastic.transfer.volume_tokens"),
		FeesCharged:    factory.Histogram("elastic.transfer.fee_tokens"),

		// Rebase metrics
		RebasesApplied:  factory.Counter("elastic.rebase.applied"),
		RebasesAuto:     factory.Counter("elastic.rebase.auto"),
		EpochsApplied:   factory.Counter("elastic.rebase.epochs"),
		EpochIndex:      factory.Gauge("elastic.rebase.epoch_index"),
		TotalSupply:     factory.Gauge("elastic.supply.total_tokens"),
		EpochsRemaining: factory.Gauge("elastic.rebase.epochs_remaining"),

		// Trigger metrics
		SwapsTriggered:           factory.Counter("elastic.trigger.swap"),
		SwapAmount:               factory.Histogram("elastic.trigger.swap_tokens"),
		LiquidityTriggered:       factory.Counter("elastic.trigger.liquidity"),
		LiquidityReliefTriggered: factory.Counter("elastic.trigger.liquidity_relief"),

		// Admin metrics
		FeeUpdates:       factory.Counter("elastic.admin.fee_updates"),
		LifecycleChanges: factory.Counter("elastic.admin.lifecycle_changes"),
		LifecycleState:   factory.Gauge("elastic.lifecycle.state"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// OnTransferCompleted implements plugin.OnTransferCompleted.
func (m *MetricsExtension) OnTransferCompleted(_ context.Context, e *plugin.TransferCompleted) error {
	switch e.Kind {
	case fee.KindBuy:
		m.TransfersBuy.Inc()
	case fee.KindSell:
		m.TransfersSell.Inc()
	default:
		m.TransfersPlain.Inc()
	}
	m.TransferVolume.Observe(tokens(e.Amount))
	if !e.Fee.IsZero() {
		m.FeesCharged.Observe(tokens(e.Fee))
	}
	return nil
}

// OnRebaseApplied implements plugin.OnRebaseApplied.
func (m *MetricsExtension) OnRebaseApplied(_ context.Context, e *plugin.RebaseApplied) error {
	m.RebasesApplied.Inc()
	if e.Auto {
		m.RebasesAuto.Inc()
	}
	m.EpochsApplied.Add(float64(e.Applied))
	m.EpochIndex.Set(float64(e.EpochIndex))
	m.EpochsRemaining.Set(float64(e.Remaining))
	m.TotalSupply.Set(tokens(e.TotalSupply))
	return nil
}

// OnFeesCollected implements plugin.OnFeesCollected.
func (m *MetricsExtension) OnFeesCollected(_ context.Context, e *plugin.FeesCollected) error {
	m.SwapsTriggered.Inc()
	m.SwapAmount.Observe(tokens(e.Total()))
	return nil
}

// OnAutoLiquidityDue implements plugin.OnAutoLiquidityDue.
func (m *MetricsExtension) OnAutoLiquidityDue(_ context.Context, _ *plugin.AutoLiquidityDue) error {
	m.LiquidityTriggered.Inc()
	return nil
}

// OnLiquidityReliefDue implements plugin.OnLiquidityReliefDue.
func (m *MetricsExtension) OnLiquidityReliefDue(_ context.Context, _ *plugin.LiquidityReliefDue) error {
	m.LiquidityReliefTriggered.Inc()
	return nil
}

// OnFeesUpdated implements plugin.OnFeesUpdated.
func (m *MetricsExtension) OnFeesUpdated(_ context.Context, _ *plugin.FeesUpdated) error {
	m.FeeUpdates.Inc()
	return nil
}

// OnLifecycleChanged implements plugin.OnLifecycleChanged.
func (m *MetricsExtension) OnLifecycleChanged(_ context.Context, e *plugin.LifecycleChanged) error {
	m.LifecycleChanges.Inc()
	m.LifecycleState.Set(float64(e.To))
	return nil
}

func tokens(a types.Amount) float64 {
	return a.Decimal().InexactFloat64()
}
