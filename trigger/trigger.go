// Package trigger decides, on each transfer, which deferred side effects
// have become due. It keeps no clock of its own; callers pass the time in.
package trigger

import (
	"time"

	"github.com/xraph/elastic/types"
)

// DefaultFrequency is the interval used for every trigger unless configured.
const DefaultFrequency = 24 * time.Hour

// Kind names a trigger.
type Kind string

// Trigger kinds.
const (
	KindSwap            Kind = "swap"
	KindLiquidity       Kind = "liquidity"
	KindLiquidityRelief Kind = "liquidity_relief"
)

// Trigger is a frequency-gated switch. A zero Frequency fires on every
// evaluation while enabled.
type Trigger struct {
	Enabled   bool          `json:"enabled"`
	Frequency time.Duration `json:"frequency"`
	LastRun   time.Time     `json:"last_run"`
}

// Due reports whether the trigger may fire at now.
func (t Trigger) Due(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	if t.Frequency <= 0 {
		return true
	}
	return !now.Before(t.LastRun.Add(t.Frequency))
}

// Scheduler holds every automatic side effect the ledger can fire from an
// ordinary transfer.
type Scheduler struct {
	AutoRebase      bool    `json:"auto_rebase"`
	Swap            Trigger `json:"swap"`
	Liquidity       Trigger `json:"liquidity"`
	LiquidityRelief Trigger `json:"liquidity_relief"`
}

// DefaultScheduler enables auto-rebase, swap and liquidity triggers.
// Liquidity relief starts disabled.
func DefaultScheduler() Scheduler {
	return Scheduler{
		AutoRebase:      true,
		Swap:            Trigger{Enabled: true, Frequency: DefaultFrequency},
		Liquidity:       Trigger{Enabled: true, Frequency: DefaultFrequency},
		LiquidityRelief: Trigger{Enabled: false, Frequency: DefaultFrequency},
	}
}

// Get returns the trigger of kind k.
func (s Scheduler) Get(k Kind) Trigger {
	switch k {
	case KindSwap:
		return s.Swap
	case KindLiquidity:
		return s.Liquidity
	default:
		return s.LiquidityRelief
	}
}

// Set replaces the trigger of kind k.
func (s *Scheduler) Set(k Kind, t Trigger) {
	switch k {
	case KindSwap:
		s.Swap = t
	case KindLiquidity:
		s.Liquidity = t
	case KindLiquidityRelief:
		s.LiquidityRelief = t
	}
}

// Inputs is the ledger state a scheduler evaluation looks at.
type Inputs struct {
	Now              time.Time
	SwapCollected    types.Amount
	LiquidityBalance types.Amount
}

// Firing lists the triggers that fired in one evaluation.
type Firing struct {
	Swap            bool
	Liquidity       bool
	LiquidityRelief bool
}

// Any reports whether anything fired.
func (f Firing) Any() bool { return f.Swap || f.Liquidity || f.LiquidityRelief }

// Evaluate returns the triggers due under in and a scheduler whose LastRun
// is advanced for each of them. The receiver is not modified.
func (s Scheduler) Evaluate(in Inputs) (Scheduler, Firing) {
	var f Firing
	next := s

	if s.Swap.Due(in.Now) && !in.SwapCollected.IsZero() {
		f.Swap = true
		next.Swap.LastRun = in.Now
	}
	if s.Liquidity.Due(in.Now) && !in.LiquidityBalance.IsZero() {
		f.Liquidity = true
		next.Liquidity.LastRun = in.Now
	}
	if s.LiquidityRelief.Due(in.Now) {
		f.LiquidityRelief = true
		next.LiquidityRelief.LastRun = in.Now
	}
	return next, f
}
