package elastic

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/shares"
	"github.com/xraph/elastic/trigger"
)

// errUnchanged tells update that the mutation was a no-op.
var errUnchanged = errors.New("unchanged")

type mutation func(tx *shares.Tx, s *journal.Settings, ob *outbox) error

// update runs an admin mutation under the lock and journals it.
func (l *Ledger) update(ctx context.Context, op string, fn mutation) error {
	l.mu.Lock()
	ob, err := l.updateLocked(ctx, op, fn)
	l.mu.Unlock()
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	l.logger.Info("elastic settings updated", "op", op)
	l.dispatch(ctx, ob)
	return nil
}

func (l *Ledger) updateLocked(ctx context.Context, op string, fn mutation) (*outbox, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if !l.isAdmin(ctx) {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, op)
	}

	settings := cloneSettings(l.settings)
	tx := l.book.Begin()
	ob := &outbox{}
	if err := fn(tx, &settings, ob); err != nil {
		return nil, err
	}
	if err := l.persist(ctx, journal.KindAdmin, op, tx, settings); err != nil {
		return nil, err
	}
	return ob, nil
}

// ──────────────────────────────────────────────────
// Fees
// ──────────────────────────────────────────────────

// SetFees replaces one side's rates. Totals above the side's cap are
// rejected with ErrFeesTooHigh and the previous rates stay in force.
func (l *Ledger) SetFees(ctx context.Context, side fee.Side, rates fee.Rates) error {
	return l.update(ctx, "set_fees", func(_ *shares.Tx, s *journal.Settings, ob *outbox) error {
		next, err := s.Fees.With(side, rates)
		if err != nil {
			return err
		}
		ob.feesUpdated = &plugin.FeesUpdated{
			Side:     side,
			Previous: s.Fees.For(side),
			Current:  rates,
			At:       l.clock.Now(),
		}
		s.Fees = next
		return nil
	})
}

// SetFeeDestinations replaces the fee destinations. Every destination
// becomes fee-exempt.
func (l *Ledger) SetFeeDestinations(ctx context.Context, d fee.Destinations) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return l.update(ctx, "set_fee_destinations", func(tx *shares.Tx, s *journal.Settings, _ *outbox) error {
		for _, addr := range d.All() {
			tx.SetFeeExempt(addr, true)
		}
		s.Destinations = d
		return nil
	})
}

// SetPair sets the liquidity pool address used to tell buys from sells.
func (l *Ledger) SetPair(ctx context.Context, pair common.Address) error {
	if pair == (common.Address{}) {
		return ErrInvalidAddress
	}
	return l.update(ctx, "set_pair", func(_ *shares.Tx, s *journal.Settings, _ *outbox) error {
		s.Pair = pair
		return nil
	})
}

// SetFeeExempt toggles fee exemption for addr.
func (l *Ledger) SetFeeExempt(ctx context.Context, addr common.Address, exempt bool) error {
	if addr == (common.Address{}) {
		return ErrInvalidAddress
	}
	return l.update(ctx, "set_fee_exempt", func(tx *shares.Tx, _ *journal.Settings, _ *outbox) error {
		tx.SetFeeExempt(addr, exempt)
		return nil
	})
}

// SetRebaseExempt toggles rebase exemption for addr. Its balance is kept
// at the current value across the switch.
func (l *Ledger) SetRebaseExempt(ctx context.Context, addr common.Address, exempt bool) error {
	if addr == (common.Address{}) {
		return ErrInvalidAddress
	}
	return l.update(ctx, "set_rebase_exempt", func(tx *shares.Tx, _ *journal.Settings, _ *outbox) error {
		return tx.SetRebaseExempt(addr, exempt)
	})
}

// TransferOwnership hands the owner role to next.
func (l *Ledger) TransferOwnership(ctx context.Context, next common.Address) error {
	if next == (common.Address{}) {
		return ErrInvalidAddress
	}
	return l.update(ctx, "transfer_ownership", func(tx *shares.Tx, s *journal.Settings, _ *outbox) error {
		s.Owner = next
		tx.SetFeeExempt(next, true)
		return nil
	})
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// OpenTrade lifts the pre-launch restriction. It is a no-op afterwards.
func (l *Ledger) OpenTrade(ctx context.Context) error {
	return l.update(ctx, "open_trade", func(_ *shares.Tx, s *journal.Settings, ob *outbox) error {
		next := lifecycle.OpenTrade(s.Lifecycle)
		if next == s.Lifecycle {
			return errUnchanged
		}
		ob.lifecycle = &plugin.LifecycleChanged{From: s.Lifecycle, To: next, At: l.clock.Now()}
		s.Lifecycle = next
		return nil
	})
}

// LaunchToken activates fees, rebasing and auto-triggers. Rebase epochs
// count from this moment.
func (l *Ledger) LaunchToken(ctx context.Context) error {
	return l.update(ctx, "launch_token", func(tx *shares.Tx, s *journal.Settings, ob *outbox) error {
		next, err := lifecycle.Launch(s.Lifecycle)
		if err != nil {
			return err
		}
		now := l.clock.Now()
		tx.SetEpoch(tx.State().LastEpoch, now)
		ob.lifecycle = &plugin.LifecycleChanged{From: s.Lifecycle, To: next, At: now}
		s.Lifecycle = next
		return nil
	})
}

// AllowPreLaunchTransfer adds or removes addr from the routers allowed to
// move tokens before trading opens.
func (l *Ledger) AllowPreLaunchTransfer(ctx context.Context, addr common.Address, allowed bool) error {
	if addr == (common.Address{}) {
		return ErrInvalidAddress
	}
	return l.update(ctx, "allow_pre_launch_transfer", func(_ *shares.Tx, s *journal.Settings, _ *outbox) error {
		i := slices.Index(s.PreLaunchAllowed, addr)
		switch {
		case allowed && i < 0:
			s.PreLaunchAllowed = append(s.PreLaunchAllowed, addr)
		case !allowed && i >= 0:
			s.PreLaunchAllowed = slices.Delete(s.PreLaunchAllowed, i, i+1)
		default:
			return errUnchanged
		}
		return nil
	})
}

// ──────────────────────────────────────────────────
// Auto-triggers
// ──────────────────────────────────────────────────

// SetAutoRebase toggles the rebase batch applied by transfers.
func (l *Ledger) SetAutoRebase(ctx context.Context, enabled bool) error {
	return l.update(ctx, "set_auto_rebase", func(_ *shares.Tx, s *journal.Settings, _ *outbox) error {
		s.Scheduler.AutoRebase = enabled
		return nil
	})
}

// SetAutoSwap toggles the swap trigger.
func (l *Ledger) SetAutoSwap(ctx context.Context, enabled bool) error {
	return l.setTriggerEnabled(ctx, trigger.KindSwap, enabled)
}

// SetAutoLiquidity toggles the auto-liquidity trigger.
func (l *Ledger) SetAutoLiquidity(ctx context.Context, enabled bool) error {
	return l.setTriggerEnabled(ctx, trigger.KindLiquidity, enabled)
}

// SetAutoLiquidityRelief toggles the liquidity-relief trigger.
func (l *Ledger) SetAutoLiquidityRelief(ctx context.Context, enabled bool) error {
	return l.setTriggerEnabled(ctx, trigger.KindLiquidityRelief, enabled)
}

// SetSwapFrequency sets the minimum interval between swap triggers.
func (l *Ledger) SetSwapFrequency(ctx context.Context, d time.Duration) error {
	return l.setTriggerFrequency(ctx, trigger.KindSwap, d)
}

// SetLiquidityFrequency sets the minimum interval between auto-liquidity triggers.
func (l *Ledger) SetLiquidityFrequency(ctx context.Context, d time.Duration) error {
	return l.setTriggerFrequency(ctx, trigger.KindLiquidity, d)
}

// SetLiquidityReliefFrequency sets the minimum interval between stabilizer triggers.
func (l *Ledger) SetLiquidityReliefFrequency(ctx context.Context, d time.Duration) error {
	return l.setTriggerFrequency(ctx, trigger.KindLiquidityRelief, d)
}

func (l *Ledger) setTriggerEnabled(ctx context.Context, k trigger.Kind, enabled bool) error {
	return l.update(ctx, "set_auto_"+string(k), func(_ *shares.Tx, s *journal.Settings, _ *outbox) error {
		t := s.Scheduler.Get(k)
		t.Enabled = enabled
		s.Scheduler.Set(k, t)
		return nil
	})
}

func (l *Ledger) setTriggerFrequency(ctx context.Context, k trigger.Kind, d time.Duration) error {
	if d < 0 {
		return ValidationError{Field: string(k) + "_frequency", Message: "must not be negative"}
	}
	return l.update(ctx, "set_"+string(k)+"_frequency", func(_ *shares.Tx, s *journal.Settings, _ *outbox) error {
		t := s.Scheduler.Get(k)
		t.Frequency = d
		s.Scheduler.Set(k, t)
		return nil
	})
}
