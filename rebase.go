package elastic

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/rebase"
	"github.com/xraph/elastic/types"
)

// Rebase applies one bounded batch of pending epochs. Callers repeat it
// until PendingEpochs reports zero. Epochs only accrue after launch.
func (l *Ledger) Rebase(ctx context.Context) (rebase.Result, error) {
	l.mu.Lock()
	res, ob, err := l.rebaseLocked(ctx)
	l.mu.Unlock()
	if err != nil {
		return rebase.Result{}, err
	}

	l.dispatch(ctx, ob)
	return res, nil
}

func (l *Ledger) rebaseLocked(ctx context.Context) (rebase.Result, *outbox, error) {
	if err := l.ready(); err != nil {
		return rebase.Result{}, nil, err
	}
	if l.access == RebaseAccessAdmin && !l.isAdmin(ctx) {
		return rebase.Result{}, nil, fmt.Errorf("%w: rebase", ErrUnauthorized)
	}
	if !l.settings.Lifecycle.FeesActive() {
		return rebase.Result{}, nil, ErrNoPendingRebases
	}

	now := l.clock.Now()
	tx := l.book.Begin()
	res, err := l.schedule.Apply(tx, now)
	if err != nil {
		return rebase.Result{}, nil, err
	}

	rebaseID := id.NewRebaseID()
	if err := l.persist(ctx, journal.KindRebase, rebaseID.String(), tx, cloneSettings(l.settings)); err != nil {
		return rebase.Result{}, nil, err
	}
	return res, &outbox{rebase: rebaseEvent(rebaseID, res, false, now)}, nil
}

// PendingEpochs returns the number of whole epochs waiting to be applied.
func (l *Ledger) PendingEpochs() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil || !l.settings.Lifecycle.FeesActive() {
		return 0
	}
	st := l.book.State()
	return l.schedule.Pending(st.LastEpochAt, l.clock.Now())
}

// Schedule returns the rebase schedule in force.
func (l *Ledger) Schedule() rebase.Schedule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.schedule
}

func rebaseEvent(rebaseID id.RebaseID, res rebase.Result, auto bool, at time.Time) *plugin.RebaseApplied {
	return &plugin.RebaseApplied{
		RebaseID:    rebaseID,
		Applied:     res.Applied,
		Remaining:   res.Remaining,
		EpochIndex:  res.EpochIndex,
		TotalSupply: types.FromUint256(&res.TotalSupply),
		Auto:        auto,
		At:          at,
	}
}
