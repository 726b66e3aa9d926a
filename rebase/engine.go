package rebase

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/elastic/shares"
)

// Result describes one applied rebase batch.
type Result struct {
	Applied     uint64
	Remaining   uint64
	EpochIndex  uint64
	EpochAt     time.Time
	TotalSupply uint256.Int
}

// Apply runs one bounded batch of pending epochs against tx.
//
// The circulating supply is compounded once per epoch, the shares-per-unit
// ratio is recomputed once for the batch, and the cursor moves forward by
// exactly the applied epochs so any fractional epoch carries over.
func (s Schedule) Apply(tx *shares.Tx, now time.Time) (Result, error) {
	st := tx.State()
	pending := s.Pending(st.LastEpochAt, now)
	if pending == 0 {
		return Result{}, ErrNoPendingRebases
	}

	applied := pending
	if applied > uint64(s.MaxBatch) {
		applied = uint64(s.MaxBatch)
	}

	var limit uint256.Int
	if _, underflow := limit.SubOverflow(&s.MaxSupply, &st.ExemptSupply); underflow {
		limit.Clear()
	}
	circ := st.Circulating()
	if circ.Lt(&limit) {
		next := s.Compound(&circ, applied, &limit)
		tx.SetCirculating(&next)
	}

	at := st.LastEpochAt.Add(time.Duration(applied) * s.EpochDuration)
	tx.SetEpoch(st.LastEpoch+applied, at)

	after := tx.State()
	return Result{
		Applied:     applied,
		Remaining:   pending - applied,
		EpochIndex:  after.LastEpoch,
		EpochAt:     at,
		TotalSupply: after.TotalSupply,
	}, nil
}
