package elastic

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/shares"
	"github.com/xraph/elastic/trigger"
	"github.com/xraph/elastic/types"
)

// Holder is a read-only view of one account.
type Holder struct {
	Address      common.Address `json:"address"`
	Balance      types.Amount   `json:"balance"`
	Shares       uint256.Int    `json:"-"`
	FeeExempt    bool           `json:"fee_exempt"`
	RebaseExempt bool           `json:"rebase_exempt"`
}

// BalanceOf returns the unit balance of addr.
func (l *Ledger) BalanceOf(addr common.Address) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil {
		return types.Amount{}
	}
	bal := l.book.BalanceOf(addr)
	return types.FromUint256(&bal)
}

// SharesOf returns the share count of addr. Rebase-exempt accounts hold
// no shares.
func (l *Ledger) SharesOf(addr common.Address) uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil {
		return uint256.Int{}
	}
	a, _ := l.book.Account(addr)
	return a.Shares
}

// TotalSupply returns the total unit supply, including burned units.
func (l *Ledger) TotalSupply() types.Amount {
	st := l.State()
	return types.FromUint256(&st.TotalSupply)
}

// State returns the global share state.
func (l *Ledger) State() shares.State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil {
		return shares.State{}
	}
	return l.book.State()
}

// Holders returns every known account, ordered by address.
func (l *Ledger) Holders() []Holder {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil {
		return nil
	}
	accts := l.book.Accounts()
	out := make([]Holder, len(accts))
	for i, a := range accts {
		bal := l.book.BalanceOf(a.Address)
		out[i] = Holder{
			Address:      a.Address,
			Balance:      types.FromUint256(&bal),
			Shares:       a.Shares,
			FeeExempt:    a.FeeExempt,
			RebaseExempt: a.RebaseExempt,
		}
	}
	return out
}

// Allowance returns the units spender may still move out of owner.
func (l *Ledger) Allowance(owner, spender common.Address) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil {
		return types.Amount{}
	}
	v := l.book.Allowance(owner, spender)
	return types.FromUint256(&v)
}

// IsFeeExempt reports whether addr is excluded from fees.
func (l *Ledger) IsFeeExempt(addr common.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil {
		return false
	}
	a, _ := l.book.Account(addr)
	return a.FeeExempt
}

// IsRebaseExempt reports whether addr is excluded from supply growth.
func (l *Ledger) IsRebaseExempt(addr common.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.book == nil {
		return false
	}
	a, _ := l.book.Account(addr)
	return a.RebaseExempt
}

// Lifecycle returns the launch stage.
func (l *Ledger) Lifecycle() lifecycle.State { return l.Settings().Lifecycle }

// Fees returns the fee schedule.
func (l *Ledger) Fees() fee.Schedule { return l.Settings().Fees }

// Destinations returns the fee destinations.
func (l *Ledger) Destinations() fee.Destinations { return l.Settings().Destinations }

// Pair returns the configured liquidity pool address.
func (l *Ledger) Pair() common.Address { return l.Settings().Pair }

// Owner returns the admin account.
func (l *Ledger) Owner() common.Address { return l.Settings().Owner }

// Scheduler returns the auto-trigger settings.
func (l *Ledger) Scheduler() trigger.Scheduler { return l.Settings().Scheduler }

// Tally returns the swap collector composition not yet handed to a swap.
func (l *Ledger) Tally() fee.Tally { return l.Settings().Tally }

// Settings returns a copy of every runtime setting.
func (l *Ledger) Settings() journal.Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneSettings(l.settings)
}

// Config returns the genesis configuration.
func (l *Ledger) Config() Config { return l.config }

// JournalSeq returns the sequence number of the last committed entry.
func (l *Ledger) JournalSeq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// Journal lists committed entries from the store.
func (l *Ledger) Journal(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	return l.store.ListEntries(ctx, opts)
}
