package journal

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/elastic/shares"
)

// Replayed is the ledger reconstructed from a journal.
type Replayed struct {
	Book     *shares.Book
	Settings Settings
	Seq      uint64
}

// Replay folds entries, which must be in ascending Seq order, into a book.
// It returns ErrEntryNotFound when entries is empty.
func Replay(entries []*Entry) (*Replayed, error) {
	if len(entries) == 0 {
		return nil, ErrEntryNotFound
	}

	type allowanceKey struct{ owner, spender common.Address }
	accounts := make(map[common.Address]shares.Account)
	allowances := make(map[allowanceKey]shares.Allowance)

	var (
		state shares.State
		last  *Entry
	)
	for _, e := range entries {
		if last != nil && e.Seq <= last.Seq {
			return nil, fmt.Errorf("%w: seq %d after %d", ErrCorruptEntry, e.Seq, last.Seq)
		}
		s, err := e.State.Decode()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		state = s
		for _, a := range e.Accounts {
			acct, err := a.Decode()
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
			}
			accounts[acct.Address] = acct
		}
		for _, a := range e.Allowances {
			al, err := a.Decode()
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
			}
			k := allowanceKey{al.Owner, al.Spender}
			if al.Units.IsZero() {
				delete(allowances, k)
				continue
			}
			allowances[k] = al
		}
		last = e
	}

	accts := make([]shares.Account, 0, len(accounts))
	for _, a := range accounts {
		accts = append(accts, a)
	}
	als := make([]shares.Allowance, 0, len(allowances))
	for _, a := range allowances {
		als = append(als, a)
	}

	return &Replayed{
		Book:     shares.Restore(state, accts, als),
		Settings: last.Settings,
		Seq:      last.Seq,
	}, nil
}
