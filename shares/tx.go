package shares

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Tx is a copy-on-write view over a Book. Mutations stay local to the Tx
// until Commit; a Tx that is dropped leaves the Book untouched.
type Tx struct {
	book       *Book
	state      State
	accounts   map[common.Address]Account
	allowances map[allowanceKey]uint256.Int
}

// Begin starts a transaction against the committed state.
func (b *Book) Begin() *Tx {
	return &Tx{
		book:       b,
		state:      b.state,
		accounts:   make(map[common.Address]Account),
		allowances: make(map[allowanceKey]uint256.Int),
	}
}

// State returns the working copy of the global state.
func (tx *Tx) State() State { return tx.state }

// Account returns the working copy of the account for addr.
func (tx *Tx) Account(addr common.Address) Account {
	if a, ok := tx.accounts[addr]; ok {
		return a
	}
	a, _ := tx.book.Account(addr)
	return a
}

// BalanceOf returns the working unit balance of addr.
func (tx *Tx) BalanceOf(addr common.Address) uint256.Int {
	a := tx.Account(addr)
	return unitsOf(&a, &tx.state)
}

// Debit removes units from addr. It fails with ErrInsufficientBalance when
// the account cannot cover the share equivalent of units.
func (tx *Tx) Debit(addr common.Address, units *uint256.Int) error {
	if units.IsZero() {
		return nil
	}
	a := tx.Account(addr)

	var shares uint256.Int
	if _, overflow := shares.MulOverflow(units, &tx.state.SharesPerUnit); overflow {
		return ErrInsufficientBalance
	}

	if a.RebaseExempt {
		if a.Pinned.Lt(units) {
			return ErrInsufficientBalance
		}
		a.Pinned.Sub(&a.Pinned, units)
		tx.state.ExemptSupply.Sub(&tx.state.ExemptSupply, units)
		tx.state.PoolShares.Add(&tx.state.PoolShares, &shares)
	} else {
		if a.Shares.Lt(&shares) {
			return ErrInsufficientBalance
		}
		a.Shares.Sub(&a.Shares, &shares)
	}

	tx.accounts[addr] = a
	return nil
}

// Credit adds units to addr, creating the account on first credit.
func (tx *Tx) Credit(addr common.Address, units *uint256.Int) error {
	if units.IsZero() {
		return nil
	}
	a := tx.Account(addr)

	var shares uint256.Int
	if _, overflow := shares.MulOverflow(units, &tx.state.SharesPerUnit); overflow {
		return ErrInvalidSupply
	}

	if a.RebaseExempt {
		if _, underflow := tx.state.PoolShares.SubOverflow(&tx.state.PoolShares, &shares); underflow {
			return ErrInvalidSupply
		}
		a.Pinned.Add(&a.Pinned, units)
		tx.state.ExemptSupply.Add(&tx.state.ExemptSupply, units)
	} else {
		a.Shares.Add(&a.Shares, &shares)
	}

	tx.accounts[addr] = a
	return nil
}

// Move debits from and credits to by the same number of units.
func (tx *Tx) Move(from, to common.Address, units *uint256.Int) error {
	if err := tx.Debit(from, units); err != nil {
		return err
	}
	return tx.Credit(to, units)
}

// SetFeeExempt flags addr as exempt from transfer fees.
func (tx *Tx) SetFeeExempt(addr common.Address, exempt bool) {
	a := tx.Account(addr)
	a.FeeExempt = exempt
	tx.accounts[addr] = a
}

// SetRebaseExempt pins or unpins the unit balance of addr at the current
// ratio. Shares left over from flooring stay in the pool.
func (tx *Tx) SetRebaseExempt(addr common.Address, exempt bool) error {
	a := tx.Account(addr)
	if a.RebaseExempt == exempt {
		return nil
	}

	if exempt {
		units := unitsOf(&a, &tx.state)
		var shares uint256.Int
		shares.Mul(&units, &tx.state.SharesPerUnit)
		if _, underflow := tx.state.PoolShares.SubOverflow(&tx.state.PoolShares, &shares); underflow {
			return ErrInvalidSupply
		}
		tx.state.ExemptSupply.Add(&tx.state.ExemptSupply, &units)
		a.Pinned = units
		a.Shares.Clear()
	} else {
		var shares uint256.Int
		if _, overflow := shares.MulOverflow(&a.Pinned, &tx.state.SharesPerUnit); overflow {
			return ErrInvalidSupply
		}
		tx.state.PoolShares.Add(&tx.state.PoolShares, &shares)
		tx.state.ExemptSupply.Sub(&tx.state.ExemptSupply, &a.Pinned)
		a.Shares = shares
		a.Pinned.Clear()
	}

	a.RebaseExempt = exempt
	tx.accounts[addr] = a
	return nil
}

// Allowance returns the working allowance of spender over owner's units.
func (tx *Tx) Allowance(owner, spender common.Address) uint256.Int {
	if v, ok := tx.allowances[allowanceKey{owner, spender}]; ok {
		return v
	}
	return tx.book.Allowance(owner, spender)
}

// SetAllowance replaces the allowance of spender over owner's units.
func (tx *Tx) SetAllowance(owner, spender common.Address, units *uint256.Int) {
	tx.allowances[allowanceKey{owner, spender}] = *units
}

// SpendAllowance decrements the allowance by units. An allowance of
// MaxUint256 is treated as unlimited and never decremented.
func (tx *Tx) SpendAllowance(owner, spender common.Address, units *uint256.Int) error {
	current := tx.Allowance(owner, spender)
	var unlimited uint256.Int
	unlimited.SetAllOne()
	if current.Eq(&unlimited) {
		return nil
	}
	if current.Lt(units) {
		return ErrInsufficientAllowance
	}
	current.Sub(&current, units)
	tx.allowances[allowanceKey{owner, spender}] = current
	return nil
}

// SetCirculating replaces the circulating supply and recomputes
// SharesPerUnit from the pool. A zero circulating supply keeps the old ratio.
func (tx *Tx) SetCirculating(circulating *uint256.Int) {
	tx.state.TotalSupply.Add(circulating, &tx.state.ExemptSupply)
	if !circulating.IsZero() {
		tx.state.SharesPerUnit.Div(&tx.state.PoolShares, circulating)
	}
}

// SetEpoch moves the rebase cursor.
func (tx *Tx) SetEpoch(index uint64, at time.Time) {
	tx.state.LastEpoch = index
	tx.state.LastEpochAt = at
}

// Changes returns the accounts and allowances touched by the Tx.
func (tx *Tx) Changes() ([]Account, []Allowance) {
	accts := make([]Account, 0, len(tx.accounts))
	for _, a := range tx.accounts {
		accts = append(accts, a)
	}
	sortAccounts(accts)

	als := make([]Allowance, 0, len(tx.allowances))
	for k, v := range tx.allowances {
		als = append(als, Allowance{Owner: k.owner, Spender: k.spender, Units: v})
	}
	sortAllowances(als)
	return accts, als
}

// Commit publishes the Tx into its Book.
func (tx *Tx) Commit() {
	b := tx.book
	b.state = tx.state
	for addr, a := range tx.accounts {
		b.accounts[addr] = a
	}
	for k, v := range tx.allowances {
		if v.IsZero() {
			delete(b.allowances, k)
			continue
		}
		b.allowances[k] = v
	}
}
