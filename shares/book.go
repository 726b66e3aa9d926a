// Package shares implements the fixed-point share book behind token balances.
//
// Holders own shares; the visible unit balance of a holder is its share count
// divided by the global shares-per-unit ratio, rounded down. A rebase changes
// only the ratio, so every non-exempt balance grows in one step without
// touching individual accounts.
//
// Rebase-exempt accounts hold a pinned unit balance instead of shares. Their
// units are tracked in State.ExemptSupply and are excluded from supply growth.
package shares

import (
	"bytes"
	"errors"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Errors returned by share book operations.
var (
	ErrInsufficientBalance   = errors.New("elastic: insufficient balance")
	ErrInsufficientAllowance = errors.New("elastic: insufficient allowance")
	ErrInvalidSupply         = errors.New("elastic: invalid supply")
)

// State is the global ledger state shared by every account.
type State struct {
	// TotalShares is fixed at genesis.
	TotalShares uint256.Int
	// PoolShares backs the circulating (non-exempt) supply.
	PoolShares uint256.Int
	// TotalSupply is the circulating supply plus ExemptSupply.
	TotalSupply uint256.Int
	// ExemptSupply is the sum of pinned balances of rebase-exempt accounts.
	ExemptSupply uint256.Int
	// SharesPerUnit is PoolShares / circulating supply, refreshed on rebase.
	SharesPerUnit uint256.Int

	LastEpoch   uint64
	LastEpochAt time.Time
}

// Circulating returns the supply that participates in rebases.
func (s *State) Circulating() uint256.Int {
	var c uint256.Int
	c.Sub(&s.TotalSupply, &s.ExemptSupply)
	return c
}

// Account is a single holder position.
type Account struct {
	Address      common.Address
	Shares       uint256.Int
	Pinned       uint256.Int
	FeeExempt    bool
	RebaseExempt bool
}

// Allowance is the number of units Spender may move out of Owner's balance.
type Allowance struct {
	Owner   common.Address
	Spender common.Address
	Units   uint256.Int
}

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// Book holds the committed state. It is not safe for concurrent use;
// callers serialize access.
type Book struct {
	state      State
	accounts   map[common.Address]Account
	allowances map[allowanceKey]uint256.Int
}

// TotalSharesFor returns the largest multiple of supply that fits in 256 bits.
func TotalSharesFor(supply *uint256.Int) uint256.Int {
	var maxInt, rem, total uint256.Int
	maxInt.SetAllOne()
	rem.Mod(&maxInt, supply)
	total.Sub(&maxInt, &rem)
	return total
}

// Genesis creates a book whose entire supply is held by holder.
func Genesis(supply *uint256.Int, holder common.Address, at time.Time) (*Book, error) {
	if supply == nil || supply.IsZero() {
		return nil, ErrInvalidSupply
	}

	total := TotalSharesFor(supply)
	b := &Book{
		accounts:   make(map[common.Address]Account),
		allowances: make(map[allowanceKey]uint256.Int),
	}
	b.state.TotalShares = total
	b.state.PoolShares = total
	b.state.TotalSupply.Set(supply)
	b.state.SharesPerUnit.Div(&total, supply)
	b.state.LastEpochAt = at

	b.accounts[holder] = Account{Address: holder, Shares: total}
	return b, nil
}

// Restore rebuilds a book from persisted state.
func Restore(state State, accounts []Account, allowances []Allowance) *Book {
	b := &Book{
		state:      state,
		accounts:   make(map[common.Address]Account, len(accounts)),
		allowances: make(map[allowanceKey]uint256.Int, len(allowances)),
	}
	for _, a := range accounts {
		b.accounts[a.Address] = a
	}
	for _, al := range allowances {
		b.allowances[allowanceKey{al.Owner, al.Spender}] = al.Units
	}
	return b
}

// State returns a copy of the global state.
func (b *Book) State() State { return b.state }

// Account returns the account for addr and whether it has ever been touched.
func (b *Book) Account(addr common.Address) (Account, bool) {
	a, ok := b.accounts[addr]
	if !ok {
		a.Address = addr
	}
	return a, ok
}

// BalanceOf returns the unit balance of addr.
func (b *Book) BalanceOf(addr common.Address) uint256.Int {
	a, _ := b.Account(addr)
	return unitsOf(&a, &b.state)
}

// Allowance returns the units spender may move from owner.
func (b *Book) Allowance(owner, spender common.Address) uint256.Int {
	return b.allowances[allowanceKey{owner, spender}]
}

// Accounts returns every known account ordered by address.
func (b *Book) Accounts() []Account {
	out := make([]Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		out = append(out, a)
	}
	sortAccounts(out)
	return out
}

// Allowances returns every non-zero allowance ordered by owner then spender.
func (b *Book) Allowances() []Allowance {
	out := make([]Allowance, 0, len(b.allowances))
	for k, v := range b.allowances {
		if v.IsZero() {
			continue
		}
		out = append(out, Allowance{Owner: k.owner, Spender: k.spender, Units: v})
	}
	sortAllowances(out)
	return out
}

func unitsOf(a *Account, s *State) uint256.Int {
	if a.RebaseExempt {
		return a.Pinned
	}
	var units uint256.Int
	if !s.SharesPerUnit.IsZero() {
		units.Div(&a.Shares, &s.SharesPerUnit)
	}
	return units
}

func sortAccounts(accts []Account) {
	sort.Slice(accts, func(i, j int) bool {
		return bytes.Compare(accts[i].Address[:], accts[j].Address[:]) < 0
	})
}

func sortAllowances(als []Allowance) {
	sort.Slice(als, func(i, j int) bool {
		if c := bytes.Compare(als[i].Owner[:], als[j].Owner[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(als[i].Spender[:], als[j].Spender[:]) < 0
	})
}
