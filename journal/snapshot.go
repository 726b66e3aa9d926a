package journal

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/xraph/elastic/shares"
)

// FromState encodes a share state.
func FromState(s shares.State) State {
	return State{
		TotalShares:   s.TotalShares.Dec(),
		PoolShares:    s.PoolShares.Dec(),
		TotalSupply:   s.TotalSupply.Dec(),
		ExemptSupply:  s.ExemptSupply.Dec(),
		SharesPerUnit: s.SharesPerUnit.Dec(),
		LastEpoch:     s.LastEpoch,
		LastEpochAt:   s.LastEpochAt,
	}
}

// Decode returns the share state.
func (s State) Decode() (shares.State, error) {
	var out shares.State
	fields := []struct {
		name string
		src  string
		dst  *uint256.Int
	}{
		{"total_shares", s.TotalShares, &out.TotalShares},
		{"pool_shares", s.PoolShares, &out.PoolShares},
		{"total_supply", s.TotalSupply, &out.TotalSupply},
		{"exempt_supply", s.ExemptSupply, &out.ExemptSupply},
		{"shares_per_unit", s.SharesPerUnit, &out.SharesPerUnit},
	}
	for _, f := range fields {
		if err := decodeInt(f.dst, f.src); err != nil {
			return shares.State{}, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, f.name, err)
		}
	}
	out.LastEpoch = s.LastEpoch
	out.LastEpochAt = s.LastEpochAt
	return out, nil
}

// FromAccounts encodes holder positions.
func FromAccounts(accts []shares.Account) []Account {
	out := make([]Account, len(accts))
	for i, a := range accts {
		out[i] = Account{
			Address:      a.Address.Hex(),
			Shares:       a.Shares.Dec(),
			Pinned:       a.Pinned.Dec(),
			FeeExempt:    a.FeeExempt,
			RebaseExempt: a.RebaseExempt,
		}
	}
	return out
}

// Decode returns the holder position.
func (a Account) Decode() (shares.Account, error) {
	if !common.IsHexAddress(a.Address) {
		return shares.Account{}, fmt.Errorf("%w: account address %q", ErrCorruptEntry, a.Address)
	}
	out := shares.Account{
		Address:      common.HexToAddress(a.Address),
		FeeExempt:    a.FeeExempt,
		RebaseExempt: a.RebaseExempt,
	}
	if err := decodeInt(&out.Shares, a.Shares); err != nil {
		return shares.Account{}, fmt.Errorf("%w: shares of %s: %v", ErrCorruptEntry, a.Address, err)
	}
	if err := decodeInt(&out.Pinned, a.Pinned); err != nil {
		return shares.Account{}, fmt.Errorf("%w: pinned of %s: %v", ErrCorruptEntry, a.Address, err)
	}
	return out, nil
}

// FromAllowances encodes allowances.
func FromAllowances(als []shares.Allowance) []Allowance {
	out := make([]Allowance, len(als))
	for i, al := range als {
		out[i] = Allowance{
			Owner:   al.Owner.Hex(),
			Spender: al.Spender.Hex(),
			Units:   al.Units.Dec(),
		}
	}
	return out
}

// Decode returns the allowance.
func (a Allowance) Decode() (shares.Allowance, error) {
	if !common.IsHexAddress(a.Owner) || !common.IsHexAddress(a.Spender) {
		return shares.Allowance{}, fmt.Errorf("%w: allowance %s/%s", ErrCorruptEntry, a.Owner, a.Spender)
	}
	out := shares.Allowance{
		Owner:   common.HexToAddress(a.Owner),
		Spender: common.HexToAddress(a.Spender),
	}
	if err := decodeInt(&out.Units, a.Units); err != nil {
		return shares.Allowance{}, fmt.Errorf("%w: allowance units: %v", ErrCorruptEntry, err)
	}
	return out, nil
}

func decodeInt(dst *uint256.Int, s string) error {
	if s == "" {
		dst.Clear()
		return nil
	}
	return dst.SetFromDecimal(s)
}
