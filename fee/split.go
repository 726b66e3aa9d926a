package fee

import "github.com/xraph/elastic/types"

// Split is the breakdown of one taxed transfer.
type Split struct {
	Amount types.Amount `json:"amount"`

	Treasury        types.Amount `json:"treasury"`
	LiquidityRelief types.Amount `json:"liquidity_relief"`
	Liquidity       types.Amount `json:"liquidity"`
	Insurance       types.Amount `json:"insurance"`
	Burn            types.Amount `json:"burn"`

	// Fee is amount * totalBps / 10000.
	Fee types.Amount `json:"fee"`
	// Net is credited to the recipient.
	Net types.Amount `json:"net"`
	// Residue is Fee minus the sum of components. It is credited to nobody.
	Residue types.Amount `json:"residue"`
}

// Untaxed returns a split that passes amount through with no fee.
func Untaxed(amount types.Amount) Split {
	return Split{Amount: amount, Net: amount}
}

// Compute splits amount according to r. Every component rounds down.
func Compute(amount types.Amount, r Rates) Split {
	s := Split{
		Amount:          amount,
		Treasury:        amount.MulDiv(uint64(r.Treasury), Denominator),
		LiquidityRelief: amount.MulDiv(uint64(r.LiquidityRelief), Denominator),
		Liquidity:       amount.MulDiv(uint64(r.Liquidity), Denominator),
		Insurance:       amount.MulDiv(uint64(r.Insurance), Denominator),
		Burn:            amount.MulDiv(uint64(r.Burn), Denominator),
		Fee:             amount.MulDiv(r.Total(), Denominator),
	}
	s.Net = amount.Sub(s.Fee)
	s.Residue = s.Fee.Sub(types.Sum(s.Treasury, s.LiquidityRelief, s.Liquidity, s.Insurance, s.Burn))
	return s
}

// Of returns the component for c.
func (s Split) Of(c Category) types.Amount {
	switch c {
	case CategoryTreasury:
		return s.Treasury
	case CategoryLiquidityRelief:
		return s.LiquidityRelief
	case CategoryLiquidity:
		return s.Liquidity
	case CategoryInsurance:
		return s.Insurance
	case CategoryBurn:
		return s.Burn
	default:
		return types.Amount{}
	}
}

// SwapPortion is the part routed to the swap collector.
func (s Split) SwapPortion() types.Amount {
	return types.Sum(s.Treasury, s.LiquidityRelief, s.Insurance)
}

// IsTaxed reports whether any fee was levied.
func (s Split) IsTaxed() bool { return !s.Fee.IsZero() }
