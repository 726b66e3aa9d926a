package fee

import "github.com/xraph/elastic/types"

// Tally records how much of the swap collector's balance came from each
// category, so proceeds can be shared out in the same proportions.
type Tally struct {
	Treasury        types.Amount `json:"treasury"`
	LiquidityRelief types.Amount `json:"liquidity_relief"`
	Insurance       types.Amount `json:"insurance"`
}

// Add accumulates the swap portion of s.
func (t *Tally) Add(s Split) {
	if s.SwapPortion().IsZero() {
		return
	}
	t.Treasury = t.Treasury.Add(s.Treasury)
	t.LiquidityRelief = t.LiquidityRelief.Add(s.LiquidityRelief)
	t.Insurance = t.Insurance.Add(s.Insurance)
}

// Total returns the sum of all categories.
func (t Tally) Total() types.Amount {
	return types.Sum(t.Treasury, t.LiquidityRelief, t.Insurance)
}

// IsZero reports whether nothing has been collected.
func (t Tally) IsZero() bool { return t.Total().IsZero() }

// Distribute divides proceeds in the ratio of the tally. Rounding
// remainders go to the treasury so the parts always sum to proceeds.
func (t Tally) Distribute(proceeds types.Amount) Tally {
	total := t.Total()
	if total.IsZero() {
		return Tally{Treasury: proceeds}
	}
	out := Tally{
		LiquidityRelief: proceeds.Scale(t.LiquidityRelief, total),
		Insurance:       proceeds.Scale(t.Insurance, total),
	}
	out.Treasury = proceeds.Sub(out.LiquidityRelief).Sub(out.Insurance)
	return out
}
