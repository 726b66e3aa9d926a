// Package fee classifies transfers and splits the tax levied on exchange
// activity into the categories that fund the satellites.
package fee

import (
	"errors"
	"fmt"
)

// ErrFeesTooHigh is returned when a rate set exceeds its cap.
var ErrFeesTooHigh = errors.New("elastic: fees too high")

// Basis-point limits.
const (
	Denominator = 10_000
	MaxBuyBps   = 2_000
	MaxSellBps  = 2_500
)

// Category names one fee component.
type Category string

// Fee categories.
const (
	CategoryTreasury        Category = "treasury"
	CategoryLiquidityRelief Category = "liquidity_relief"
	CategoryLiquidity       Category = "liquidity"
	CategoryInsurance       Category = "insurance"
	CategoryBurn            Category = "burn"
)

// Categories lists every category in routing order.
func Categories() []Category {
	return []Category{
		CategoryTreasury,
		CategoryLiquidityRelief,
		CategoryLiquidity,
		CategoryInsurance,
		CategoryBurn,
	}
}

// Rates is one side's fee rates in basis points.
type Rates struct {
	Treasury        uint32 `json:"treasury" mapstructure:"treasury" yaml:"treasury"`
	LiquidityRelief uint32 `json:"liquidity_relief" mapstructure:"liquidity_relief" yaml:"liquidity_relief"`
	Liquidity       uint32 `json:"liquidity" mapstructure:"liquidity" yaml:"liquidity"`
	Insurance       uint32 `json:"insurance" mapstructure:"insurance" yaml:"insurance"`
	Burn            uint32 `json:"burn" mapstructure:"burn" yaml:"burn"`
}

// Total returns the sum of all components.
func (r Rates) Total() uint64 {
	return uint64(r.Treasury) + uint64(r.LiquidityRelief) + uint64(r.Liquidity) +
		uint64(r.Insurance) + uint64(r.Burn)
}

// Of returns the rate of a single category.
func (r Rates) Of(c Category) uint32 {
	switch c {
	case CategoryTreasury:
		return r.Treasury
	case CategoryLiquidityRelief:
		return r.LiquidityRelief
	case CategoryLiquidity:
		return r.Liquidity
	case CategoryInsurance:
		return r.Insurance
	case CategoryBurn:
		return r.Burn
	default:
		return 0
	}
}

// Side selects the buy or sell rate set.
type Side int

// Rate set selectors.
const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// Cap returns the maximum total basis points for the side.
func (s Side) Cap() uint64 {
	if s == SideSell {
		return MaxSellBps
	}
	return MaxBuyBps
}

// Schedule holds the buy and sell rate sets.
type Schedule struct {
	Buy  Rates `json:"buy" mapstructure:"buy" yaml:"buy"`
	Sell Rates `json:"sell" mapstructure:"sell" yaml:"sell"`
}

// DefaultSchedule returns the launch fee schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		Buy:  Rates{Treasury: 300, LiquidityRelief: 500, Liquidity: 400, Insurance: 200, Burn: 100},
		Sell: Rates{Treasury: 500, LiquidityRelief: 700, Liquidity: 500, Insurance: 300, Burn: 200},
	}
}

// CheckRates validates r against the cap for side.
func CheckRates(side Side, r Rates) error {
	if total := r.Total(); total > side.Cap() {
		return fmt.Errorf("%w: %s total %d bps exceeds %d", ErrFeesTooHigh, side, total, side.Cap())
	}
	return nil
}

// Validate checks both sides against their caps.
func (s Schedule) Validate() error {
	if err := CheckRates(SideBuy, s.Buy); err != nil {
		return err
	}
	return CheckRates(SideSell, s.Sell)
}

// For returns the rates of side.
func (s Schedule) For(side Side) Rates {
	if side == SideSell {
		return s.Sell
	}
	return s.Buy
}

// With returns a copy of s with side replaced by r after validating r.
// On error s is returned unchanged.
func (s Schedule) With(side Side, r Rates) (Schedule, error) {
	if err := CheckRates(side, r); err != nil {
		return s, err
	}
	if side == SideSell {
		s.Sell = r
	} else {
		s.Buy = r
	}
	return s, nil
}
