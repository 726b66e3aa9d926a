// Package projection forecasts supply growth under a rebase schedule.
package projection

import (
	"errors"
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/xraph/elastic/rebase"
	"github.com/xraph/elastic/types"
)

// Year is the horizon used for annualized figures.
const Year = 365 * 24 * time.Hour

// Point is the projected supply at one moment.
type Point struct {
	Epoch   uint64        `json:"epoch"`
	Elapsed time.Duration `json:"elapsed"`
	Supply  types.Amount  `json:"supply"`
	// Growth is the percentage gained since the start.
	Growth decimal.Decimal `json:"growth"`
}

// Project compounds supply epoch by epoch and samples it every interval
// up to horizon. The last point always lands on horizon.
func Project(s rebase.Schedule, supply types.Amount, horizon, interval time.Duration) ([]Point, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if horizon <= 0 || interval <= 0 {
		return nil, errors.New("projection: horizon and interval must be positive")
	}

	start := supply.Uint256()
	cur := *start
	var epoch uint64
	points := []Point{{Supply: supply, Growth: decimal.Zero}}

	for at := interval; ; at += interval {
		if at > horizon {
			at = horizon
		}
		target := uint64(at / s.EpochDuration)
		cur = s.Compound(&cur, target-epoch, &s.MaxSupply)
		epoch = target

		points = append(points, Point{
			Epoch:   epoch,
			Elapsed: at,
			Supply:  types.FromUint256(&cur),
			Growth:  growth(start, &cur),
		})
		if at == horizon {
			return points, nil
		}
	}
}

// APY is the annual percentage growth of one token under s, ignoring the
// supply cap.
func APY(s rebase.Schedule) decimal.Decimal {
	one := types.Tokens(1).Uint256()
	var unbounded uint256.Int
	unbounded.SetAllOne()
	end := s.Compound(one, uint64(Year/s.EpochDuration), &unbounded)
	return growth(one, &end)
}

// EpochRate is the per-epoch growth in percent.
func EpochRate(s rebase.Schedule) decimal.Decimal {
	num := decimal.NewFromBigInt(new(big.Int).SetUint64(s.Rate.Numerator), 0)
	den := decimal.NewFromBigInt(new(big.Int).SetUint64(s.Rate.Denominator), 0)
	return num.Div(den).Mul(decimal.NewFromInt(100))
}

func growth(from, to *uint256.Int) decimal.Decimal {
	if from.IsZero() {
		return decimal.Zero
	}
	a := decimal.NewFromBigInt(from.ToBig(), 0)
	b := decimal.NewFromBigInt(to.ToBig(), 0)
	return b.Sub(a).DivRound(a, 18).Mul(decimal.NewFromInt(100))
}
