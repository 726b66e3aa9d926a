// Package rebase advances the elastic supply in discrete, time-gated epochs.
package rebase

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// ErrNoPendingRebases is returned when no full epoch has elapsed.
var ErrNoPendingRebases = errors.New("elastic: no pending rebases")

// Reference parameters.
const (
	DefaultEpochDuration = 720 * time.Second
	DefaultMaxBatch      = 40

	// DefaultRateNumerator / DefaultRateDenominator is 0.016030912247% per epoch.
	DefaultRateNumerator   uint64 = 16_030_912_247
	DefaultRateDenominator uint64 = 100_000_000_000_000
)

// Rate is the per-epoch growth fraction Numerator/Denominator.
type Rate struct {
	Numerator   uint64 `json:"numerator" mapstructure:"numerator" yaml:"numerator"`
	Denominator uint64 `json:"denominator" mapstructure:"denominator" yaml:"denominator"`
}

// Schedule describes how and how fast the supply grows.
type Schedule struct {
	EpochDuration time.Duration
	Rate          Rate
	// MaxBatch bounds the epochs applied by one Apply call.
	MaxBatch int
	// MaxSupply caps the total supply; growth stops once it is reached.
	MaxSupply uint256.Int
}

// DefaultSchedule returns the reference schedule with a 2^128-1 supply cap.
func DefaultSchedule() Schedule {
	s := Schedule{
		EpochDuration: DefaultEpochDuration,
		Rate:          Rate{Numerator: DefaultRateNumerator, Denominator: DefaultRateDenominator},
		MaxBatch:      DefaultMaxBatch,
	}
	s.MaxSupply.Lsh(uint256.NewInt(1), 128)
	s.MaxSupply.SubUint64(&s.MaxSupply, 1)
	return s
}

// Validate checks the schedule parameters.
func (s Schedule) Validate() error {
	switch {
	case s.EpochDuration <= 0:
		return fmt.Errorf("rebase: epoch duration must be positive, got %s", s.EpochDuration)
	case s.Rate.Denominator == 0:
		return errors.New("rebase: rate denominator must be non-zero")
	case s.MaxBatch <= 0:
		return fmt.Errorf("rebase: max batch must be positive, got %d", s.MaxBatch)
	case s.MaxSupply.IsZero():
		return errors.New("rebase: max supply must be non-zero")
	}
	return nil
}

// Pending returns the number of whole epochs between lastEpochAt and now.
func (s Schedule) Pending(lastEpochAt, now time.Time) uint64 {
	elapsed := now.Sub(lastEpochAt)
	if elapsed < s.EpochDuration {
		return 0
	}
	return uint64(elapsed / s.EpochDuration)
}

// Step applies one epoch of growth to supply, rounding down.
func (s Schedule) Step(supply *uint256.Int) uint256.Int {
	var next uint256.Int
	num := uint256.NewInt(s.Rate.Denominator)
	num.AddUint64(num, s.Rate.Numerator)
	next.MulDivOverflow(supply, num, uint256.NewInt(s.Rate.Denominator))
	return next
}

// Compound applies epochs successive steps to supply, stopping at limit.
func (s Schedule) Compound(supply *uint256.Int, epochs uint64, limit *uint256.Int) uint256.Int {
	cur := *supply
	for i := uint64(0); i < epochs; i++ {
		cur = s.Step(&cur)
		if cur.Gt(limit) {
			return *limit
		}
	}
	return cur
}
