package plugin

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/types"
)

// FeesCollected is emitted when the swap trigger fires. The amounts are the
// swap collector's accumulated fees by category at the moment of firing.
type FeesCollected struct {
	SwapID          id.SwapID      `json:"swap_id"`
	Collector       common.Address `json:"collector"`
	Pair            common.Address `json:"pair"`
	Treasury        types.Amount   `json:"treasury"`
	LiquidityRelief types.Amount   `json:"liquidity_relief"`
	Insurance       types.Amount   `json:"insurance"`
	At              time.Time      `json:"at"`
}

// Total is the sum of all categories.
func (e *FeesCollected) Total() types.Amount {
	return types.Sum(e.Treasury, e.LiquidityRelief, e.Insurance)
}

// Tally returns the batch as a fee tally, ready for Distribute.
func (e *FeesCollected) Tally() fee.Tally {
	return fee.Tally{Treasury: e.Treasury, LiquidityRelief: e.LiquidityRelief, Insurance: e.Insurance}
}

// AutoLiquidityDue is emitted when the liquidity collector should be paired
// into the pool.
type AutoLiquidityDue struct {
	Collector common.Address `json:"collector"`
	Pair      common.Address `json:"pair"`
	Balance   types.Amount   `json:"balance"`
	At        time.Time      `json:"at"`
}

// LiquidityReliefDue is emitted when the liquidity-relief stabilizer should run.
type LiquidityReliefDue struct {
	Stabilizer common.Address `json:"stabilizer"`
	At         time.Time      `json:"at"`
}

// RebaseApplied is emitted after a rebase batch commits.
type RebaseApplied struct {
	RebaseID    id.RebaseID  `json:"rebase_id"`
	Applied     uint64       `json:"applied"`
	Remaining   uint64       `json:"remaining"`
	EpochIndex  uint64       `json:"epoch_index"`
	TotalSupply types.Amount `json:"total_supply"`
	Auto        bool         `json:"auto"`
	At          time.Time    `json:"at"`
}

// TransferCompleted is emitted after every committed transfer.
type TransferCompleted struct {
	TransferID id.TransferID  `json:"transfer_id"`
	From       common.Address `json:"from"`
	To         common.Address `json:"to"`
	Kind       fee.Kind       `json:"kind"`
	Amount     types.Amount   `json:"amount"`
	Fee        types.Amount   `json:"fee"`
	Net        types.Amount   `json:"net"`
	At         time.Time      `json:"at"`
}

// FeesUpdated is emitted when a fee side is reconfigured.
type FeesUpdated struct {
	Side     fee.Side  `json:"side"`
	Previous fee.Rates `json:"previous"`
	Current  fee.Rates `json:"current"`
	At       time.Time `json:"at"`
}

// LifecycleChanged is emitted on every lifecycle transition.
type LifecycleChanged struct {
	From lifecycle.State `json:"from"`
	To   lifecycle.State `json:"to"`
	At   time.Time       `json:"at"`
}
