package fee

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress is returned when a zero address is supplied where a
// real account is required.
var ErrInvalidAddress = errors.New("elastic: invalid address")

// DeadAddress is the conventional unspendable burn sink.
var DeadAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

// Destinations are the accounts fees are routed to.
type Destinations struct {
	Treasury           common.Address `json:"treasury"`
	SwapCollector      common.Address `json:"swap_collector"`
	LiquidityCollector common.Address `json:"liquidity_collector"`
	LiquidityRelief    common.Address `json:"liquidity_relief"`
	Insurance          common.Address `json:"insurance"`
	Burn               common.Address `json:"burn"`
}

// Validate rejects zero addresses.
func (d Destinations) Validate() error {
	named := []struct {
		name string
		addr common.Address
	}{
		{"treasury", d.Treasury},
		{"swap_collector", d.SwapCollector},
		{"liquidity_collector", d.LiquidityCollector},
		{"liquidity_relief", d.LiquidityRelief},
		{"insurance", d.Insurance},
		{"burn", d.Burn},
	}
	for _, n := range named {
		if n.addr == (common.Address{}) {
			return fmt.Errorf("%w: %s destination is the zero address", ErrInvalidAddress, n.name)
		}
	}
	return nil
}

// All returns every destination address.
func (d Destinations) All() []common.Address {
	return []common.Address{d.Treasury, d.SwapCollector, d.LiquidityCollector, d.LiquidityRelief, d.Insurance, d.Burn}
}

// Route returns the account that receives the component of category c.
// Treasury, liquidity-relief and insurance components share the swap
// collector until a swap converts them.
func (d Destinations) Route(c Category) common.Address {
	switch c {
	case CategoryLiquidity:
		return d.LiquidityCollector
	case CategoryBurn:
		return d.Burn
	default:
		return d.SwapCollector
	}
}
