package elastic

import (
	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/types"
)

// Re-export common types for convenience so users don't have to import
// the subpackages for everyday calls.

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Rates is re-exported from fee package.
type Rates = fee.Rates

// Destinations is re-exported from fee package.
type Destinations = fee.Destinations

// LifecycleState is re-exported from lifecycle package.
type LifecycleState = lifecycle.State

// Fee sides.
const (
	Buy  = fee.SideBuy
	Sell = fee.SideSell
)

// Re-export Amount constructors
var (
	NewAmount   = types.NewAmount
	Tokens      = types.Tokens
	ParseAmount = types.ParseAmount
	ParseTokens = types.ParseTokens
	Sum         = types.Sum
)

// DeadAddress is the default burn sink.
var DeadAddress = fee.DeadAddress
