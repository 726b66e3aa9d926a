package fee

import "github.com/ethereum/go-ethereum/common"

// Kind is the classification of a transfer.
type Kind int

// Transfer kinds.
const (
	KindPlain Kind = iota
	KindBuy
	KindSell
)

func (k Kind) String() string {
	switch k {
	case KindBuy:
		return "buy"
	case KindSell:
		return "sell"
	default:
		return "plain"
	}
}

// Side returns the rate set that applies to k. Plain transfers have none.
func (k Kind) Side() (Side, bool) {
	switch k {
	case KindBuy:
		return SideBuy, true
	case KindSell:
		return SideSell, true
	default:
		return 0, false
	}
}

// Classify reports whether a movement from -> to is a buy (out of the pair),
// a sell (into the pair) or a plain peer transfer. Without a configured pair
// every transfer is plain.
func Classify(from, to, pair common.Address) Kind {
	if pair == (common.Address{}) {
		return KindPlain
	}
	switch {
	case from == pair:
		return KindBuy
	case to == pair:
		return KindSell
	default:
		return KindPlain
	}
}
