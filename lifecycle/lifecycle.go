// Package lifecycle models the one-way launch progression of the token.
package lifecycle

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for an out-of-order state change.
var ErrInvalidTransition = errors.New("elastic: invalid lifecycle transition")

// State is the launch stage.
type State int

// Launch stages, in order.
const (
	PreLaunch State = iota
	TradingOpen
	Launched
)

func (s State) String() string {
	switch s {
	case PreLaunch:
		return "pre_launch"
	case TradingOpen:
		return "trading_open"
	case Launched:
		return "launched"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Parse converts a state name back into a State.
func Parse(s string) (State, error) {
	switch s {
	case "pre_launch":
		return PreLaunch, nil
	case "trading_open":
		return TradingOpen, nil
	case "launched":
		return Launched, nil
	default:
		return PreLaunch, fmt.Errorf("lifecycle: unknown state %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TradingAllowed reports whether ordinary holders may transfer.
func (s State) TradingAllowed() bool { return s >= TradingOpen }

// FeesActive reports whether transfers are taxed and auto-triggers run.
func (s State) FeesActive() bool { return s == Launched }

// OpenTrade returns the state after an open-trade request. It is a no-op
// once trading is open.
func OpenTrade(s State) State {
	if Transition(s, TradingOpen) != nil {
		return s
	}
	return TradingOpen
}

// Launch returns Launched when s is TradingOpen.
func Launch(s State) (State, error) {
	if err := Transition(s, Launched); err != nil {
		return s, err
	}
	return Launched, nil
}

// Transition validates a move from one state to the next. Only single
// forward steps are allowed.
func Transition(from, to State) error {
	if to != from+1 || to > Launched {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}
