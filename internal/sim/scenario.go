// Package sim replays scripted token scenarios against an in-memory ledger
// driven by a fake clock.
package sim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/fee"
)

// Op names a scenario step.
type Op string

// Supported steps.
const (
	OpTransfer        Op = "transfer"
	OpTransferFrom    Op = "transfer_from"
	OpApprove         Op = "approve"
	OpAirdrop         Op = "airdrop"
	OpAdvance         Op = "advance"
	OpRebase          Op = "rebase"
	OpCatchUp         Op = "catch_up"
	OpOpenTrade       Op = "open_trade"
	OpLaunch          Op = "launch"
	OpSetFees         Op = "set_fees"
	OpSetFeeExempt    Op = "set_fee_exempt"
	OpSetRebaseExempt Op = "set_rebase_exempt"
	OpAllowPreLaunch  Op = "allow_pre_launch"
	OpExpectBalance   Op = "expect_balance"
)

// ErrUnknownOp is returned for a step with an unsupported op.
var ErrUnknownOp = errors.New("sim: unknown op")

// ErrExpectation is returned when an expect step does not hold.
var ErrExpectation = errors.New("sim: expectation failed")

// Step is one scripted action. Addresses are hex strings and amounts are
// decimal token quantities.
type Step struct {
	Op         Op            `mapstructure:"op" yaml:"op"`
	Caller     string        `mapstructure:"caller" yaml:"caller"`
	From       string        `mapstructure:"from" yaml:"from"`
	To         string        `mapstructure:"to" yaml:"to"`
	Address    string        `mapstructure:"address" yaml:"address"`
	Amount     string        `mapstructure:"amount" yaml:"amount"`
	Recipients []string      `mapstructure:"recipients" yaml:"recipients"`
	Duration   time.Duration `mapstructure:"duration" yaml:"duration"`
	Side       string        `mapstructure:"side" yaml:"side"`
	Rates      fee.Rates     `mapstructure:"rates" yaml:"rates"`
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
}

// Scenario is a token configuration plus the steps to replay.
type Scenario struct {
	Name  string         `mapstructure:"name" yaml:"name"`
	Start time.Time      `mapstructure:"start" yaml:"start"`
	Token elastic.Config `mapstructure:"token" yaml:"token"`
	// SwapCollaborator sells the swap collector's balance into the pair
	// whenever the swap trigger fires.
	SwapCollaborator bool `mapstructure:"swap_collaborator" yaml:"swap_collaborator"`
	// ContinueOnError records failed steps instead of stopping.
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error"`
	Steps           []Step `mapstructure:"steps" yaml:"steps"`
}

// Load reads a scenario from a YAML, JSON or TOML file. Token fields left
// out of the file keep their defaults.
func Load(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("sim: read %s: %w", path, err)
	}

	sc := &Scenario{Token: elastic.DefaultConfig()}
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(sc, hooks); err != nil {
		return nil, fmt.Errorf("sim: decode %s: %w", path, err)
	}
	if sc.Start.IsZero() {
		sc.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return sc, nil
}

func parseSide(s string) (fee.Side, error) {
	switch strings.ToLower(s) {
	case "buy", "":
		return fee.SideBuy, nil
	case "sell":
		return fee.SideSell, nil
	default:
		return 0, fmt.Errorf("sim: unknown fee side %q", s)
	}
}
