package elastic

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/rebase"
	"github.com/xraph/elastic/trigger"
	"github.com/xraph/elastic/types"
)

// RebaseAccess controls who may call Ledger.Rebase.
type RebaseAccess string

const (
	// RebaseAccessPublic lets anyone force a rebase.
	RebaseAccessPublic RebaseAccess = "public"
	// RebaseAccessAdmin restricts Rebase to the owner and the treasury.
	RebaseAccessAdmin RebaseAccess = "admin"
)

// Config configures a new token. It only seeds genesis: once a journal
// exists, runtime settings are restored from it.
type Config struct {
	Name   string `json:"name" mapstructure:"name" yaml:"name"`
	Symbol string `json:"symbol" mapstructure:"symbol" yaml:"symbol"`

	// InitialSupply is in whole tokens and is minted to the treasury.
	InitialSupply string `json:"initial_supply" mapstructure:"initial_supply" yaml:"initial_supply"`
	// Owner administers the token. Defaults to the treasury.
	Owner string `json:"owner" mapstructure:"owner" yaml:"owner"`
	// Pair is the liquidity pool address used to classify buys and sells.
	Pair string `json:"pair" mapstructure:"pair" yaml:"pair"`

	Destinations DestinationsConfig `json:"destinations" mapstructure:"destinations" yaml:"destinations"`
	Fees         fee.Schedule       `json:"fees" mapstructure:"fees" yaml:"fees"`
	Rebase       RebaseConfig       `json:"rebase" mapstructure:"rebase" yaml:"rebase"`
	Triggers     TriggersConfig     `json:"triggers" mapstructure:"triggers" yaml:"triggers"`

	RebaseAccess     RebaseAccess  `json:"rebase_access" mapstructure:"rebase_access" yaml:"rebase_access"`
	PreLaunchAllowed []string      `json:"pre_launch_allowed" mapstructure:"pre_launch_allowed" yaml:"pre_launch_allowed"`
	PluginTimeout    time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`
}

// DestinationsConfig holds the fee destination addresses as hex strings.
type DestinationsConfig struct {
	Treasury           string `json:"treasury" mapstructure:"treasury" yaml:"treasury"`
	SwapCollector      string `json:"swap_collector" mapstructure:"swap_collector" yaml:"swap_collector"`
	LiquidityCollector string `json:"liquidity_collector" mapstructure:"liquidity_collector" yaml:"liquidity_collector"`
	LiquidityRelief    string `json:"liquidity_relief" mapstructure:"liquidity_relief" yaml:"liquidity_relief"`
	Insurance          string `json:"insurance" mapstructure:"insurance" yaml:"insurance"`
	Burn               string `json:"burn" mapstructure:"burn" yaml:"burn"`
}

// RebaseConfig mirrors rebase.Schedule.
type RebaseConfig struct {
	EpochDuration   time.Duration `json:"epoch_duration" mapstructure:"epoch_duration" yaml:"epoch_duration"`
	RateNumerator   uint64        `json:"rate_numerator" mapstructure:"rate_numerator" yaml:"rate_numerator"`
	RateDenominator uint64        `json:"rate_denominator" mapstructure:"rate_denominator" yaml:"rate_denominator"`
	MaxBatch        int           `json:"max_batch" mapstructure:"max_batch" yaml:"max_batch"`
	// MaxSupply is in base units; empty means 2^128-1.
	MaxSupply string `json:"max_supply" mapstructure:"max_supply" yaml:"max_supply"`
}

// TriggerConfig configures one auto-trigger.
type TriggerConfig struct {
	Enabled   bool          `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Frequency time.Duration `json:"frequency" mapstructure:"frequency" yaml:"frequency"`
}

// TriggersConfig configures the auto-trigger scheduler.
type TriggersConfig struct {
	AutoRebase      bool          `json:"auto_rebase" mapstructure:"auto_rebase" yaml:"auto_rebase"`
	Swap            TriggerConfig `json:"swap" mapstructure:"swap" yaml:"swap"`
	Liquidity       TriggerConfig `json:"liquidity" mapstructure:"liquidity" yaml:"liquidity"`
	LiquidityRelief TriggerConfig `json:"liquidity_relief" mapstructure:"liquidity_relief" yaml:"liquidity_relief"`
}

// DefaultConfig returns a configuration with the launch parameters filled
// in. Destination addresses must still be supplied.
func DefaultConfig() Config {
	sched := trigger.DefaultScheduler()
	return Config{
		Name:          "Elastic",
		Symbol:        "ELX",
		InitialSupply: "100000000",
		Destinations: DestinationsConfig{
			Burn: fee.DeadAddress.Hex(),
		},
		Fees: fee.DefaultSchedule(),
		Rebase: RebaseConfig{
			EpochDuration:   rebase.DefaultEpochDuration,
			RateNumerator:   rebase.DefaultRateNumerator,
			RateDenominator: rebase.DefaultRateDenominator,
			MaxBatch:        rebase.DefaultMaxBatch,
		},
		Triggers: TriggersConfig{
			AutoRebase:      sched.AutoRebase,
			Swap:            TriggerConfig{Enabled: sched.Swap.Enabled, Frequency: sched.Swap.Frequency},
			Liquidity:       TriggerConfig{Enabled: sched.Liquidity.Enabled, Frequency: sched.Liquidity.Frequency},
			LiquidityRelief: TriggerConfig{Enabled: sched.LiquidityRelief.Enabled, Frequency: sched.LiquidityRelief.Frequency},
		},
		RebaseAccess:  RebaseAccessPublic,
		PluginTimeout: 5 * time.Second,
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	_, err := c.resolve()
	return err
}

// Schedule returns the validated rebase schedule.
func (c Config) Schedule() (rebase.Schedule, error) {
	r, err := c.resolve()
	if err != nil {
		return rebase.Schedule{}, err
	}
	return r.schedule, nil
}

// resolved is a validated Config in domain types.
type resolved struct {
	supply       types.Amount
	owner        common.Address
	pair         common.Address
	destinations fee.Destinations
	fees         fee.Schedule
	schedule     rebase.Schedule
	scheduler    trigger.Scheduler
	access       RebaseAccess
	allowed      []common.Address
}

func (c Config) resolve() (*resolved, error) {
	var errs MultiError
	r := &resolved{fees: c.Fees, access: c.RebaseAccess}

	supply, err := types.ParseTokens(c.InitialSupply)
	switch {
	case err != nil:
		errs.Add(ValidationError{Field: "initial_supply", Message: err.Error()})
	case supply.IsZero():
		errs.Add(ValidationError{Field: "initial_supply", Message: "must be positive"})
	default:
		r.supply = supply
	}

	addr := func(field, s string, required bool) common.Address {
		if s == "" && !required {
			return common.Address{}
		}
		if !common.IsHexAddress(s) {
			errs.Add(ValidationError{Field: field, Message: fmt.Sprintf("%q is not a hex address", s)})
			return common.Address{}
		}
		a := common.HexToAddress(s)
		if a == (common.Address{}) {
			errs.Add(ValidationError{Field: field, Message: "zero address"})
		}
		return a
	}

	d := c.Destinations
	r.destinations = fee.Destinations{
		Treasury:           addr("destinations.treasury", d.Treasury, true),
		SwapCollector:      addr("destinations.swap_collector", d.SwapCollector, true),
		LiquidityCollector: addr("destinations.liquidity_collector", d.LiquidityCollector, true),
		LiquidityRelief:    addr("destinations.liquidity_relief", d.LiquidityRelief, true),
		Insurance:          addr("destinations.insurance", d.Insurance, true),
		Burn:               addr("destinations.burn", d.Burn, true),
	}
	r.owner = addr("owner", c.Owner, false)
	if r.owner == (common.Address{}) {
		r.owner = r.destinations.Treasury
	}
	r.pair = addr("pair", c.Pair, false)
	for i, s := range c.PreLaunchAllowed {
		r.allowed = append(r.allowed, addr(fmt.Sprintf("pre_launch_allowed[%d]", i), s, true))
	}

	if err := c.Fees.Validate(); err != nil {
		errs.Add(ValidationError{Field: "fees", Message: err.Error()})
	}

	r.schedule = rebase.Schedule{
		EpochDuration: c.Rebase.EpochDuration,
		Rate:          rebase.Rate{Numerator: c.Rebase.RateNumerator, Denominator: c.Rebase.RateDenominator},
		MaxBatch:      c.Rebase.MaxBatch,
		MaxSupply:     rebase.DefaultSchedule().MaxSupply,
	}
	if c.Rebase.MaxSupply != "" {
		var maxSupply uint256.Int
		if err := maxSupply.SetFromDecimal(c.Rebase.MaxSupply); err != nil {
			errs.Add(ValidationError{Field: "rebase.max_supply", Message: err.Error()})
		}
		r.schedule.MaxSupply = maxSupply
	}
	if err := r.schedule.Validate(); err != nil {
		errs.Add(ValidationError{Field: "rebase", Message: err.Error()})
	}

	switch c.RebaseAccess {
	case "":
		r.access = RebaseAccessPublic
	case RebaseAccessPublic, RebaseAccessAdmin:
	default:
		errs.Add(ValidationError{Field: "rebase_access", Message: fmt.Sprintf("unknown policy %q", c.RebaseAccess)})
	}

	t := c.Triggers
	r.scheduler = trigger.Scheduler{
		AutoRebase:      t.AutoRebase,
		Swap:            trigger.Trigger{Enabled: t.Swap.Enabled, Frequency: t.Swap.Frequency},
		Liquidity:       trigger.Trigger{Enabled: t.Liquidity.Enabled, Frequency: t.Liquidity.Frequency},
		LiquidityRelief: trigger.Trigger{Enabled: t.LiquidityRelief.Enabled, Frequency: t.LiquidityRelief.Frequency},
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return r, nil
}
