// Package extension provides the Forge extension adapter for elastic.
//
// It implements the forge.Extension interface to integrate the elastic
// ledger into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.elastic" or "elastic" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/store"
	"github.com/xraph/elastic/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "elastic"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Rebasing token ledger with fee routing"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the elastic ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *elastic.Ledger
	store      store.Store
	ledgerOpts []elastic.Option
}

// New creates a new elastic Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying ledger.
// This is nil until Register is called.
func (e *Extension) Engine() *elastic.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// builds the ledger and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}
	if err := e.config.Token.Validate(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	opts := make([]elastic.Option, 0, len(e.ledgerOpts)+1)
	opts = append(opts, elastic.WithConfig(e.config.Token))
	opts = append(opts, e.ledgerOpts...)
	e.engine = elastic.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*elastic.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension]. It migrates the store and replays
// the journal, or seeds genesis on an empty store.
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("elastic: extension not initialized")
	}
	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("elastic: store not initialized")
	}
	return e.store.Ping(ctx)
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("elastic: configuration is required but not found in config files; " +
				"ensure 'extensions.elastic' or 'elastic' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("elastic: configuration loaded",
		forge.F("symbol", e.config.Token.Symbol),
		forge.F("initial_supply", e.config.Token.InitialSupply),
		forge.F("treasury", e.config.Token.Destinations.Treasury),
		forge.F("rebase_access", string(e.config.Token.RebaseAccess)),
		forge.F("plugin_timeout", e.config.Token.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.elastic", "elastic"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("elastic: loaded config from file", forge.F("key", key))
			return cfg, true
		}
		e.Logger().Warn("elastic: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued token fields with defaults. A zero
// fee schedule or trigger block counts as unset.
func mergeWithDefaults(cfg Config) Config {
	d := elastic.DefaultConfig()
	t := &cfg.Token

	if t.Name == "" {
		t.Name = d.Name
	}
	if t.Symbol == "" {
		t.Symbol = d.Symbol
	}
	if t.InitialSupply == "" {
		t.InitialSupply = d.InitialSupply
	}
	if t.Destinations.Burn == "" {
		t.Destinations.Burn = d.Destinations.Burn
	}
	if t.Fees == (fee.Schedule{}) {
		t.Fees = d.Fees
	}
	if t.Rebase.EpochDuration == 0 {
		t.Rebase.EpochDuration = d.Rebase.EpochDuration
	}
	if t.Rebase.RateNumerator == 0 && t.Rebase.RateDenominator == 0 {
		t.Rebase.RateNumerator = d.Rebase.RateNumerator
		t.Rebase.RateDenominator = d.Rebase.RateDenominator
	}
	if t.Rebase.MaxBatch == 0 {
		t.Rebase.MaxBatch = d.Rebase.MaxBatch
	}
	if t.Triggers == (elastic.TriggersConfig{}) {
		t.Triggers = d.Triggers
	}
	if t.RebaseAccess == "" {
		t.RebaseAccess = d.RebaseAccess
	}
	if t.PluginTimeout == 0 {
		t.PluginTimeout = d.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	y, p := &yamlConfig.Token, programmaticConfig.Token

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&y.Name, p.Name)
	fill(&y.Symbol, p.Symbol)
	fill(&y.InitialSupply, p.InitialSupply)
	fill(&y.Owner, p.Owner)
	fill(&y.Pair, p.Pair)
	fill(&y.Destinations.Treasury, p.Destinations.Treasury)
	fill(&y.Destinations.SwapCollector, p.Destinations.SwapCollector)
	fill(&y.Destinations.LiquidityCollector, p.Destinations.LiquidityCollector)
	fill(&y.Destinations.LiquidityRelief, p.Destinations.LiquidityRelief)
	fill(&y.Destinations.Insurance, p.Destinations.Insurance)
	fill(&y.Destinations.Burn, p.Destinations.Burn)
	if len(y.PreLaunchAllowed) == 0 {
		y.PreLaunchAllowed = p.PreLaunchAllowed
	}
	if y.PluginTimeout == 0 {
		y.PluginTimeout = p.PluginTimeout
	}

	return mergeWithDefaults(yamlConfig)
}
