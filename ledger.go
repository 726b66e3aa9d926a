package elastic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"

	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/rebase"
	"github.com/xraph/elastic/shares"
	"github.com/xraph/elastic/store"
	"github.com/xraph/elastic/types"
)

// Ledger is the token engine: share book, rebase engine, fee router and
// auto-trigger scheduler behind one mutex.
type Ledger struct {
	mu      sync.RWMutex
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   clockwork.Clock
	config  Config

	// Populated by Start.
	book     *shares.Book
	settings journal.Settings
	schedule rebase.Schedule
	access   RebaseAccess
	seq      uint64
}

// New creates a new Ledger instance. Call Start before use.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		clock:   clockwork.NewRealClock(),
		config:  DefaultConfig(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock replaces the wall clock, mainly for tests and simulations.
func WithClock(c clockwork.Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithConfig sets the genesis configuration.
func WithConfig(cfg Config) Option {
	return func(l *Ledger) {
		l.config = cfg
	}
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// Start migrates the store and loads the ledger. An empty journal is seeded
// from the configuration; otherwise the journal is replayed.
func (l *Ledger) Start(ctx context.Context) error {
	cfg, err := l.config.resolve()
	if err != nil {
		return err
	}
	l.plugins.WithTimeout(l.config.PluginTimeout)

	if err := l.store.Migrate(ctx); err != nil {
		return fmt.Errorf("elastic: migrate: %w", err)
	}

	l.mu.Lock()
	l.schedule = cfg.schedule
	l.access = cfg.access

	entries, err := l.store.ListEntries(ctx, journal.ListOpts{})
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("%w: load journal: %w", ErrStoreNotReady, err)
	}
	if len(entries) == 0 {
		err = l.genesis(ctx, cfg)
	} else {
		err = l.restore(entries)
	}
	if err != nil {
		l.mu.Unlock()
		return err
	}
	st := l.book.State()
	lc := l.settings.Lifecycle
	seq := l.seq
	l.mu.Unlock()

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("elastic ledger started",
		"name", l.config.Name,
		"symbol", l.config.Symbol,
		"lifecycle", lc,
		"total_supply", types.FromUint256(&st.TotalSupply).Display(),
		"epoch", st.LastEpoch,
		"journal_seq", seq,
	)
	return nil
}

func (l *Ledger) genesis(ctx context.Context, cfg *resolved) error {
	now := l.clock.Now()
	book, err := shares.Genesis(cfg.supply.Uint256(), cfg.destinations.Treasury, now)
	if err != nil {
		return err
	}

	settings := journal.Settings{
		Lifecycle:        lifecycle.PreLaunch,
		Fees:             cfg.fees,
		Destinations:     cfg.destinations,
		Pair:             cfg.pair,
		Scheduler:        cfg.scheduler,
		Owner:            cfg.owner,
		PreLaunchAllowed: cfg.allowed,
	}

	tx := book.Begin()
	for _, addr := range append(cfg.destinations.All(), cfg.owner) {
		tx.SetFeeExempt(addr, true)
	}

	l.book = book
	if err := l.persist(ctx, journal.KindGenesis, "", tx, settings); err != nil {
		l.book = nil
		return err
	}
	return nil
}

func (l *Ledger) restore(entries []*journal.Entry) error {
	r, err := journal.Replay(entries)
	if err != nil {
		return err
	}
	l.book = r.Book
	l.settings = r.Settings
	l.seq = r.Seq
	return nil
}

// Stop notifies plugins and closes the store.
func (l *Ledger) Stop() error {
	l.plugins.EmitShutdown(context.Background())
	return l.store.Close()
}

// ──────────────────────────────────────────────────
// Commit path
// ──────────────────────────────────────────────────

// ready must be called with l.mu held.
func (l *Ledger) ready() error {
	if l.book == nil {
		return ErrStoreNotReady
	}
	return nil
}

// persist journals the pending tx and settings, then publishes both.
// It must be called with l.mu held. On error nothing is published.
func (l *Ledger) persist(ctx context.Context, kind journal.Kind, ref string, tx *shares.Tx, settings journal.Settings) error {
	accts, als := tx.Changes()
	e := &journal.Entry{
		Entity:     types.NewEntity(l.clock.Now()),
		ID:         id.NewEntryID(),
		Seq:        l.seq + 1,
		Kind:       kind,
		Ref:        ref,
		State:      journal.FromState(tx.State()),
		Accounts:   journal.FromAccounts(accts),
		Allowances: journal.FromAllowances(als),
		Settings:   settings,
	}
	if err := l.store.AppendEntry(ctx, e); err != nil {
		if errors.Is(err, journal.ErrDuplicateEntry) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrPersistFailed, kind, err)
	}

	tx.Commit()
	l.settings = settings
	l.seq = e.Seq
	return nil
}

// isAdmin must be called with l.mu held.
func (l *Ledger) isAdmin(ctx context.Context) bool {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return false
	}
	return caller == l.settings.Owner || caller == l.settings.Destinations.Treasury
}

func cloneSettings(s journal.Settings) journal.Settings {
	s.PreLaunchAllowed = append([]common.Address(nil), s.PreLaunchAllowed...)
	return s
}

// ──────────────────────────────────────────────────
// Notifications
// ──────────────────────────────────────────────────

// outbox collects the notifications produced by one commit. It is
// dispatched after the commit, with the mutex released.
type outbox struct {
	rebase      *plugin.RebaseApplied
	lifecycle   *plugin.LifecycleChanged
	feesUpdated *plugin.FeesUpdated
	fees        *plugin.FeesCollected
	liquidity   *plugin.AutoLiquidityDue
	relief      *plugin.LiquidityReliefDue
	transfers   []*plugin.TransferCompleted
}

func (l *Ledger) dispatch(ctx context.Context, ob *outbox) {
	ctx = context.WithValue(ctx, dispatchKey{}, true)

	if ob.rebase != nil {
		l.logger.Debug("rebase applied",
			"applied", ob.rebase.Applied,
			"remaining", ob.rebase.Remaining,
			"epoch", ob.rebase.EpochIndex,
			"total_supply", ob.rebase.TotalSupply.String(),
		)
		l.plugins.EmitRebaseApplied(ctx, ob.rebase)
	}
	if ob.lifecycle != nil {
		l.logger.Info("lifecycle changed", "from", ob.lifecycle.From, "to", ob.lifecycle.To)
		l.plugins.EmitLifecycleChanged(ctx, ob.lifecycle)
	}
	if ob.feesUpdated != nil {
		l.plugins.EmitFeesUpdated(ctx, ob.feesUpdated)
	}
	if ob.fees != nil {
		l.plugins.EmitFeesCollected(ctx, ob.fees)
	}
	if ob.liquidity != nil {
		l.plugins.EmitAutoLiquidityDue(ctx, ob.liquidity)
	}
	if ob.relief != nil {
		l.plugins.EmitLiquidityReliefDue(ctx, ob.relief)
	}
	for _, t := range ob.transfers {
		l.plugins.EmitTransferCompleted(ctx, t)
	}
}
