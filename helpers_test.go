package elastic_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/store/memory"
	"github.com/xraph/elastic/types"
)

var (
	treasury  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	swapCol   = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	liqCol    = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	relief    = common.HexToAddress("0x00000000000000000000000000000000000000a4")
	insurance = common.HexToAddress("0x00000000000000000000000000000000000000a5")
	pair      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	router    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	alice     = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	bob       = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	carol     = common.HexToAddress("0x00000000000000000000000000000000000000c3")

	genesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func testConfig() elastic.Config {
	cfg := elastic.DefaultConfig()
	cfg.Destinations = elastic.DestinationsConfig{
		Treasury:           treasury.Hex(),
		SwapCollector:      swapCol.Hex(),
		LiquidityCollector: liqCol.Hex(),
		LiquidityRelief:    relief.Hex(),
		Insurance:          insurance.Hex(),
		Burn:               elastic.DeadAddress.Hex(),
	}
	cfg.Pair = pair.Hex()
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	l     *elastic.Ledger
	clock *clockwork.FakeClock
	store *memory.Store
	admin context.Context
}

func newFixture(t *testing.T, opts ...elastic.Option) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, testConfig(), opts...)
}

func newFixtureWithConfig(t *testing.T, cfg elastic.Config, opts ...elastic.Option) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(genesisTime)
	st := memory.New()
	base := []elastic.Option{
		elastic.WithConfig(cfg),
		elastic.WithClock(clock),
		elastic.WithLogger(discardLogger()),
	}
	l := elastic.New(st, append(base, opts...)...)
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() { _ = l.Stop() })

	return &fixture{
		l:     l,
		clock: clock,
		store: st,
		admin: elastic.WithCaller(context.Background(), treasury),
	}
}

func (f *fixture) launch(t *testing.T) {
	t.Helper()
	require.NoError(t, f.l.OpenTrade(f.admin))
	require.NoError(t, f.l.LaunchToken(f.admin))
}

func (f *fixture) fund(t *testing.T, to common.Address, amount types.Amount) {
	t.Helper()
	_, err := f.l.Transfer(context.Background(), treasury, to, amount)
	require.NoError(t, err)
}

// recorder captures every hook invocation.
type recorder struct {
	mu          sync.Mutex
	rebases     []*plugin.RebaseApplied
	fees        []*plugin.FeesCollected
	liquidity   []*plugin.AutoLiquidityDue
	relief      []*plugin.LiquidityReliefDue
	transfers   []*plugin.TransferCompleted
	feeUpdates  []*plugin.FeesUpdated
	transitions []*plugin.LifecycleChanged
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnRebaseApplied(_ context.Context, e *plugin.RebaseApplied) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebases = append(r.rebases, e)
	return nil
}

func (r *recorder) OnFeesCollected(_ context.Context, e *plugin.FeesCollected) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fees = append(r.fees, e)
	return nil
}

func (r *recorder) OnAutoLiquidityDue(_ context.Context, e *plugin.AutoLiquidityDue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.liquidity = append(r.liquidity, e)
	return nil
}

func (r *recorder) OnLiquidityReliefDue(_ context.Context, e *plugin.LiquidityReliefDue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relief = append(r.relief, e)
	return nil
}

func (r *recorder) OnTransferCompleted(_ context.Context, e *plugin.TransferCompleted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = append(r.transfers, e)
	return nil
}

func (r *recorder) OnFeesUpdated(_ context.Context, e *plugin.FeesUpdated) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeUpdates = append(r.feeUpdates, e)
	return nil
}

func (r *recorder) OnLifecycleChanged(_ context.Context, e *plugin.LifecycleChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, e)
	return nil
}
