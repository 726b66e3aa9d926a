package elastic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/store/memory"
	"github.com/xraph/elastic/types"
)

func TestStart_Genesis(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	supply := types.Tokens(100_000_000)
	assert.True(t, f.l.TotalSupply().Equal(supply))
	assert.True(t, f.l.BalanceOf(treasury).Equal(supply))
	assert.Equal(t, lifecycle.PreLaunch, f.l.Lifecycle())
	assert.Equal(t, treasury, f.l.Owner())
	assert.Equal(t, pair, f.l.Pair())
	assert.Equal(t, uint64(1), f.l.JournalSeq())

	for _, addr := range f.l.Destinations().All() {
		assert.True(t, f.l.IsFeeExempt(addr), addr.Hex())
	}
	assert.False(t, f.l.IsFeeExempt(alice))

	entries, err := f.l.Journal(context.Background(), journal.ListOpts{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.KindGenesis, entries[0].Kind)
}

func TestStart_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Destinations.Treasury = ""
	cfg.InitialSupply = "0"

	l := elastic.New(memory.New(), elastic.WithConfig(cfg), elastic.WithLogger(discardLogger()))
	err := l.Start(context.Background())
	require.Error(t, err)
	assert.True(t, elastic.IsConfigError(err))

	var multi elastic.MultiError
	require.ErrorAs(t, err, &multi)
	assert.GreaterOrEqual(t, len(multi.Errors), 2)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testConfig().Validate())

	cfg := testConfig()
	cfg.Fees.Buy.Treasury = 5000
	assert.ErrorIs(t, cfg.Validate(), elastic.ErrInvalidConfig)

	cfg = testConfig()
	cfg.Pair = "not-an-address"
	assert.ErrorIs(t, cfg.Validate(), elastic.ErrInvalidConfig)

	cfg = testConfig()
	cfg.RebaseAccess = "nobody"
	assert.ErrorIs(t, cfg.Validate(), elastic.ErrInvalidConfig)
}

func TestLedger_NotStarted(t *testing.T) {
	t.Parallel()

	l := elastic.New(memory.New(), elastic.WithConfig(testConfig()))
	_, err := l.Transfer(context.Background(), treasury, alice, types.Tokens(1))
	assert.ErrorIs(t, err, elastic.ErrStoreNotReady)
	assert.True(t, elastic.IsRetryable(err))
	assert.True(t, l.TotalSupply().IsZero())
}

func TestRestore_FromJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(genesisTime)
	st := memory.New()
	admin := elastic.WithCaller(ctx, treasury)

	first := elastic.New(st, elastic.WithConfig(testConfig()), elastic.WithClock(clock), elastic.WithLogger(discardLogger()))
	require.NoError(t, first.Start(ctx))

	_, err := first.Transfer(ctx, treasury, alice, types.Tokens(500))
	require.NoError(t, err)
	_, err = first.Transfer(ctx, treasury, pair, types.Tokens(10_000))
	require.NoError(t, err)
	require.NoError(t, first.Approve(elastic.WithCaller(ctx, alice), bob, types.Tokens(25)))
	require.NoError(t, first.OpenTrade(admin))
	require.NoError(t, first.LaunchToken(admin))
	_, err = first.Transfer(ctx, pair, alice, types.Tokens(1000))
	require.NoError(t, err)
	clock.Advance(3 * elastic.DefaultConfig().Rebase.EpochDuration)
	_, err = first.Rebase(ctx)
	require.NoError(t, err)

	// A second ledger on the same store must rebuild identical state and
	// ignore its own (different) genesis configuration.
	cfg := testConfig()
	cfg.InitialSupply = "1"
	second := elastic.New(st, elastic.WithConfig(cfg), elastic.WithClock(clock), elastic.WithLogger(discardLogger()))
	require.NoError(t, second.Start(ctx))

	assert.Equal(t, first.JournalSeq(), second.JournalSeq())
	assert.True(t, first.TotalSupply().Equal(second.TotalSupply()))

	s1, s2 := first.State(), second.State()
	assert.Equal(t, s1.LastEpoch, s2.LastEpoch)
	assert.True(t, s1.LastEpochAt.Equal(s2.LastEpochAt))
	assert.True(t, s1.SharesPerUnit.Eq(&s2.SharesPerUnit))
	assert.True(t, s1.PoolShares.Eq(&s2.PoolShares))

	h1, h2 := first.Holders(), second.Holders()
	require.Len(t, h2, len(h1))
	for i := range h1 {
		assert.Equal(t, h1[i].Address, h2[i].Address)
		assert.True(t, h1[i].Balance.Equal(h2[i].Balance), h1[i].Address.Hex())
		assert.Equal(t, h1[i].FeeExempt, h2[i].FeeExempt)
	}

	assert.True(t, second.Allowance(alice, bob).Equal(types.Tokens(25)))
	assert.Equal(t, lifecycle.Launched, second.Lifecycle())
	assert.Equal(t, first.Fees(), second.Fees())
	assert.True(t, first.Tally().Total().Equal(second.Tally().Total()))

	// The restored ledger keeps appending after the last sequence.
	_, err = second.Transfer(ctx, treasury, bob, types.Tokens(1))
	require.NoError(t, err)
	assert.Equal(t, first.JournalSeq()+1, second.JournalSeq())
}

// flakyStore fails every append while failing is set.
type flakyStore struct {
	*memory.Store
	failing bool
}

func (s *flakyStore) AppendEntry(ctx context.Context, e *journal.Entry) error {
	if s.failing {
		return errors.New("disk full")
	}
	return s.Store.AppendEntry(ctx, e)
}

func TestPersistFailure_LeavesStateUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := &flakyStore{Store: memory.New()}
	l := elastic.New(st, elastic.WithConfig(testConfig()), elastic.WithLogger(discardLogger()),
		elastic.WithClock(clockwork.NewFakeClockAt(genesisTime)))
	require.NoError(t, l.Start(ctx))

	st.failing = true
	_, err := l.Transfer(ctx, treasury, alice, types.Tokens(10))
	require.ErrorIs(t, err, elastic.ErrPersistFailed)
	assert.True(t, elastic.IsRetryable(err))
	assert.True(t, l.BalanceOf(alice).IsZero())
	assert.Equal(t, uint64(1), l.JournalSeq())

	err = l.OpenTrade(elastic.WithCaller(ctx, treasury))
	require.ErrorIs(t, err, elastic.ErrPersistFailed)
	assert.Equal(t, lifecycle.PreLaunch, l.Lifecycle())

	st.failing = false
	_, err = l.Transfer(ctx, treasury, alice, types.Tokens(10))
	require.NoError(t, err)
	assert.True(t, l.BalanceOf(alice).Equal(types.Tokens(10)))
}
