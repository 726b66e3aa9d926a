package elastic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/types"
)

func TestTransfer_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.l.Transfer(ctx, treasury, common.Address{}, types.Tokens(1))
	assert.ErrorIs(t, err, elastic.ErrInvalidAddress)

	_, err = f.l.Transfer(ctx, common.Address{}, alice, types.Tokens(1))
	assert.ErrorIs(t, err, elastic.ErrInvalidAddress)

	_, err = f.l.Transfer(ctx, treasury, alice, types.Amount{})
	assert.ErrorIs(t, err, elastic.ErrInvalidAmount)

	f.launch(t)
	f.fund(t, alice, types.Tokens(5))
	_, err = f.l.Transfer(ctx, alice, bob, types.Tokens(6))
	assert.ErrorIs(t, err, elastic.ErrInsufficientBalance)
	assert.True(t, f.l.BalanceOf(alice).Equal(types.Tokens(5)))
}

func TestTransfer_PreLaunchGate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	// The distributor may seed holders before trading opens.
	f.fund(t, alice, types.Tokens(100))

	_, err := f.l.Transfer(ctx, alice, bob, types.Tokens(1))
	assert.ErrorIs(t, err, elastic.ErrTradingNotOpen)
	assert.True(t, elastic.IsTransferRejected(err))

	// Allow-listed routers may move tokens on a holder's behalf.
	require.NoError(t, f.l.AllowPreLaunchTransfer(f.admin, router, true))
	require.NoError(t, f.l.Approve(elastic.WithCaller(ctx, alice), router, types.Tokens(10)))
	_, err = f.l.TransferFrom(elastic.WithCaller(ctx, router), alice, pair, types.Tokens(10))
	require.NoError(t, err)
	assert.True(t, f.l.BalanceOf(pair).Equal(types.Tokens(10)))

	require.NoError(t, f.l.AllowPreLaunchTransfer(f.admin, router, false))
	require.NoError(t, f.l.Approve(elastic.WithCaller(ctx, alice), router, types.Tokens(10)))
	_, err = f.l.TransferFrom(elastic.WithCaller(ctx, router), alice, pair, types.Tokens(10))
	assert.ErrorIs(t, err, elastic.ErrTradingNotOpen)

	require.NoError(t, f.l.OpenTrade(f.admin))
	_, err = f.l.Transfer(ctx, alice, bob, types.Tokens(1))
	require.NoError(t, err)
}

func TestTransfer_NoFeesBeforeLaunch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, pair, types.Tokens(1000))
	require.NoError(t, f.l.OpenTrade(f.admin))

	r, err := f.l.Transfer(ctx, pair, alice, types.Tokens(100))
	require.NoError(t, err)
	assert.Equal(t, fee.KindBuy, r.Kind)
	assert.False(t, r.Split.IsTaxed())
	assert.True(t, f.l.BalanceOf(alice).Equal(types.Tokens(100)))
}

func TestTransfer_BuyFeeRouting(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, pair, types.Tokens(10_000))
	f.launch(t)

	r, err := f.l.Transfer(ctx, pair, alice, types.NewAmount(1000))
	require.NoError(t, err)
	assert.Equal(t, fee.KindBuy, r.Kind)

	assert.Equal(t, "150", r.Split.Fee.String())
	assert.Equal(t, "850", r.Split.Net.String())
	assert.Equal(t, "850", f.l.BalanceOf(alice).String())
	// treasury 30 + relief 50 + insurance 20
	assert.Equal(t, "100", f.l.BalanceOf(swapCol).String())
	assert.Equal(t, "40", f.l.BalanceOf(liqCol).String())
	assert.Equal(t, "10", f.l.BalanceOf(elastic.DeadAddress).String())

	tally := f.l.Tally()
	assert.Equal(t, "30", tally.Treasury.String())
	assert.Equal(t, "50", tally.LiquidityRelief.String())
	assert.Equal(t, "20", tally.Insurance.String())
}

func TestTransfer_SellFeeRoutingAndBurn(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, alice, types.NewAmount(1000))
	f.launch(t)
	supply := f.l.TotalSupply()

	r, err := f.l.Transfer(ctx, alice, pair, types.NewAmount(1000))
	require.NoError(t, err)
	assert.Equal(t, fee.KindSell, r.Kind)

	assert.Equal(t, "220", r.Split.Fee.String())
	assert.Equal(t, "780", f.l.BalanceOf(pair).String())
	// treasury 50 + relief 70 + insurance 30
	assert.Equal(t, "150", f.l.BalanceOf(swapCol).String())
	assert.Equal(t, "50", f.l.BalanceOf(liqCol).String())
	assert.Equal(t, "20", f.l.BalanceOf(elastic.DeadAddress).String())
	assert.True(t, f.l.BalanceOf(alice).IsZero())

	// Burned units stay in the supply.
	assert.True(t, f.l.TotalSupply().Equal(supply))
}

func TestTransfer_PlainAndExemptAreUntaxed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, alice, types.Tokens(10))
	f.launch(t)

	r, err := f.l.Transfer(ctx, alice, bob, types.Tokens(1))
	require.NoError(t, err)
	assert.Equal(t, fee.KindPlain, r.Kind)
	assert.False(t, r.Split.IsTaxed())

	require.NoError(t, f.l.SetFeeExempt(f.admin, alice, true))
	r, err = f.l.Transfer(ctx, alice, pair, types.Tokens(1))
	require.NoError(t, err)
	assert.Equal(t, fee.KindSell, r.Kind)
	assert.False(t, r.Split.IsTaxed())
	assert.True(t, f.l.BalanceOf(pair).Equal(types.Tokens(1)))
}

func TestTransfer_Conservation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, pair, types.Tokens(1_000_000))
	f.fund(t, alice, types.Tokens(1_000_000))
	f.launch(t)
	// Keep the swap trigger from resetting the tally mid-test.
	require.NoError(t, f.l.SetAutoSwap(f.admin, false))

	residue := types.Amount{}
	amounts := []types.Amount{
		types.NewAmount(1000),
		types.NewAmount(12_345),
		types.NewAmount(999_999),
		types.NewAmount(7),
		types.MustParseAmount("1000000000000000003"),
	}
	for _, amt := range amounts {
		for _, leg := range [][2]common.Address{{pair, bob}, {alice, pair}, {alice, carol}} {
			before := f.l.BalanceOf(leg[0])
			r, err := f.l.Transfer(ctx, leg[0], leg[1], amt)
			require.NoError(t, err)

			s := r.Split
			routed := types.Sum(s.Net, s.Treasury, s.LiquidityRelief, s.Liquidity, s.Insurance, s.Burn, s.Residue)
			assert.True(t, routed.Equal(amt), "split must account for every unit")
			assert.True(t, before.Sub(f.l.BalanceOf(leg[0])).Equal(amt))
			residue = residue.Add(s.Residue)
		}
	}

	held := types.Amount{}
	for _, h := range f.l.Holders() {
		held = held.Add(h.Balance)
	}
	assert.True(t, held.Add(residue).Equal(f.l.TotalSupply()),
		"held %s + residue %s != supply %s", held, residue, f.l.TotalSupply())
}

func TestApproveAndTransferFrom(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, alice, types.Tokens(100))
	f.launch(t)

	_, err := f.l.TransferFrom(ctx, alice, carol, types.Tokens(1))
	assert.ErrorIs(t, err, elastic.ErrUnauthorized)
	assert.ErrorIs(t, f.l.Approve(ctx, bob, types.Tokens(1)), elastic.ErrUnauthorized)

	require.NoError(t, f.l.Approve(elastic.WithCaller(ctx, alice), bob, types.Tokens(50)))
	assert.True(t, f.l.Allowance(alice, bob).Equal(types.Tokens(50)))

	asBob := elastic.WithCaller(ctx, bob)
	_, err = f.l.TransferFrom(asBob, alice, carol, types.Tokens(30))
	require.NoError(t, err)
	assert.True(t, f.l.Allowance(alice, bob).Equal(types.Tokens(20)))
	assert.True(t, f.l.BalanceOf(carol).Equal(types.Tokens(30)))

	_, err = f.l.TransferFrom(asBob, alice, carol, types.Tokens(30))
	assert.ErrorIs(t, err, elastic.ErrInsufficientAllowance)
	assert.True(t, f.l.Allowance(alice, bob).Equal(types.Tokens(20)))
	assert.True(t, f.l.BalanceOf(alice).Equal(types.Tokens(70)))
}

func TestTransfer_CallerMustOwnFunds(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	asBob := elastic.WithCaller(ctx, bob)

	// Naming the distributor as sender does not pass the pre-launch gate.
	supply := f.l.BalanceOf(treasury)
	_, err := f.l.Transfer(asBob, treasury, bob, types.Tokens(10))
	assert.ErrorIs(t, err, elastic.ErrUnauthorized)
	assert.True(t, f.l.BalanceOf(treasury).Equal(supply))

	f.fund(t, alice, types.Tokens(100))
	f.launch(t)

	_, err = f.l.Transfer(asBob, alice, bob, types.Tokens(10))
	assert.ErrorIs(t, err, elastic.ErrUnauthorized)
	assert.True(t, f.l.BalanceOf(alice).Equal(types.Tokens(100)))
	assert.True(t, f.l.BalanceOf(bob).IsZero())

	_, err = f.l.Transfer(elastic.WithCaller(ctx, alice), alice, bob, types.Tokens(10))
	require.NoError(t, err)
	assert.True(t, f.l.BalanceOf(bob).Equal(types.Tokens(10)))
}

func TestAirdrop(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	rec := &recorder{}
	require.NoError(t, f.l.Plugins().Register(rec))

	_, err := f.l.Airdrop(ctx, treasury, []common.Address{alice}, types.Tokens(1))
	assert.ErrorIs(t, err, elastic.ErrUnauthorized)

	seq := f.l.JournalSeq()
	report, err := f.l.Airdrop(f.admin, treasury,
		[]common.Address{alice, bob, alice, {}}, types.Tokens(5))
	require.NoError(t, err)

	assert.Equal(t, []common.Address{alice, bob}, report.Recipients)
	assert.Len(t, report.Skipped, 2)
	assert.True(t, report.Total.Equal(types.Tokens(10)))
	assert.True(t, f.l.BalanceOf(alice).Equal(types.Tokens(5)))
	assert.True(t, f.l.BalanceOf(bob).Equal(types.Tokens(5)))
	assert.Equal(t, seq+1, f.l.JournalSeq(), "an airdrop is one commit")
	assert.Len(t, rec.transfers, 2)

	// A batch that cannot be funded in full changes nothing.
	require.NoError(t, f.l.OpenTrade(f.admin))
	_, err = f.l.Airdrop(f.admin, alice, []common.Address{bob, carol}, types.Tokens(3))
	require.ErrorIs(t, err, elastic.ErrInsufficientBalance)
	assert.True(t, f.l.BalanceOf(bob).Equal(types.Tokens(5)))
	assert.True(t, f.l.BalanceOf(carol).IsZero())
}

// swapper plays the external swap collaborator: it sells everything in the
// swap collector back into the pair when fees are collected.
type swapper struct {
	ledger      *elastic.Ledger
	seen        []*plugin.FeesCollected
	bobAtSwap   types.Amount
	nestedError error
}

func (s *swapper) Name() string { return "swapper" }

func (s *swapper) OnInit(_ context.Context, l any) error {
	s.ledger = l.(*elastic.Ledger)
	return nil
}

func (s *swapper) OnFeesCollected(ctx context.Context, e *plugin.FeesCollected) error {
	s.seen = append(s.seen, e)
	s.bobAtSwap = s.ledger.BalanceOf(bob)
	asCollector := elastic.WithCaller(ctx, e.Collector)
	_, s.nestedError = s.ledger.Transfer(asCollector, e.Collector, e.Pair, s.ledger.BalanceOf(e.Collector))
	return s.nestedError
}

func TestSwapTrigger_ReentrantCollaborator(t *testing.T) {
	t.Parallel()

	sw := &swapper{}
	rec := &recorder{}
	f := newFixture(t, elastic.WithPlugin(sw), elastic.WithPlugin(rec))
	ctx := context.Background()

	f.fund(t, pair, types.Tokens(10_000))
	f.launch(t)

	_, err := f.l.Transfer(ctx, pair, alice, types.NewAmount(1000))
	require.NoError(t, err)
	require.Empty(t, sw.seen, "the tally was empty when the first buy was evaluated")
	pairBefore := f.l.BalanceOf(pair)

	_, err = f.l.Transfer(ctx, alice, bob, types.NewAmount(10))
	require.NoError(t, err)

	require.Len(t, sw.seen, 1)
	require.NoError(t, sw.nestedError)
	ev := sw.seen[0]
	assert.Equal(t, "30", ev.Treasury.String())
	assert.Equal(t, "50", ev.LiquidityRelief.String())
	assert.Equal(t, "20", ev.Insurance.String())
	assert.Equal(t, swapCol, ev.Collector)

	// The hook ran after the outer transfer committed.
	assert.Equal(t, "10", sw.bobAtSwap.String())
	assert.True(t, f.l.BalanceOf(swapCol).IsZero())
	assert.Equal(t, pairBefore.Add(types.NewAmount(100)).String(), f.l.BalanceOf(pair).String())
	assert.True(t, f.l.Tally().IsZero())
	assert.True(t, f.l.Scheduler().Swap.LastRun.Equal(f.clock.Now()))

	// The liquidity collector held 40 units, so that trigger fired too.
	require.Len(t, rec.liquidity, 1)
	assert.Equal(t, "40", rec.liquidity[0].Balance.String())

	// The nested sale did not fire the swap trigger again.
	assert.Len(t, rec.fees, 1)
}

type failingPlugin struct{}

func (failingPlugin) Name() string { return "failing" }

func (failingPlugin) OnTransferCompleted(context.Context, *plugin.TransferCompleted) error {
	return errors.New("webhook unreachable")
}

type panickingPlugin struct{}

func (panickingPlugin) Name() string { return "panicking" }

func (panickingPlugin) OnTransferCompleted(context.Context, *plugin.TransferCompleted) error {
	panic("boom")
}

func TestTransfer_HookFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	f := newFixture(t, elastic.WithPlugin(failingPlugin{}), elastic.WithPlugin(panickingPlugin{}))

	r, err := f.l.Transfer(context.Background(), treasury, alice, types.Tokens(3))
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID.String())
	assert.True(t, f.l.BalanceOf(alice).Equal(types.Tokens(3)))
}
