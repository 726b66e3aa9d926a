package audithook_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audithook "github.com/xraph/elastic/audit_hook"
	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/types"
)

type memRecorder struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (r *memRecorder) Record(_ context.Context, e *audithook.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func TestExtension_Transfer(t *testing.T) {
	t.Parallel()
	rec := &memRecorder{}
	ext := audithook.New(rec)

	transferID := id.NewTransferID()
	require.NoError(t, ext.OnTransferCompleted(context.Background(), &plugin.TransferCompleted{
		TransferID: transferID,
		From:       common.HexToAddress("0x01"),
		To:         common.HexToAddress("0x02"),
		Kind:       fee.KindSell,
		Amount:     types.NewAmount(1000),
		Fee:        types.NewAmount(220),
		Net:        types.NewAmount(780),
	}))

	require.Len(t, rec.events, 1)
	e := rec.events[0]
	assert.Equal(t, audithook.ActionTransferSell, e.Action)
	assert.Equal(t, audithook.ResourceTransfer, e.Resource)
	assert.Equal(t, transferID.String(), e.ResourceID)
	assert.Equal(t, "220", e.Metadata["fee"])
	assert.Equal(t, audithook.OutcomeSuccess, e.Outcome)
}

func TestExtension_TransferThreshold(t *testing.T) {
	t.Parallel()
	rec := &memRecorder{}
	ext := audithook.New(rec, audithook.WithTransferThreshold(types.Tokens(1)))

	require.NoError(t, ext.OnTransferCompleted(context.Background(), &plugin.TransferCompleted{Amount: types.NewAmount(5)}))
	require.NoError(t, ext.OnTransferCompleted(context.Background(), &plugin.TransferCompleted{Amount: types.Tokens(2)}))
	assert.Len(t, rec.events, 1)
}

func TestExtension_PartialRebase(t *testing.T) {
	t.Parallel()
	rec := &memRecorder{}
	ext := audithook.New(rec)

	require.NoError(t, ext.OnRebaseApplied(context.Background(), &plugin.RebaseApplied{
		RebaseID:  id.NewRebaseID(),
		Applied:   40,
		Remaining: 2,
	}))
	require.Len(t, rec.events, 1)
	assert.Equal(t, audithook.OutcomePartial, rec.events[0].Outcome)
	assert.Equal(t, uint64(40), rec.events[0].Metadata["applied"])
}

func TestExtension_FeeIncreaseIsWarning(t *testing.T) {
	t.Parallel()
	rec := &memRecorder{}
	ext := audithook.New(rec)

	require.NoError(t, ext.OnFeesUpdated(context.Background(), &plugin.FeesUpdated{
		Side:     fee.SideBuy,
		Previous: fee.Rates{Treasury: 100},
		Current:  fee.Rates{Treasury: 200},
	}))
	require.Len(t, rec.events, 1)
	assert.Equal(t, audithook.SeverityWarning, rec.events[0].Severity)
	assert.Equal(t, "buy", rec.events[0].ResourceID)
}

func TestExtension_ActionFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lc := &plugin.LifecycleChanged{From: lifecycle.PreLaunch, To: lifecycle.TradingOpen}

	rec := &memRecorder{}
	ext := audithook.New(rec, audithook.WithEnabledActions(audithook.ActionLifecycleChanged))
	require.NoError(t, ext.OnLifecycleChanged(ctx, lc))
	require.NoError(t, ext.OnLiquidityReliefDue(ctx, &plugin.LiquidityReliefDue{}))
	require.Len(t, rec.events, 1)
	assert.Equal(t, "trading_open", rec.events[0].Metadata["to"])

	rec = &memRecorder{}
	ext = audithook.New(rec, audithook.WithDisabledActions(audithook.ActionLifecycleChanged))
	require.NoError(t, ext.OnLifecycleChanged(ctx, lc))
	require.NoError(t, ext.OnLiquidityReliefDue(ctx, &plugin.LiquidityReliefDue{}))
	require.Len(t, rec.events, 1)
	assert.Equal(t, audithook.ActionLiquidityReliefDue, rec.events[0].Action)
}

func TestExtension_RecorderErrorIsSwallowed(t *testing.T) {
	t.Parallel()
	ext := audithook.New(audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("backend down")
	}))
	assert.NoError(t, ext.OnFeesCollected(context.Background(), &plugin.FeesCollected{}))
}
