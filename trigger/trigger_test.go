package trigger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic/trigger"
	"github.com/xraph/elastic/types"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestTrigger_Due(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		trig trigger.Trigger
		want bool
	}{
		{"disabled", trigger.Trigger{Frequency: 0}, false},
		{"zero frequency", trigger.Trigger{Enabled: true, LastRun: now}, true},
		{"never run", trigger.Trigger{Enabled: true, Frequency: time.Hour}, true},
		{"too soon", trigger.Trigger{Enabled: true, Frequency: time.Hour, LastRun: now.Add(-59 * time.Minute)}, false},
		{"exactly elapsed", trigger.Trigger{Enabled: true, Frequency: time.Hour, LastRun: now.Add(-time.Hour)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.trig.Due(now))
		})
	}
}

func TestScheduler_Evaluate(t *testing.T) {
	t.Parallel()

	s := trigger.DefaultScheduler()
	s.LiquidityRelief.Enabled = true

	next, fired := s.Evaluate(trigger.Inputs{
		Now:              now,
		SwapCollected:    types.NewAmount(160),
		LiquidityBalance: types.NewAmount(0),
	})
	require.True(t, fired.Swap)
	require.False(t, fired.Liquidity, "empty liquidity collector must not fire")
	require.True(t, fired.LiquidityRelief)
	require.True(t, fired.Any())
	require.Equal(t, now, next.Swap.LastRun)
	require.True(t, next.Liquidity.LastRun.IsZero())
	require.True(t, s.Swap.LastRun.IsZero(), "receiver must not change")

	_, fired = next.Evaluate(trigger.Inputs{
		Now:              now.Add(time.Minute),
		SwapCollected:    types.NewAmount(10),
		LiquidityBalance: types.NewAmount(10),
	})
	require.False(t, fired.Swap, "swap frequency not yet elapsed")
	require.True(t, fired.Liquidity)
}

func TestScheduler_SetGet(t *testing.T) {
	t.Parallel()

	var s trigger.Scheduler
	s.Set(trigger.KindLiquidity, trigger.Trigger{Enabled: true, Frequency: time.Minute})
	require.Equal(t, time.Minute, s.Get(trigger.KindLiquidity).Frequency)
	require.False(t, s.Get(trigger.KindSwap).Enabled)
}
