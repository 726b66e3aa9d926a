package sqlite

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/types"
)

func TestEntryModelRoundTrip(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tally := fee.Tally{Treasury: types.NewAmount(55), Insurance: types.NewAmount(58)}
	e := &journal.Entry{
		Entity: types.NewEntity(at),
		ID:     id.NewEntryID(),
		Seq:    42,
		Kind:   journal.KindTransfer,
		Ref:    id.NewTransferID().String(),
		State: journal.State{
			TotalShares:   "115792089237316195423570985008687907853269984665640564039457584007913129639935",
			PoolShares:    "115792089237316195423570985008687907853269984665640564039457584007913129639935",
			TotalSupply:   "1000000000000000000000000",
			ExemptSupply:  "0",
			SharesPerUnit: "115792089237316195423570985008687907853269984665640564039457",
			LastEpoch:     3,
			LastEpochAt:   at,
		},
		Accounts: []journal.Account{{
			Address: common.HexToAddress("0x2000000000000000000000000000000000000002").Hex(),
			Shares:  "12345",
			Pinned:  "0",
		}},
		Allowances: []journal.Allowance{{Owner: "0x01", Spender: "0x02", Units: "7"}},
		Settings: journal.Settings{
			Lifecycle:    lifecycle.Launched,
			Fees:         fee.DefaultSchedule(),
			Destinations: fee.Destinations{Burn: fee.DeadAddress},
			Tally:        tally,
		},
	}

	m, err := toEntryModel(e)
	require.NoError(t, err)
	got, err := fromEntryModel(m)
	require.NoError(t, err)

	require.Equal(t, e.ID.String(), got.ID.String())
	require.Equal(t, e.Seq, got.Seq)
	require.Equal(t, e.Kind, got.Kind)
	require.Equal(t, e.Ref, got.Ref)
	require.Equal(t, e.State, got.State)
	require.Equal(t, e.Accounts, got.Accounts)
	require.Equal(t, e.Allowances, got.Allowances)
	require.Equal(t, lifecycle.Launched, got.Settings.Lifecycle)
	require.Equal(t, fee.DefaultSchedule(), got.Settings.Fees)
	require.Equal(t, fee.DeadAddress, got.Settings.Destinations.Burn)
	require.True(t, tally.Total().Equal(got.Settings.Tally.Total()))
}
