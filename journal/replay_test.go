package journal_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/lifecycle"
	"github.com/xraph/elastic/shares"
)

var (
	treasury = common.HexToAddress("0x1000000000000000000000000000000000000001")
	alice    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	bob      = common.HexToAddress("0x3000000000000000000000000000000000000003")
	at       = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func entryFor(seq uint64, kind journal.Kind, tx *shares.Tx) *journal.Entry {
	accts, als := tx.Changes()
	return &journal.Entry{
		Seq:        seq,
		Kind:       kind,
		State:      journal.FromState(tx.State()),
		Accounts:   journal.FromAccounts(accts),
		Allowances: journal.FromAllowances(als),
	}
}

func TestReplay_RebuildsBook(t *testing.T) {
	t.Parallel()

	supply := new(uint256.Int).Mul(uint256.NewInt(1_000_000), uint256.NewInt(1e18))
	book, err := shares.Genesis(supply, treasury, at)
	require.NoError(t, err)

	var entries []*journal.Entry
	entries = append(entries, &journal.Entry{
		Seq:      1,
		Kind:     journal.KindGenesis,
		State:    journal.FromState(book.State()),
		Accounts: journal.FromAccounts(book.Accounts()),
		Settings: journal.Settings{Lifecycle: lifecycle.PreLaunch},
	})

	tx := book.Begin()
	require.NoError(t, tx.Move(treasury, alice, uint256.NewInt(5_000)))
	tx.SetAllowance(alice, bob, uint256.NewInt(700))
	e := entryFor(2, journal.KindTransfer, tx)
	e.Settings.Lifecycle = lifecycle.TradingOpen
	entries = append(entries, e)
	tx.Commit()

	tx = book.Begin()
	tx.SetAllowance(alice, bob, new(uint256.Int))
	entries = append(entries, entryFor(3, journal.KindApproval, tx))
	tx.Commit()

	// Round trip through JSON as a backend would.
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	var decoded []*journal.Entry
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := journal.Replay(decoded)
	require.NoError(t, err)
	require.Equal(t, uint64(3), got.Seq)
	require.Equal(t, book.State(), got.Book.State())
	require.Equal(t, book.Accounts(), got.Book.Accounts())
	require.Empty(t, got.Book.Allowances())

	bal := got.Book.BalanceOf(alice)
	require.Equal(t, uint64(5_000), bal.Uint64())
}

func TestReplay_Errors(t *testing.T) {
	t.Parallel()

	_, err := journal.Replay(nil)
	require.ErrorIs(t, err, journal.ErrEntryNotFound)

	_, err = journal.Replay([]*journal.Entry{{Seq: 2}, {Seq: 1}})
	require.ErrorIs(t, err, journal.ErrCorruptEntry)

	_, err = journal.Replay([]*journal.Entry{{Seq: 1, State: journal.State{TotalSupply: "12x"}}})
	require.ErrorIs(t, err, journal.ErrCorruptEntry)

	_, err = journal.Replay([]*journal.Entry{{Seq: 1, Accounts: []journal.Account{{Address: "nope"}}}})
	require.ErrorIs(t, err, journal.ErrCorruptEntry)
}
