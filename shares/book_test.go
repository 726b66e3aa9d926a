package shares_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/xraph/elastic/shares"
)

var (
	treasury = common.HexToAddress("0x1000000000000000000000000000000000000001")
	alice    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	bob      = common.HexToAddress("0x3000000000000000000000000000000000000003")
	pair     = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

func genesis(t *testing.T) *shares.Book {
	t.Helper()
	b, err := shares.Genesis(tokens(100_000_000), treasury, time.Unix(1_700_000_000, 0))
	require.NoError(t, err)
	return b
}

func TestGenesis(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	st := b.State()

	require.True(t, st.TotalShares.Eq(&st.PoolShares))
	require.True(t, st.TotalSupply.Eq(tokens(100_000_000)))

	var product uint256.Int
	product.Mul(&st.SharesPerUnit, &st.TotalSupply)
	require.True(t, product.Eq(&st.TotalShares), "genesis ratio must be exact")

	bal := b.BalanceOf(treasury)
	require.True(t, bal.Eq(tokens(100_000_000)))
	zero := b.BalanceOf(alice)
	require.True(t, zero.IsZero())
}

func TestGenesis_ZeroSupply(t *testing.T) {
	t.Parallel()

	_, err := shares.Genesis(new(uint256.Int), treasury, time.Now())
	require.ErrorIs(t, err, shares.ErrInvalidSupply)
}

func TestTx_MoveAndCommit(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	tx := b.Begin()
	require.NoError(t, tx.Move(treasury, alice, tokens(1000)))

	working := tx.BalanceOf(alice)
	require.True(t, working.Eq(tokens(1000)))
	committed := b.BalanceOf(alice)
	require.True(t, committed.IsZero(), "book must not change before commit")

	tx.Commit()
	after := b.BalanceOf(alice)
	require.True(t, after.Eq(tokens(1000)))
}

func TestTx_InsufficientBalanceLeavesBookUntouched(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	tx := b.Begin()
	require.NoError(t, tx.Move(treasury, alice, tokens(10)))
	tx.Commit()

	before := b.State()
	tx = b.Begin()
	err := tx.Move(alice, bob, tokens(11))
	require.ErrorIs(t, err, shares.ErrInsufficientBalance)

	require.Equal(t, before, b.State())
	bal := b.BalanceOf(alice)
	require.True(t, bal.Eq(tokens(10)))
}

func TestTx_RebaseScalesBalances(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	tx := b.Begin()
	require.NoError(t, tx.Move(treasury, alice, tokens(100)))

	st := tx.State()
	circ := st.Circulating()
	var doubled uint256.Int
	doubled.Mul(&circ, uint256.NewInt(2))
	tx.SetCirculating(&doubled)
	tx.Commit()

	bal := b.BalanceOf(alice)
	require.True(t, bal.Eq(tokens(200)), "got %s", bal.Dec())
	total := b.State().TotalSupply
	require.True(t, total.Eq(tokens(200_000_000)))
}

func TestTx_RebaseExemptBalanceIsPinned(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	tx := b.Begin()
	require.NoError(t, tx.Move(treasury, pair, tokens(1_000_000)))
	require.NoError(t, tx.Move(treasury, alice, tokens(100)))
	require.NoError(t, tx.SetRebaseExempt(pair, true))
	tx.Commit()

	st := b.State()
	require.True(t, st.ExemptSupply.Eq(tokens(1_000_000)))

	tx = b.Begin()
	circ := st.Circulating()
	var grown uint256.Int
	grown.Mul(&circ, uint256.NewInt(3))
	grown.Div(&grown, uint256.NewInt(2))
	tx.SetCirculating(&grown)
	tx.Commit()

	pinned := b.BalanceOf(pair)
	require.True(t, pinned.Eq(tokens(1_000_000)), "exempt balance moved: %s", pinned.Dec())
	grownAlice := b.BalanceOf(alice)
	require.True(t, grownAlice.Eq(tokens(150)), "got %s", grownAlice.Dec())

	requireSolvent(t, b)
}

func TestTx_ExemptRoundTrip(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	tx := b.Begin()
	require.NoError(t, tx.Move(treasury, pair, tokens(500)))
	require.NoError(t, tx.SetRebaseExempt(pair, true))
	require.NoError(t, tx.Move(pair, alice, tokens(200)))
	require.NoError(t, tx.Move(alice, pair, tokens(50)))
	require.NoError(t, tx.SetRebaseExempt(pair, false))
	tx.Commit()

	pairBal := b.BalanceOf(pair)
	require.True(t, pairBal.Eq(tokens(350)))
	aliceBal := b.BalanceOf(alice)
	require.True(t, aliceBal.Eq(tokens(150)))
	st := b.State()
	require.True(t, st.ExemptSupply.IsZero())

	requireSolvent(t, b)
}

func TestTx_Allowances(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	tx := b.Begin()
	tx.SetAllowance(treasury, alice, tokens(5))
	require.NoError(t, tx.SpendAllowance(treasury, alice, tokens(3)))
	require.ErrorIs(t, tx.SpendAllowance(treasury, alice, tokens(3)), shares.ErrInsufficientAllowance)

	var unlimited uint256.Int
	unlimited.SetAllOne()
	tx.SetAllowance(treasury, bob, &unlimited)
	require.NoError(t, tx.SpendAllowance(treasury, bob, tokens(1_000)))
	tx.Commit()

	left := b.Allowance(treasury, alice)
	require.True(t, left.Eq(tokens(2)))
	still := b.Allowance(treasury, bob)
	require.True(t, still.Eq(&unlimited))
	require.Len(t, b.Allowances(), 2)
}

func TestRestore(t *testing.T) {
	t.Parallel()

	b := genesis(t)
	tx := b.Begin()
	require.NoError(t, tx.Move(treasury, alice, tokens(42)))
	tx.SetAllowance(alice, bob, tokens(1))
	tx.Commit()

	restored := shares.Restore(b.State(), b.Accounts(), b.Allowances())
	bal := restored.BalanceOf(alice)
	require.True(t, bal.Eq(tokens(42)))
	al := restored.Allowance(alice, bob)
	require.True(t, al.Eq(tokens(1)))
	require.Equal(t, b.State(), restored.State())
}

func requireSolvent(t *testing.T, b *shares.Book) {
	t.Helper()

	var sum uint256.Int
	accts := b.Accounts()
	for _, a := range accts {
		bal := b.BalanceOf(a.Address)
		sum.Add(&sum, &bal)
	}
	st := b.State()
	require.False(t, sum.Gt(&st.TotalSupply), "sum of balances exceeds supply")

	var gap uint256.Int
	gap.Sub(&st.TotalSupply, &sum)
	require.True(t, gap.Cmp(uint256.NewInt(uint64(len(accts)))) <= 0, "rounding gap %s too large", gap.Dec())
}
