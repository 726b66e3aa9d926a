package elastic

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/id"
	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/rebase"
	"github.com/xraph/elastic/shares"
	"github.com/xraph/elastic/trigger"
	"github.com/xraph/elastic/types"
)

// Receipt describes a committed transfer.
type Receipt struct {
	ID      id.TransferID  `json:"id"`
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
	Spender common.Address `json:"spender"`
	Kind    fee.Kind       `json:"kind"`
	Split   fee.Split      `json:"split"`
	// Rebase is set when the transfer applied an auto-rebase batch first.
	Rebase *rebase.Result `json:"rebase,omitempty"`
	At     time.Time      `json:"at"`
}

func (r *Receipt) event() *plugin.TransferCompleted {
	return &plugin.TransferCompleted{
		TransferID: r.ID,
		From:       r.From,
		To:         r.To,
		Kind:       r.Kind,
		Amount:     r.Split.Amount,
		Fee:        r.Split.Fee,
		Net:        r.Split.Net,
		At:         r.At,
	}
}

// Transfer moves amount from from to to, routing fees on buys and sells
// once the token is launched. When ctx carries a caller it must be from;
// moving someone else's funds goes through TransferFrom.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount types.Amount) (*Receipt, error) {
	if caller, ok := CallerFrom(ctx); ok && caller != from {
		return nil, fmt.Errorf("%w: %s cannot transfer from %s", ErrUnauthorized, caller.Hex(), from.Hex())
	}
	return l.transfer(ctx, from, to, from, amount, false)
}

// TransferFrom moves amount out of from on behalf of the caller, spending
// the caller's allowance.
func (l *Ledger) TransferFrom(ctx context.Context, from, to common.Address, amount types.Amount) (*Receipt, error) {
	spender, ok := CallerFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: transfer from needs a caller", ErrUnauthorized)
	}
	return l.transfer(ctx, from, to, spender, amount, true)
}

func (l *Ledger) transfer(ctx context.Context, from, to, spender common.Address, amount types.Amount, viaAllowance bool) (*Receipt, error) {
	if from == (common.Address{}) || to == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	l.mu.Lock()
	receipt, ob, err := l.transferLocked(ctx, from, to, spender, amount, viaAllowance)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.dispatch(ctx, ob)
	return receipt, nil
}

func (l *Ledger) transferLocked(ctx context.Context, from, to, spender common.Address, amount types.Amount, viaAllowance bool) (*Receipt, *outbox, error) {
	if err := l.ready(); err != nil {
		return nil, nil, err
	}

	settings := cloneSettings(l.settings)
	if !mayMove(&settings, from, spender) {
		return nil, nil, ErrTradingNotOpen
	}

	now := l.clock.Now()
	tx := l.book.Begin()
	ob := &outbox{}

	if viaAllowance {
		if err := tx.SpendAllowance(from, spender, amount.Uint256()); err != nil {
			return nil, nil, err
		}
	}

	rb, err := l.autoRebase(tx, &settings, now, ob)
	if err != nil {
		return nil, nil, err
	}
	if !inDispatch(ctx) {
		l.evaluateTriggers(tx, &settings, now, ob)
	}

	kind, split, err := l.move(tx, &settings, from, to, amount)
	if err != nil {
		return nil, nil, err
	}

	receipt := &Receipt{
		ID:      id.NewTransferID(),
		From:    from,
		To:      to,
		Spender: spender,
		Kind:    kind,
		Split:   split,
		Rebase:  rb,
		At:      now,
	}
	if err := l.persist(ctx, journal.KindTransfer, receipt.ID.String(), tx, settings); err != nil {
		return nil, nil, err
	}

	ob.transfers = append(ob.transfers, receipt.event())
	return receipt, ob, nil
}

// mayMove applies the pre-launch gate: only the distributor and allow-listed
// routers may move tokens before trading opens.
func mayMove(s *journal.Settings, from, spender common.Address) bool {
	if s.Lifecycle.TradingAllowed() {
		return true
	}
	for _, a := range []common.Address{from, spender} {
		if a == s.Destinations.Treasury || slices.Contains(s.PreLaunchAllowed, a) {
			return true
		}
	}
	return false
}

// autoRebase applies one rebase batch when the token is launched and
// auto-rebase is on.
func (l *Ledger) autoRebase(tx *shares.Tx, s *journal.Settings, now time.Time, ob *outbox) (*rebase.Result, error) {
	if !s.Lifecycle.FeesActive() || !s.Scheduler.AutoRebase {
		return nil, nil
	}
	res, err := l.schedule.Apply(tx, now)
	if errors.Is(err, rebase.ErrNoPendingRebases) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ob.rebase = rebaseEvent(id.NewRebaseID(), res, true, now)
	return &res, nil
}

// evaluateTriggers runs the scheduler against the working state. It runs
// before the current transfer's fee is routed.
func (l *Ledger) evaluateTriggers(tx *shares.Tx, s *journal.Settings, now time.Time, ob *outbox) {
	if !s.Lifecycle.FeesActive() {
		return
	}

	liquidity := tx.BalanceOf(s.Destinations.LiquidityCollector)
	next, fired := s.Scheduler.Evaluate(trigger.Inputs{
		Now:              now,
		SwapCollected:    s.Tally.Total(),
		LiquidityBalance: types.FromUint256(&liquidity),
	})
	s.Scheduler = next

	if fired.Swap {
		ob.fees = &plugin.FeesCollected{
			SwapID:          id.NewSwapID(),
			Collector:       s.Destinations.SwapCollector,
			Pair:            s.Pair,
			Treasury:        s.Tally.Treasury,
			LiquidityRelief: s.Tally.LiquidityRelief,
			Insurance:       s.Tally.Insurance,
			At:              now,
		}
		s.Tally = fee.Tally{}
	}
	if fired.Liquidity {
		ob.liquidity = &plugin.AutoLiquidityDue{
			Collector: s.Destinations.LiquidityCollector,
			Pair:      s.Pair,
			Balance:   types.FromUint256(&liquidity),
			At:        now,
		}
	}
	if fired.LiquidityRelief {
		ob.relief = &plugin.LiquidityReliefDue{
			Stabilizer: s.Destinations.LiquidityRelief,
			At:         now,
		}
	}
}

// move debits from, credits the net amount to to and routes every fee
// component to its destination.
func (l *Ledger) move(tx *shares.Tx, s *journal.Settings, from, to common.Address, amount types.Amount) (fee.Kind, fee.Split, error) {
	kind := fee.Classify(from, to, s.Pair)
	split := fee.Untaxed(amount)
	if side, taxed := kind.Side(); taxed && s.Lifecycle.FeesActive() &&
		!tx.Account(from).FeeExempt && !tx.Account(to).FeeExempt {
		split = fee.Compute(amount, s.Fees.For(side))
	}

	if err := tx.Debit(from, amount.Uint256()); err != nil {
		return kind, split, err
	}
	if err := tx.Credit(to, split.Net.Uint256()); err != nil {
		return kind, split, err
	}
	if !split.IsTaxed() {
		return kind, split, nil
	}
	for _, c := range fee.Categories() {
		part := split.Of(c)
		if part.IsZero() {
			continue
		}
		if err := tx.Credit(s.Destinations.Route(c), part.Uint256()); err != nil {
			return kind, split, err
		}
	}
	s.Tally.Add(split)
	return kind, split, nil
}

// Approve sets the caller's allowance for spender. An amount equal to
// 2^256-1 is unlimited.
func (l *Ledger) Approve(ctx context.Context, spender common.Address, amount types.Amount) error {
	owner, ok := CallerFrom(ctx)
	if !ok {
		return fmt.Errorf("%w: approve needs a caller", ErrUnauthorized)
	}
	if spender == (common.Address{}) {
		return ErrInvalidAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ready(); err != nil {
		return err
	}
	tx := l.book.Begin()
	tx.SetAllowance(owner, spender, amount.Uint256())
	return l.persist(ctx, journal.KindApproval, "", tx, cloneSettings(l.settings))
}

// AirdropReport summarizes one airdrop batch.
type AirdropReport struct {
	ID         id.AirdropID     `json:"id"`
	From       common.Address   `json:"from"`
	Each       types.Amount     `json:"each"`
	Total      types.Amount     `json:"total"`
	Recipients []common.Address `json:"recipients"`
	// Skipped lists zero and repeated addresses, which receive nothing.
	Skipped []common.Address `json:"skipped,omitempty"`
	At      time.Time        `json:"at"`
}

// Airdrop sends each to every recipient out of from in one atomic commit.
// It is restricted to the owner and the treasury and does not evaluate
// auto-triggers.
func (l *Ledger) Airdrop(ctx context.Context, from common.Address, recipients []common.Address, each types.Amount) (*AirdropReport, error) {
	if from == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if each.IsZero() {
		return nil, ErrInvalidAmount
	}

	l.mu.Lock()
	report, ob, err := l.airdropLocked(ctx, from, recipients, each)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.logger.Info("airdrop completed",
		"id", report.ID.String(),
		"recipients", len(report.Recipients),
		"skipped", len(report.Skipped),
		"total", report.Total.Display(),
	)
	l.dispatch(ctx, ob)
	return report, nil
}

func (l *Ledger) airdropLocked(ctx context.Context, from common.Address, recipients []common.Address, each types.Amount) (*AirdropReport, *outbox, error) {
	if err := l.ready(); err != nil {
		return nil, nil, err
	}
	if !l.isAdmin(ctx) {
		return nil, nil, fmt.Errorf("%w: airdrop", ErrUnauthorized)
	}

	settings := cloneSettings(l.settings)
	if !mayMove(&settings, from, from) {
		return nil, nil, ErrTradingNotOpen
	}

	now := l.clock.Now()
	tx := l.book.Begin()
	ob := &outbox{}
	if _, err := l.autoRebase(tx, &settings, now, ob); err != nil {
		return nil, nil, err
	}

	report := &AirdropReport{ID: id.NewAirdropID(), From: from, Each: each, At: now}
	seen := make(map[common.Address]struct{}, len(recipients))
	for _, to := range recipients {
		if _, dup := seen[to]; dup || to == (common.Address{}) {
			report.Skipped = append(report.Skipped, to)
			continue
		}
		seen[to] = struct{}{}

		kind, split, err := l.move(tx, &settings, from, to, each)
		if err != nil {
			return nil, nil, fmt.Errorf("airdrop to %s: %w", to.Hex(), err)
		}
		report.Recipients = append(report.Recipients, to)
		report.Total = report.Total.Add(each)
		ob.transfers = append(ob.transfers, &plugin.TransferCompleted{
			TransferID: id.NewTransferID(),
			From:       from,
			To:         to,
			Kind:       kind,
			Amount:     split.Amount,
			Fee:        split.Fee,
			Net:        split.Net,
			At:         now,
		})
	}

	if err := l.persist(ctx, journal.KindAirdrop, report.ID.String(), tx, settings); err != nil {
		return nil, nil, err
	}
	return report, ob, nil
}
