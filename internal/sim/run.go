package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/fee"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/store/memory"
	"github.com/xraph/elastic/types"
)

// StepResult records the outcome of one step.
type StepResult struct {
	Index  int    `json:"index"`
	Op     Op     `json:"op"`
	Detail string `json:"detail,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Report is the ledger state after a scenario run.
type Report struct {
	Name        string           `json:"name"`
	Steps       []StepResult     `json:"steps"`
	Holders     []elastic.Holder `json:"holders"`
	TotalSupply types.Amount     `json:"total_supply"`
	Epoch       uint64           `json:"epoch"`
	Swaps       int              `json:"swaps"`
	Failed      int              `json:"failed"`

	// Proceeds is what the swap collaborator sold, split by fee category.
	Proceeds fee.Tally `json:"proceeds"`
}

// Run replays sc against a fresh in-memory ledger.
func Run(ctx context.Context, sc *Scenario, logger *slog.Logger, plugins ...plugin.Plugin) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	clock := clockwork.NewFakeClockAt(sc.Start)
	opts := []elastic.Option{
		elastic.WithConfig(sc.Token),
		elastic.WithClock(clock),
		elastic.WithLogger(logger),
	}
	sw := &swapCollaborator{}
	if sc.SwapCollaborator {
		opts = append(opts, elastic.WithPlugin(sw))
	}
	for _, p := range plugins {
		opts = append(opts, elastic.WithPlugin(p))
	}

	l := elastic.New(memory.New(), opts...)
	if err := l.Start(ctx); err != nil {
		return nil, err
	}
	defer l.Stop()

	r := &runner{l: l, clock: clock}
	report := &Report{Name: sc.Name}
	for i, step := range sc.Steps {
		res := StepResult{Index: i, Op: step.Op}
		detail, err := r.apply(ctx, step)
		res.Detail = detail
		if err != nil {
			res.Err = err.Error()
			report.Failed++
			logger.Warn("scenario step failed", "index", i, "op", step.Op, "error", err)
			if !sc.ContinueOnError {
				report.Steps = append(report.Steps, res)
				return report, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
			}
		}
		report.Steps = append(report.Steps, res)
	}

	report.Holders = l.Holders()
	report.TotalSupply = l.TotalSupply()
	report.Epoch = l.State().LastEpoch
	report.Swaps = sw.count()
	report.Proceeds = sw.distributed()
	return report, nil
}

type runner struct {
	l     *elastic.Ledger
	clock *clockwork.FakeClock
}

func (r *runner) apply(ctx context.Context, s Step) (string, error) {
	if s.Caller != "" {
		caller, err := address("caller", s.Caller)
		if err != nil {
			return "", err
		}
		ctx = elastic.WithCaller(ctx, caller)
	}

	switch s.Op {
	case OpAdvance:
		r.clock.Advance(s.Duration)
		return fmt.Sprintf("now %s, %d epochs pending", r.clock.Now().Format("2006-01-02 15:04:05"), r.l.PendingEpochs()), nil

	case OpRebase:
		res, err := r.l.Rebase(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("applied %d, remaining %d", res.Applied, res.Remaining), nil

	case OpCatchUp:
		var applied uint64
		for {
			res, err := r.l.Rebase(ctx)
			if errors.Is(err, elastic.ErrNoPendingRebases) {
				break
			}
			if err != nil {
				return "", err
			}
			applied += res.Applied
		}
		return fmt.Sprintf("applied %d epochs", applied), nil

	case OpOpenTrade:
		return "", r.l.OpenTrade(ctx)

	case OpLaunch:
		return "", r.l.LaunchToken(ctx)

	case OpSetFees:
		side, err := parseSide(s.Side)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s total %d bps", side, s.Rates.Total()), r.l.SetFees(ctx, side, s.Rates)

	case OpSetFeeExempt, OpSetRebaseExempt, OpAllowPreLaunch:
		addr, err := address("address", s.Address)
		if err != nil {
			return "", err
		}
		switch s.Op {
		case OpSetFeeExempt:
			return "", r.l.SetFeeExempt(ctx, addr, s.Enabled)
		case OpSetRebaseExempt:
			return "", r.l.SetRebaseExempt(ctx, addr, s.Enabled)
		default:
			return "", r.l.AllowPreLaunchTransfer(ctx, addr, s.Enabled)
		}

	case OpExpectBalance:
		addr, err := address("address", s.Address)
		if err != nil {
			return "", err
		}
		want, err := types.ParseTokens(s.Amount)
		if err != nil {
			return "", err
		}
		got := r.l.BalanceOf(addr)
		if !got.Equal(want) {
			return "", fmt.Errorf("%w: %s holds %s, want %s", ErrExpectation, addr.Hex(), got.Display(), want.Display())
		}
		return got.Display(), nil
	}

	amount, err := types.ParseTokens(s.Amount)
	if err != nil {
		return "", err
	}

	switch s.Op {
	case OpTransfer, OpTransferFrom:
		from, err := address("from", s.From)
		if err != nil {
			return "", err
		}
		to, err := address("to", s.To)
		if err != nil {
			return "", err
		}
		transfer := r.l.Transfer
		if s.Op == OpTransferFrom {
			transfer = r.l.TransferFrom
		}
		rc, err := transfer(ctx, from, to, amount)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s, fee %s", rc.Kind, rc.Split.Net.Display(), rc.Split.Fee.Display()), nil

	case OpApprove:
		spender, err := address("to", s.To)
		if err != nil {
			return "", err
		}
		return "", r.l.Approve(ctx, spender, amount)

	case OpAirdrop:
		from, err := address("from", s.From)
		if err != nil {
			return "", err
		}
		recipients := make([]common.Address, 0, len(s.Recipients))
		for _, h := range s.Recipients {
			a, err := address("recipients", h)
			if err != nil {
				return "", err
			}
			recipients = append(recipients, a)
		}
		rep, err := r.l.Airdrop(ctx, from, recipients, amount)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d recipients, %d skipped, total %s", len(rep.Recipients), len(rep.Skipped), rep.Total.Display()), nil
	}

	return "", fmt.Errorf("%w %q", ErrUnknownOp, s.Op)
}

func address(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("sim: %s: %q is not a hex address", field, s)
	}
	return common.HexToAddress(s), nil
}
