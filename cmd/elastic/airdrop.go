package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/internal/airdrop"
	"github.com/xraph/elastic/store/memory"
	"github.com/xraph/elastic/types"
)

func newAirdropCmd(root *rootOptions) *cobra.Command {
	var (
		each string
		from string
	)

	cmd := &cobra.Command{
		Use:   "airdrop <recipients.csv>",
		Short: "Check a recipient list and dry-run the airdrop against genesis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := types.ParseTokens(each)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			list, err := airdrop.Parse(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range list.Rejected {
				fmt.Fprintf(out, "line %d: %q %s\n", r.Line, r.Value, r.Reason)
			}
			fmt.Fprintf(out, "%s recipients, %d duplicates, %d rejected\n",
				humanize.Comma(int64(len(list.Recipients))), len(list.Duplicates), len(list.Rejected))

			cfg, err := root.tokenConfig()
			if err != nil {
				return err
			}
			report, remaining, err := dryRun(cmd.Context(), root, cfg, from, list.Recipients, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "sends %s tokens, sender keeps %s\n", report.Total.Display(), remaining.Display())
			return nil
		},
	}

	cmd.Flags().StringVar(&each, "amount", "1", "tokens per recipient")
	cmd.Flags().StringVar(&from, "from", "", "sending address (default: the treasury)")
	return cmd
}

// dryRun seeds a throwaway ledger from cfg and runs the airdrop as the
// treasury.
func dryRun(ctx context.Context, root *rootOptions, cfg elastic.Config, from string, recipients []common.Address, each types.Amount) (*elastic.AirdropReport, types.Amount, error) {
	l := elastic.New(memory.New(), elastic.WithConfig(cfg), elastic.WithLogger(root.logger))
	if err := l.Start(ctx); err != nil {
		return nil, types.Amount{}, err
	}
	defer l.Stop()

	sender := l.Destinations().Treasury
	if from != "" {
		if !common.IsHexAddress(from) {
			return nil, types.Amount{}, fmt.Errorf("--from: %q is not a hex address", from)
		}
		sender = common.HexToAddress(from)
	}

	report, err := l.Airdrop(elastic.WithCaller(ctx, l.Destinations().Treasury), sender, recipients, each)
	if err != nil {
		return nil, types.Amount{}, err
	}
	return report, l.BalanceOf(sender), nil
}
