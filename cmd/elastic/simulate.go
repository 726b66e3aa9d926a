package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xraph/elastic/internal/sim"
)

func newSimulateCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "simulate <scenario>",
		Short: "Replay a scenario file against an in-memory ledger",
		Long: `Replay a scenario file against an in-memory ledger driven by a fake clock.

The scenario holds a token section, in the same shape as the config file,
and a list of steps such as transfer, advance, rebase, launch and
expect_balance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := sim.Load(args[0])
			if err != nil {
				return err
			}
			report, runErr := sim.Run(cmd.Context(), sc, root.logger)
			if report == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
				return runErr
			}
			printReport(out, report)
			return runErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(out io.Writer, r *sim.Report) {
	fmt.Fprintf(out, "scenario %q\n\n", r.Name)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOP\tRESULT")
	for _, s := range r.Steps {
		result := s.Detail
		if s.Err != "" {
			result = "error: " + s.Err
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Index, s.Op, result)
	}
	_ = tw.Flush()

	if r.Holders == nil {
		return
	}
	fmt.Fprintf(out, "\nepoch %d, total supply %s, %d swaps, %d failed steps\n\n",
		r.Epoch, r.TotalSupply.Display(), r.Swaps, r.Failed)
	if !r.Proceeds.IsZero() {
		fmt.Fprintf(out, "swap proceeds: treasury %s, liquidity relief %s, insurance %s\n\n",
			r.Proceeds.Treasury.Display(), r.Proceeds.LiquidityRelief.Display(), r.Proceeds.Insurance.Display())
	}

	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ADDRESS\tBALANCE\tFEE EXEMPT\tREBASE EXEMPT\t")
	for _, h := range r.Holders {
		if h.Balance.IsZero() {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t\n", h.Address.Hex(), h.Balance.Display(), h.FeeExempt, h.RebaseExempt)
	}
	_ = tw.Flush()
}
