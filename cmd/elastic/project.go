package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xraph/elastic/internal/projection"
	"github.com/xraph/elastic/types"
)

func newProjectCmd(root *rootOptions) *cobra.Command {
	var (
		supply   string
		horizon  time.Duration
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project supply growth under the configured rebase schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.tokenConfig()
			if err != nil {
				return err
			}
			schedule, err := cfg.Schedule()
			if err != nil {
				return err
			}
			if supply == "" {
				supply = cfg.InitialSupply
			}
			start, err := types.ParseTokens(supply)
			if err != nil {
				return err
			}

			points, err := projection.Project(schedule, start, horizon, interval)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "epoch %s, rate %s%% per epoch, %s%% APY\n\n",
				schedule.EpochDuration,
				projection.EpochRate(schedule).String(),
				humanize.CommafWithDigits(projection.APY(schedule).InexactFloat64(), 2),
			)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "DAY\tEPOCH\tSUPPLY\tGROWTH %\t")
			for _, p := range points {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
					humanize.FormatFloat("#,###.##", p.Elapsed.Hours()/24),
					humanize.Comma(int64(p.Epoch)),
					p.Supply.Display(),
					p.Growth.StringFixed(4),
				)
			}
			return tw.Flush()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&supply, "supply", "", "starting supply in tokens (default: the configured initial supply)")
	flags.DurationVar(&horizon, "horizon", projection.Year, "how far ahead to project")
	flags.DurationVar(&interval, "interval", 30*24*time.Hour, "sampling interval")
	return cmd
}
