package main

import (
	"io"

	"github.com/spf13/cobra"

	"tieintrack/internal/core"
	"tieintrack/internal/report"
	"tieintrack/pkg/domain"
)

// stats is the --json shape of the stats command.
type stats struct {
	Summary      core.Summary       `json:"summary"`
	Distribution []core.StatusSlice `json:"distribution"`
	Chains       []core.ChainBar    `json:"chains"`
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show summary tiles, status distribution and chain completion",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			out := stats{
				Summary:      core.Summarize(p),
				Distribution: core.StatusDistribution(p),
				Chains:       core.ChainCompletion(p),
			}
			return a.emit(out, func(w io.Writer) { report.Stats(w, p) })
		},
	}
}

func newGraphCmd(a *app) *cobra.Command {
	var chainID int
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the tie-in network of one chain",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			c, err := a.chain(p, chainID)
			if err != nil {
				return err
			}
			g := core.NetworkGraph(p, c.ID)
			return a.emit(g, func(w io.Writer) { report.Graph(w, g) })
		},
	}
	cmd.Flags().IntVarP(&chainID, "chain", "c", 0, "chain id (defaults to the selected chain)")
	return cmd
}

func newTrendCmd(a *app) *cobra.Command {
	var seedValue uint64
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show a simulated eight week completion trend",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			tr := core.SyntheticTrendWith(p, a.now(), a.rng(seedValue))
			return a.emit(tr, func(w io.Writer) { report.Trend(w, tr) })
		},
	}
	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed for a repeatable series (0 is random)")
	return cmd
}

func newTimelineCmd(a *app) *cobra.Command {
	var seedValue uint64
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show a simulated eight week status timeline",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			tl := core.SyntheticStatusTimelineWith(p, a.now(), a.rng(seedValue))
			return a.emit(tl, func(w io.Writer) { report.Timeline(w, tl) })
		},
	}
	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed for a repeatable series (0 is random)")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the full project report",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			type projectReport struct {
				Project domain.Project `json:"project"`
				stats
			}
			out := projectReport{Project: p, stats: stats{
				Summary:      core.Summarize(p),
				Distribution: core.StatusDistribution(p),
				Chains:       core.ChainCompletion(p),
			}}
			return a.emit(out, func(w io.Writer) { report.Full(w, p, a.now()) })
		},
	}
}
