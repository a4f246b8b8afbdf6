package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tieintrack/internal/config"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tieintrack",
		Short: "Track tie-in progress across projects and daisy chains",
		Long: `tieintrack records the status of every tie-in in a project's daisy chains
and reports completion, status distribution and network layout.

Data is stored in the configured primary store (SQLite by default) and mirrored
to a JSON document fallback.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err.Error()}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath, "path to the YAML config file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")
	flags.StringVarP(&a.projectID, "project", "p", "", "project id (defaults to the selected project)")

	root.AddCommand(
		newProjectCmd(a),
		newChainCmd(a),
		newTieInCmd(a),
		newStatsCmd(a),
		newGraphCmd(a),
		newTrendCmd(a),
		newTimelineCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newSeedCmd(a),
		newConfigCmd(a),
	)
	return root
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{fmt.Sprintf("%s expects %d argument(s), got %d", cmd.CommandPath(), n, len(args))}
		}
		return nil
	}
}

func intArg(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return 0, usageError{fmt.Sprintf("%s must be a positive integer, got %q", name, raw)}
	}
	return v, nil
}

// parseConnects reads a comma separated list of tie-in ids.
func parseConnects(raw string) ([]int, error) {
	out := []int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := intArg("connects", part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func requireYes(yes bool, what string) error {
	if !yes {
		return usageError{fmt.Sprintf("refusing to delete %s without --yes", what)}
	}
	return nil
}
