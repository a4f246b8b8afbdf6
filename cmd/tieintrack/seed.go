package main

import (
	"github.com/spf13/cobra"

	"tieintrack/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace every project with the sample data",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			if !yes {
				return usageError{"refusing to replace all projects without --yes"}
			}
			return a.svc.ReplaceAll(seed.Projects())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm replacing the current data")
	return cmd
}
