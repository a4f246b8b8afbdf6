package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tieintrack/internal/report"
	"tieintrack/pkg/domain"
)

func newTieInCmd(a *app) *cobra.Command {
	var chainID int
	cmd := &cobra.Command{
		Use:     "tiein",
		Aliases: []string{"tieins", "tie-in"},
		Short:   "Manage the tie-ins of a chain",
	}
	cmd.PersistentFlags().IntVarP(&chainID, "chain", "c", 0, "chain id (defaults to the selected chain)")

	// target resolves the project and chain every subcommand works on.
	target := func() (domain.Project, domain.DaisyChain, error) {
		p, err := a.project()
		if err != nil {
			return domain.Project{}, domain.DaisyChain{}, err
		}
		c, err := a.chain(p, chainID)
		return p, c, err
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tie-ins of a chain",
			Args:  exactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				p, c, err := target()
				if err != nil {
					return err
				}
				return a.emit(c.TieIns, func(w io.Writer) { report.TieIns(w, p, c) })
			},
		},
		newTieInAddCmd(a, target),
		newTieInUpdateCmd(a, target),
		&cobra.Command{
			Use:   "status ID STATUS",
			Short: "Set the status of one tie-in",
			Example: `  tieintrack tiein status 71 complete --chain 1
  tieintrack tiein status 72 "needs splicing"`,
			Args: exactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				id, err := intArg("tie-in id", args[0])
				if err != nil {
					return err
				}
				status, err := domain.ParseStatus(args[1])
				if err != nil {
					return usageError{fmt.Sprintf("%v (valid: %v)", err, domain.Statuses())}
				}
				p, c, err := target()
				if err != nil {
					return err
				}
				if c.FindTieIn(id) < 0 {
					return domain.TieInNotFound(p.ID, c.ID, id)
				}
				return a.svc.UpdateTieInStatus(p.ID, c.ID, id, status)
			},
		},
		newTieInDeleteCmd(a, target),
	)
	return cmd
}

func newTieInAddCmd(a *app, target func() (domain.Project, domain.DaisyChain, error)) *cobra.Command {
	var (
		id       int
		connects string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tie-in to a chain",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			st, err := domain.ParseStatus(status)
			if err != nil {
				return usageError{err.Error()}
			}
			edges, err := parseConnects(connects)
			if err != nil {
				return err
			}
			p, c, err := target()
			if err != nil {
				return err
			}
			assigned, err := a.svc.CreateTieIn(p.ID, c.ID, id, edges, st)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Added tie-in %d to chain %d\n", assigned, c.ID)
			return err
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "tie-in id (defaults to the next free id)")
	cmd.Flags().StringVar(&connects, "connects", "", "comma separated ids of the next tie-ins")
	cmd.Flags().StringVar(&status, "status", string(domain.StatusPendingVerification), "initial status")
	return cmd
}

func newTieInUpdateCmd(a *app, target func() (domain.Project, domain.DaisyChain, error)) *cobra.Command {
	var (
		connects string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a tie-in's connections and status",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg("tie-in id", args[0])
			if err != nil {
				return err
			}
			p, c, err := target()
			if err != nil {
				return err
			}
			idx := c.FindTieIn(id)
			if idx < 0 {
				return domain.TieInNotFound(p.ID, c.ID, id)
			}
			current := c.TieIns[idx]
			edges, st := current.Connects, current.Status
			if cmd.Flags().Changed("connects") {
				if edges, err = parseConnects(connects); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("status") {
				if st, err = domain.ParseStatus(status); err != nil {
					return usageError{err.Error()}
				}
			}
			return a.svc.UpdateTieIn(p.ID, c.ID, id, edges, st)
		},
	}
	cmd.Flags().StringVar(&connects, "connects", "", "comma separated ids of the next tie-ins (empty clears)")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	return cmd
}

func newTieInDeleteCmd(a *app, target func() (domain.Project, domain.DaisyChain, error)) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tie-in",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := intArg("tie-in id", args[0])
			if err != nil {
				return err
			}
			p, c, err := target()
			if err != nil {
				return err
			}
			if err := requireYes(yes, fmt.Sprintf("tie-in %d", id)); err != nil {
				return err
			}
			return a.svc.DeleteTieIn(p.ID, c.ID, id)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}
