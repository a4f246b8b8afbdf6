package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tieintrack/internal/report"
	"tieintrack/pkg/domain"
)

func newChainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chain",
		Aliases: []string{"chains"},
		Short:   "Manage the daisy chains of a project",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List chains with their completion",
			Args:  exactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				p, err := a.project()
				if err != nil {
					return err
				}
				return a.emit(p.DaisyChains, func(w io.Writer) { report.Chains(w, p) })
			},
		},
		newChainAddCmd(a),
		newChainRenameCmd(a),
		newChainDeleteCmd(a),
		&cobra.Command{
			Use:   "select ID",
			Short: "Select a chain of the current project",
			Args:  exactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				id, err := intArg("chain id", args[0])
				if err != nil {
					return err
				}
				p, err := a.project()
				if err != nil {
					return err
				}
				if err := a.svc.SelectProject(p.ID); err != nil {
					return err
				}
				if err := a.svc.SelectChain(id); err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "Selected chain %d of %s\n", id, p.ID)
				return err
			},
		},
	)
	return cmd
}

func newChainAddCmd(a *app) *cobra.Command {
	var (
		id   int
		name string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an empty chain",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			assigned, err := a.svc.CreateChain(p.ID, id, name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Created chain %d in %s\n", assigned, p.ID)
			return err
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "chain id (defaults to the next free id)")
	cmd.Flags().StringVar(&name, "name", "", `chain name (defaults to "Chain N")`)
	return cmd
}

func newChainRenameCmd(a *app) *cobra.Command {
	var (
		newID int
		name  string
	)
	cmd := &cobra.Command{
		Use:   "rename ID",
		Short: "Change a chain's id or name",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := intArg("chain id", args[0])
			if err != nil {
				return err
			}
			p, err := a.project()
			if err != nil {
				return err
			}
			current, ok := p.Chain(id)
			if !ok {
				return domain.ChainNotFound(p.ID, id)
			}
			if newID == 0 {
				newID = id
			}
			if name == "" {
				name = current.Name
			}
			return a.svc.RenameChain(p.ID, id, newID, name)
		},
	}
	cmd.Flags().IntVar(&newID, "new-id", 0, "new chain id (defaults to the current id)")
	cmd.Flags().StringVar(&name, "name", "", "new chain name (defaults to the current name)")
	return cmd
}

func newChainDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a chain and its tie-ins",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := intArg("chain id", args[0])
			if err != nil {
				return err
			}
			p, err := a.project()
			if err != nil {
				return err
			}
			if err := requireYes(yes, fmt.Sprintf("chain %d", id)); err != nil {
				return err
			}
			return a.svc.DeleteChain(p.ID, id)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}
