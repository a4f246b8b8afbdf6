package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tieintrack/internal/report"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Create, rename, delete and select projects",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List projects",
			Args:  exactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				projects := a.svc.Projects()
				selected := a.svc.Selection().ProjectID
				return a.emit(projects, func(w io.Writer) { report.Projects(w, projects, selected) })
			},
		},
		newProjectAddCmd(a),
		newProjectRenameCmd(a),
		newProjectDeleteCmd(a),
		&cobra.Command{
			Use:   "select ID",
			Short: "Select the project later commands default to",
			Args:  exactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if err := a.svc.SelectProject(args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(a.out, "Selected project %s\n", args[0])
				return err
			},
		},
	)
	return cmd
}

func newProjectAddCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add ID",
		Short: "Create an empty project and select it",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if name == "" {
				name = args[0]
			}
			return a.svc.CreateProject(args[0], name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the id)")
	return cmd
}

func newProjectRenameCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "rename OLD_ID NEW_ID",
		Short: "Change a project's id and name, keeping its chains",
		Args:  exactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if name == "" {
				p, err := a.svc.Project(args[0])
				if err != nil {
					return err
				}
				name = p.Name
			}
			return a.svc.RenameProject(args[0], args[1], name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name (defaults to the current name)")
	return cmd
}

func newProjectDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project and all of its chains",
		Args:  exactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireYes(yes, "project "+args[0]); err != nil {
				return err
			}
			return a.svc.DeleteProject(args[0])
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}
