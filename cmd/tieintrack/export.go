package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		all  bool
		list bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot to the configured blob store",
		Long: `Writes the selected project (or every project with --all) as a JSON snapshot
under exports/<scope>/ in the configured blob store. --list shows earlier exports.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope := ""
			if !all {
				p, err := a.project()
				if err != nil {
					return err
				}
				scope = p.ID
			}
			if list {
				infos, err := a.stack.Exporter.List(cmd.Context(), scope)
				if err != nil {
					return err
				}
				return a.emit(infos, func(w io.Writer) {
					t := table.NewWriter()
					t.SetOutputMirror(w)
					t.SetStyle(table.StyleLight)
					t.AppendHeader(table.Row{"Key", "Size", "Modified"})
					for _, info := range infos {
						t.AppendRow(table.Row{info.Key, info.Size, info.LastModified.Format("2006-01-02 15:04:05")})
					}
					t.Render()
				})
			}
			info, err := a.stack.Exporter.Export(cmd.Context(), a.svc.Projects(), scope)
			if err != nil {
				return err
			}
			return a.emit(info, func(w io.Writer) { _, _ = fmt.Fprintf(w, "Exported %s (%d bytes)\n", info.Key, info.Size) })
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "export every project")
	cmd.Flags().BoolVar(&list, "list", false, "list earlier exports instead of writing one")
	return cmd
}
