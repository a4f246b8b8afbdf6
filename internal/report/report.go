// Package report renders projects and their analytics as plain-text tables
// for the terminal and for printing.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tieintrack/internal/core"
	"tieintrack/pkg/domain"
)

const generatedLayout = "Jan 2, 2006 15:04"

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func pct(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" }

// Projects lists every project with its size and completion. selected marks
// the current project, "" for none.
func Projects(w io.Writer, projects *domain.Collection, selected string) {
	t := newTable(w, "")
	t.AppendHeader(table.Row{"", "ID", "Name", "Chains", "Tie-ins", "Complete"})
	for _, p := range projects.Projects() {
		marker := ""
		if p.ID == selected {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, p.ID, p.Name, len(p.DaisyChains), p.TieInCount(), pct(core.CompletionRatio(p))})
	}
	t.AppendFooter(table.Row{"", "", "Total", "", "", projects.Len()})
	t.Render()
}

// Chains lists the chains of p with their per-status chips.
func Chains(w io.Writer, p domain.Project) {
	t := newTable(w, p.Name)
	t.AppendHeader(table.Row{"ID", "Name", "Tie-ins", "Complete", "Statuses"})
	for _, c := range p.DaisyChains {
		t.AppendRow(table.Row{c.ID, c.Name, len(c.TieIns), pct(core.ChainRatio(c)), chips(core.ChainStatusCounts(c))})
	}
	t.Render()
}

// TieIns lists the tie-ins of one chain.
func TieIns(w io.Writer, p domain.Project, c domain.DaisyChain) {
	t := newTable(w, fmt.Sprintf("%s / %s", p.Name, c.Name))
	t.AppendHeader(table.Row{"ID", "Status", "Connects"})
	for _, ti := range c.TieIns {
		t.AppendRow(table.Row{ti.ID, ti.Status, joinInts(ti.Connects)})
	}
	t.Render()
}

// Stats renders the summary tiles, the status distribution and chain completion.
func Stats(w io.Writer, p domain.Project) {
	s := core.Summarize(p)
	tiles := newTable(w, p.Name)
	tiles.AppendHeader(table.Row{"Chains", "Tie-ins", "Completed", "Needs attention", "Completion"})
	tiles.AppendRow(table.Row{s.TotalChains, s.TotalTieIns, s.Completed, s.NeedsAttention, pct(s.Completion)})
	tiles.Render()

	dist := newTable(w, "Status distribution")
	dist.AppendHeader(table.Row{"Status", "Count", "Color"})
	total := 0
	for _, slice := range core.StatusDistribution(p) {
		dist.AppendRow(table.Row{slice.Name, slice.Value, slice.Color})
		total += slice.Value
	}
	dist.AppendFooter(table.Row{"Total", total, ""})
	dist.Render()

	bars := newTable(w, "Chain completion")
	bars.AppendHeader(table.Row{"Chain", "Completion", ""})
	for _, b := range core.ChainCompletion(p) {
		bars.AppendRow(table.Row{b.Name, pct(b.Completion), bar(b.Completion, 20)})
	}
	bars.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	bars.Render()
}

// Graph renders the nodes and links of one chain.
func Graph(w io.Writer, g core.Graph) {
	nodes := newTable(w, "Nodes")
	nodes.AppendHeader(table.Row{"ID", "Name", "Status"})
	for _, n := range g.Nodes {
		nodes.AppendRow(table.Row{n.ID, n.Name, n.Status})
	}
	nodes.Render()

	links := newTable(w, "Links")
	links.AppendHeader(table.Row{"Source", "Target", ""})
	for _, l := range g.Links {
		note := ""
		if l.Broken {
			note = "missing target"
		}
		links.AppendRow(table.Row{l.Source, l.Target, note})
	}
	links.Render()
}

// Trend renders the simulated completion series.
func Trend(w io.Writer, tr core.Trend) {
	t := newTable(w, "Completion trend (simulated)")
	t.AppendHeader(table.Row{"Week", "Completion", ""})
	for _, pt := range tr.Points {
		t.AppendRow(table.Row{pt.Date, pct(pt.Completion), bar(pt.Completion, 20)})
	}
	t.Render()
}

// Timeline renders the simulated per-status series, one column per status.
func Timeline(w io.Writer, tl core.Timeline) {
	t := newTable(w, "Status timeline (simulated)")
	header := table.Row{"Week"}
	for _, s := range domain.Statuses() {
		header = append(header, string(s))
	}
	t.AppendHeader(header)
	for _, pt := range tl.Points {
		row := table.Row{pt.Date}
		for _, s := range domain.Statuses() {
			row = append(row, pt.Counts[s])
		}
		t.AppendRow(row)
	}
	t.Render()
}

// Full writes the printable project report: header, summary, distribution and
// one tie-in table per chain.
func Full(w io.Writer, p domain.Project, generated time.Time) {
	fmt.Fprintf(w, "%s Project Report\n", p.Name)
	fmt.Fprintf(w, "Generated on %s\n\n", generated.Format(generatedLayout))
	Stats(w, p)
	for _, c := range p.DaisyChains {
		fmt.Fprintln(w)
		TieIns(w, p, c)
	}
}

func chips(counts []core.StatusCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.Status, c.Count))
	}
	return strings.Join(parts, ", ")
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// bar draws v percent as a block bar of width cells.
func bar(v float64, width int) string {
	filled := int(v/100*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
