package core

import (
	"strconv"

	"tieintrack/pkg/domain"
)

// StatusSlice is one bar of the status distribution histogram.
type StatusSlice struct {
	Name  domain.Status `json:"name"`
	Value int           `json:"value"`
	Color string        `json:"color"`
}

// ChainBar is the completion percentage of a single chain.
type ChainBar struct {
	Name       string  `json:"name"`
	Completion float64 `json:"completion"`
}

// GraphNode is one tie-in in the network view.
type GraphNode struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Status domain.Status `json:"status"`
	Color  string        `json:"color"`
	Value  int           `json:"value"`
}

// GraphLink is a directed connects edge. Broken is set when the target tie-in
// does not exist in the chain.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
	Broken bool   `json:"broken,omitempty"`
}

// Graph is the node/link projection of a chain.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// Summary feeds the dashboard tiles and the report header.
type Summary struct {
	TotalChains    int     `json:"totalChains"`
	TotalTieIns    int     `json:"totalTieIns"`
	Completed      int     `json:"completed"`
	NeedsAttention int     `json:"needsAttention"`
	Completion     float64 `json:"completion"`
}

// StatusCount is a non-zero status tally inside one chain.
type StatusCount struct {
	Status domain.Status `json:"status"`
	Count  int           `json:"count"`
}

// CompletionRatio returns the percentage of Complete tie-ins across the
// project, or 0 when it has none.
func CompletionRatio(p domain.Project) float64 {
	total, done := 0, 0
	for _, c := range p.DaisyChains {
		for _, t := range c.TieIns {
			total++
			if t.Status == domain.StatusComplete {
				done++
			}
		}
	}
	return percent(done, total)
}

// StatusDistribution counts tie-ins per status in canonical order, zero counts included.
func StatusDistribution(p domain.Project) []StatusSlice {
	counts := make(map[domain.Status]int)
	for _, c := range p.DaisyChains {
		for _, t := range c.TieIns {
			counts[t.Status]++
		}
	}
	statuses := domain.Statuses()
	out := make([]StatusSlice, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, StatusSlice{Name: s, Value: counts[s], Color: s.Color()})
	}
	return out
}

// ChainCompletion returns one bar per chain in display order.
func ChainCompletion(p domain.Project) []ChainBar {
	out := make([]ChainBar, 0, len(p.DaisyChains))
	for _, c := range p.DaisyChains {
		out = append(out, ChainBar{Name: c.Name, Completion: ChainRatio(c)})
	}
	return out
}

// NetworkGraph projects one chain into nodes and links. An unknown chain yields
// an empty graph.
func NetworkGraph(p domain.Project, chainID int) Graph {
	g := Graph{Nodes: []GraphNode{}, Links: []GraphLink{}}
	idx := p.FindChain(chainID)
	if idx < 0 {
		return g
	}
	chain := p.DaisyChains[idx]
	known := make(map[int]bool, len(chain.TieIns))
	for _, t := range chain.TieIns {
		known[t.ID] = true
		g.Nodes = append(g.Nodes, GraphNode{
			ID:     strconv.Itoa(t.ID),
			Name:   "Tie-In " + strconv.Itoa(t.ID),
			Status: t.Status,
			Color:  t.Status.Color(),
			Value:  1,
		})
	}
	for _, t := range chain.TieIns {
		for _, target := range t.Connects {
			g.Links = append(g.Links, GraphLink{
				Source: strconv.Itoa(t.ID),
				Target: strconv.Itoa(target),
				Value:  1,
				Broken: !known[target],
			})
		}
	}
	return g
}

// Summarize computes the headline counters for a project.
func Summarize(p domain.Project) Summary {
	s := Summary{TotalChains: len(p.DaisyChains)}
	for _, c := range p.DaisyChains {
		for _, t := range c.TieIns {
			s.TotalTieIns++
			if t.Status == domain.StatusComplete {
				s.Completed++
			}
			if t.Status.NeedsAttention() {
				s.NeedsAttention++
			}
		}
	}
	s.Completion = percent(s.Completed, s.TotalTieIns)
	return s
}

// ChainStatusCounts lists the statuses present in a chain with their counts.
func ChainStatusCounts(c domain.DaisyChain) []StatusCount {
	counts := make(map[domain.Status]int)
	for _, t := range c.TieIns {
		counts[t.Status]++
	}
	var out []StatusCount
	for _, s := range domain.Statuses() {
		if n := counts[s]; n > 0 {
			out = append(out, StatusCount{Status: s, Count: n})
		}
	}
	return out
}

// ChainRatio returns the completion percentage of a single chain.
func ChainRatio(c domain.DaisyChain) float64 {
	done := 0
	for _, t := range c.TieIns {
		if t.Status == domain.StatusComplete {
			done++
		}
	}
	return percent(done, len(c.TieIns))
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
