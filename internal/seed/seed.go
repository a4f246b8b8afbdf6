// Package seed provides the sample collection loaded on first run or when the
// store cannot be read.
package seed

import (
	"strconv"

	"tieintrack/pkg/domain"
)

const (
	pv = domain.StatusPendingVerification
	pl = domain.StatusPendingLocates
	nc = domain.StatusNeedsConstruction
	cs = domain.StatusConstructionStarted
	ns = domain.StatusNeedsStingray
	sp = domain.StatusNeedsSplicing
	ok = domain.StatusComplete
)

// Projects returns a fresh copy of the two sample projects.
func Projects() *domain.Collection {
	return domain.NewCollection(
		domain.Project{
			ID:   "FB-HDH02A",
			Name: "FB-HDH02A",
			DaisyChains: []domain.DaisyChain{
				chain(1, 70, cs, ns, sp, nc, pl, pv, ok, pv),
				chain(2, 80, nc, pl, pv, ok, ok, ok, ok, ok),
				chain(3, 90, ok, ok, sp, cs, pv, pl, nc, ns),
				chain(4, 100, repeat(pv, 8)...),
				chain(5, 110, append(repeat(ok, 3), repeat(nc, 5)...)...),
				chain(6, 120, ok, ok, ok, ns, sp, cs, pl, pv),
			},
		},
		domain.Project{
			ID:   "FB-HDH03B",
			Name: "FB-HDH03B",
			DaisyChains: []domain.DaisyChain{
				chain(1, 130, append(repeat(ok, 5), repeat(nc, 3)...)...),
				chain(2, 140, ok, sp, ok, sp, ok, sp, ok, sp),
			},
		},
	)
}

// chain builds "Chain <id>" as a linear run of tie-ins numbered from first,
// each connected to the next.
func chain(id, first int, statuses ...domain.Status) domain.DaisyChain {
	c := domain.DaisyChain{ID: id, Name: "Chain " + strconv.Itoa(id), TieIns: make([]domain.TieIn, len(statuses))}
	for i, st := range statuses {
		connects := []int{}
		if i < len(statuses)-1 {
			connects = []int{first + i + 1}
		}
		c.TieIns[i] = domain.TieIn{ID: first + i, Connects: connects, Status: st}
	}
	return c
}

func repeat(st domain.Status, n int) []domain.Status {
	out := make([]domain.Status, n)
	for i := range out {
		out[i] = st
	}
	return out
}
