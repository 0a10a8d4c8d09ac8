package arcflow

import (
	"math"
	"sort"

	"github.com/vanderheijden86/platecut/pkg/model"
)

// YArcs converts a stage-1 pattern to its arc set under canonical
// placement: strips in strip-type index order (descending width), packed
// from position 0.
func YArcs(inst *model.Instance, pattern []int) model.ArcSet {
	arcs := make(model.ArcSet)
	pos := 0
	for j, count := range pattern {
		width := inst.Strips[j].Width
		for k := 0; k < count; k++ {
			arcs.Add(model.Arc{Start: pos, End: pos + width})
			pos += width
		}
	}
	return arcs
}

// XArcs converts a stage-2 pattern to its arc set under canonical
// placement: items in descending length order, packed from position 0.
func XArcs(inst *model.Instance, pattern []int) model.ArcSet {
	type piece struct{ length, count int }
	var pieces []piece
	for i, count := range pattern {
		if count > 0 {
			pieces = append(pieces, piece{inst.Items[i].Length, count})
		}
	}
	sort.Slice(pieces, func(a, b int) bool { return pieces[a].length > pieces[b].length })

	arcs := make(model.ArcSet)
	pos := 0
	for _, p := range pieces {
		for k := 0; k < p.count; k++ {
			arcs.Add(model.Arc{Start: pos, End: pos + p.length})
			pos += p.length
		}
	}
	return arcs
}

// YPatternFromArcs recovers a stage-1 pattern from an arc set by mapping
// each arc's size back to its strip type.
func YPatternFromArcs(inst *model.Instance, arcs model.ArcSet) []int {
	pattern := make([]int, len(inst.Strips))
	for a := range arcs {
		if j, ok := inst.WidthToStrip[a.Len()]; ok {
			pattern[j]++
		}
	}
	return pattern
}

// XPatternFromArcs recovers a stage-2 pattern from an arc set by mapping
// each arc's size back to its item type.
func XPatternFromArcs(inst *model.Instance, arcs model.ArcSet) []int {
	pattern := make([]int, len(inst.Items))
	for a := range arcs {
		if i, ok := inst.LengthToItem[a.Len()]; ok {
			pattern[i]++
		}
	}
	return pattern
}

// Flows aggregates LP column values into per-arc flows: each column with
// value above zeroTol contributes its value to every arc in its arc set.
type Flows map[model.Arc]float64

// AggregateY sums stage-1 arc flows over Y columns.
func AggregateY(inst *model.Instance, cols []model.YColumn, zeroTol float64) Flows {
	flows := make(Flows)
	for k := range cols {
		if cols[k].Value < zeroTol {
			continue
		}
		arcs := cols[k].Arcs
		if arcs == nil {
			arcs = YArcs(inst, cols[k].Pattern)
		}
		for a := range arcs {
			flows[a] += cols[k].Value
		}
	}
	return flows
}

// AggregateX sums stage-2 arc flows over the X columns of one strip type.
func AggregateX(inst *model.Instance, cols []model.XColumn, strip int, zeroTol float64) Flows {
	flows := make(Flows)
	for p := range cols {
		if cols[p].Strip != strip || cols[p].Value < zeroTol {
			continue
		}
		arcs := cols[p].Arcs
		if arcs == nil {
			arcs = XArcs(inst, cols[p].Pattern)
		}
		for a := range arcs {
			flows[a] += cols[p].Value
		}
	}
	return flows
}

// Fractional is FractionalArc as a method.
func (f Flows) Fractional(intTol float64) (model.Arc, float64, bool) {
	return FractionalArc(f, intTol)
}

// FractionalArc picks the arc whose flow's fractional part is closest to
// 0.5, skipping flows within intTol of an integer. The scan order is
// deterministic (arcs sorted by position) so equal scores resolve the same
// way on every run.
func FractionalArc(flows Flows, intTol float64) (model.Arc, float64, bool) {
	arcs := make([]model.Arc, 0, len(flows))
	for a := range flows {
		arcs = append(arcs, a)
	}
	sort.Slice(arcs, func(i, j int) bool {
		if arcs[i].Start != arcs[j].Start {
			return arcs[i].Start < arcs[j].Start
		}
		return arcs[i].End < arcs[j].End
	})

	var (
		best      model.Arc
		bestFlow  float64
		bestScore = -1.0
		found     bool
	)
	for _, a := range arcs {
		flow := flows[a]
		frac := flow - math.Floor(flow)
		if frac < intTol || frac > 1-intTol {
			continue
		}
		score := 0.5 - math.Abs(frac-0.5)
		if score > bestScore {
			bestScore = score
			best = a
			bestFlow = flow
			found = true
		}
	}
	return best, bestFlow, found
}
