package pricing

import (
	"math"
	"sort"

	"github.com/vanderheijden86/platecut/pkg/arcflow"
	"github.com/vanderheijden86/platecut/pkg/model"
)

// pathResult is the best source-to-sink pricing path: its total reward and
// the placement arcs it traverses (the waste tail carries no arcs).
type pathResult struct {
	value float64
	arcs  model.ArcSet
}

// solveArcFlow finds the maximum-reward path through the position network
// under the node's arc bounds. Disabled arcs (zero constraints or upper
// bound 0) are removed; lower-bounded arcs are forced onto the path. A
// zero-reward waste tail after the last placed piece is always available,
// so patterns that do not fill the capacity exactly stay reachable.
//
// ok is false when the bounds are contradictory: a forced arc that is also
// disabled, overlapping forced arcs, a forced arc unreachable from its
// predecessor, or a lower bound above 1 (a 0/1 path cannot satisfy it).
func solveArcFlow(net *arcflow.Network, bounds model.ArcBounds, reward func(model.Arc) float64) (pathResult, bool) {
	disabled := make(map[model.Arc]bool)
	for a := range bounds.Zero {
		disabled[a] = true
	}
	for a, ub := range bounds.Upper {
		if ub <= 0 {
			disabled[a] = true
		}
	}

	var forced []model.Arc
	for a, lb := range bounds.Lower {
		if lb <= 0 {
			continue
		}
		if lb > 1 {
			return pathResult{}, false
		}
		if disabled[a] || !net.HasArc(a) {
			return pathResult{}, false
		}
		forced = append(forced, a)
	}
	sort.Slice(forced, func(i, j int) bool { return forced[i].Start < forced[j].Start })
	for i := 1; i < len(forced); i++ {
		if forced[i-1].End > forced[i].Start {
			return pathResult{}, false
		}
	}

	result := pathResult{arcs: make(model.ArcSet)}
	cur := 0
	for _, f := range forced {
		val, pred := longestFrom(net, disabled, reward, cur)
		if math.IsInf(val[f.Start], -1) {
			return pathResult{}, false
		}
		collectPath(net, pred, cur, f.Start, result.arcs)
		result.value += val[f.Start] + reward(f)
		result.arcs.Add(f)
		cur = f.End
	}

	// Final segment: stop wherever is most profitable; the tail to the sink
	// is free waste.
	val, pred := longestFrom(net, disabled, reward, cur)
	bestPos, bestVal := cur, 0.0
	for pos := cur; pos <= net.Capacity; pos++ {
		if v := val[pos]; v > bestVal {
			bestVal = v
			bestPos = pos
		}
	}
	collectPath(net, pred, cur, bestPos, result.arcs)
	result.value += bestVal

	return result, true
}

// longestFrom runs the longest-path DP over the network's topological
// position order, starting at the given position. val is indexed by
// position (-Inf where unreachable); pred holds the arc index used to
// reach each position.
func longestFrom(net *arcflow.Network, disabled map[model.Arc]bool, reward func(model.Arc) float64, start int) ([]float64, []int) {
	val := make([]float64, net.Capacity+1)
	pred := make([]int, net.Capacity+1)
	for i := range val {
		val[i] = math.Inf(-1)
		pred[i] = -1
	}
	val[start] = 0

	for _, pos := range net.Positions {
		if pos < start || math.IsInf(val[pos], -1) {
			continue
		}
		for _, idx := range net.Out[pos] {
			arc := net.Arcs[idx]
			if disabled[arc] {
				continue
			}
			if cand := val[pos] + reward(arc); cand > val[arc.End] {
				val[arc.End] = cand
				pred[arc.End] = idx
			}
		}
	}
	return val, pred
}

// collectPath walks predecessor arcs from end back to start and adds them
// to arcs.
func collectPath(net *arcflow.Network, pred []int, start, end int, arcs model.ArcSet) {
	for pos := end; pos > start; {
		idx := pred[pos]
		if idx < 0 {
			return
		}
		arc := net.Arcs[idx]
		arcs.Add(arc)
		pos = arc.Start
	}
}
