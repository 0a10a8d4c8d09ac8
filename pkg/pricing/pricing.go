// Package pricing solves the two knapsack-shaped subproblems of the
// column-generation loop: SP1 proposes stage-1 plate patterns over the
// width, SP2 proposes stage-2 strip patterns over the length, one
// subproblem per strip type.
//
// Three interchangeable backends exist. Knapsack (branch-and-bound) and DP
// (unbounded knapsack) ignore arc duals and refuse to run once branching
// constraints exist; the arc-flow backend prices on the position network
// and honors inherited arc bounds, so it is the only backend valid below
// the root.
package pricing

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/platecut/pkg/arcflow"
	"github.com/vanderheijden86/platecut/pkg/master"
	"github.com/vanderheijden86/platecut/pkg/model"
)

// Method selects a pricing backend.
type Method int

const (
	Knapsack Method = iota
	ArcFlow
	DP
)

func (m Method) String() string {
	switch m {
	case Knapsack:
		return "knapsack"
	case ArcFlow:
		return "arcflow"
	case DP:
		return "dp"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod reads a backend name from config or flags.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "knapsack":
		return Knapsack, nil
	case "arcflow", "arc-flow", "arc_flow":
		return ArcFlow, nil
	case "dp":
		return DP, nil
	}
	return 0, fmt.Errorf("unknown pricing method %q (want knapsack, arcflow or dp)", s)
}

// SP1 prices one stage-1 column. It returns nil when no column improves
// the master by more than rcTol (including the case where the branching
// bounds leave the pricing network infeasible). Knapsack and DP return
// ErrInvalidBackend when bounds are non-empty.
func SP1(method Method, inst *model.Instance, net *arcflow.Network,
	bounds model.ArcBounds, duals *master.Duals, rcTol float64) (*model.YColumn, error) {

	values := make([]float64, len(inst.Strips))
	weights := make([]int, len(inst.Strips))
	for j, s := range inst.Strips {
		values[j] = duals.StripBalance[j]
		weights[j] = s.Width
	}

	var (
		value   float64
		pattern []int
		arcs    model.ArcSet
	)
	switch method {
	case Knapsack:
		if !bounds.Empty() {
			return nil, fmt.Errorf("sp1 knapsack under arc branching: %w", model.ErrInvalidBackend)
		}
		value, pattern = solveKnapsackBB(values, weights, inst.StockWidth)
		arcs = arcflow.YArcs(inst, pattern)
	case DP:
		if !bounds.Empty() {
			return nil, fmt.Errorf("sp1 dp under arc branching: %w", model.ErrInvalidBackend)
		}
		value, pattern = solveKnapsackDP(values, weights, inst.StockWidth)
		arcs = arcflow.YArcs(inst, pattern)
	case ArcFlow:
		reward := func(a model.Arc) float64 {
			r := 0.0
			if j, ok := inst.WidthToStrip[a.Len()]; ok {
				r = duals.StripBalance[j]
			}
			return r - duals.SP1Arc[a]
		}
		path, ok := solveArcFlow(net, bounds, reward)
		if !ok {
			return nil, nil
		}
		value = path.value
		pattern = arcflow.YPatternFromArcs(inst, path.arcs)
		arcs = path.arcs
	default:
		return nil, fmt.Errorf("sp1: %w", model.ErrInvalidBackend)
	}

	// A stage-1 column costs one plate: improving iff value > 1.
	if value <= 1+rcTol {
		return nil, nil
	}
	return &model.YColumn{Pattern: pattern, Arcs: arcs}, nil
}

// SP2 prices one stage-2 column for the given strip type. Improvement is
// measured against the strip's balance dual v_tau.
func SP2(method Method, inst *model.Instance, net *arcflow.Network, strip int,
	bounds model.ArcBounds, duals *master.Duals, rcTol float64) (*model.XColumn, error) {

	eligible := inst.ItemsOfStrip(strip)

	var (
		value   float64
		pattern []int
		arcs    model.ArcSet
	)
	switch method {
	case Knapsack, DP:
		if !bounds.Empty() {
			return nil, fmt.Errorf("sp2 %v under arc branching: %w", method, model.ErrInvalidBackend)
		}
		values := make([]float64, len(eligible))
		weights := make([]int, len(eligible))
		for k, i := range eligible {
			values[k] = duals.Demand[i]
			weights[k] = inst.Items[i].Length
		}
		var counts []int
		if method == Knapsack {
			value, counts = solveKnapsackBB(values, weights, inst.StockLength)
		} else {
			value, counts = solveKnapsackDP(values, weights, inst.StockLength)
		}
		pattern = make([]int, len(inst.Items))
		for k, i := range eligible {
			pattern[i] = counts[k]
		}
		arcs = arcflow.XArcs(inst, pattern)
	case ArcFlow:
		mu := duals.SP2Arc[strip]
		reward := func(a model.Arc) float64 {
			r := 0.0
			if i, ok := inst.LengthToItem[a.Len()]; ok {
				r = duals.Demand[i]
			}
			return r - mu[a]
		}
		path, ok := solveArcFlow(net, bounds, reward)
		if !ok {
			return nil, nil
		}
		value = path.value
		pattern = arcflow.XPatternFromArcs(inst, path.arcs)
		arcs = path.arcs
	default:
		return nil, fmt.Errorf("sp2: %w", model.ErrInvalidBackend)
	}

	// A stage-2 column consumes one strip of type tau: improving iff its
	// value beats the strip's own dual price.
	if value <= duals.StripBalance[strip]+rcTol {
		return nil, nil
	}
	return &model.XColumn{Strip: strip, Pattern: pattern, Arcs: arcs}, nil
}
