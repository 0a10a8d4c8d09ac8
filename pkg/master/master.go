// Package master builds and solves the restricted master LP of the
// column-generation loop.
//
// The base rows are the strip-balance rows (stage-1 production covers
// stage-2 consumption, one per strip type) and the demand rows (one per
// item type). At non-root nodes the accumulated arc-branching constraints
// are appended as extra rows; each extra row is described structurally by
// an ArcRule, so freshly priced columns get their coefficients from the
// rule table rather than from parsing row names.
package master

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/platecut/internal/lp"
	"github.com/vanderheijden86/platecut/pkg/model"
)

// Kind is an arc-branching constraint type.
type Kind int

const (
	// Zero disables the arc entirely (flow <= 0).
	Zero Kind = iota
	// Upper bounds the arc's aggregate flow from above.
	Upper
	// Lower bounds the arc's aggregate flow from below.
	Lower
)

func (k Kind) String() string {
	switch k {
	case Zero:
		return "zero"
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ArcRule is one arc-branching constraint. Strip is -1 for SP1 (width
// direction) rules; for SP2 rules it names the strip type whose X columns
// the row sums over.
type ArcRule struct {
	Kind  Kind
	Arc   model.Arc
	Strip int
	Bound int
}

// Applies reports whether a Y column (strip == -1) or an X column of the
// given strip type contributes coefficient 1 to this rule's row.
func (r ArcRule) Applies(strip int, arcs model.ArcSet) bool {
	if r.Strip != strip {
		return false
	}
	return arcs != nil && arcs.Has(r.Arc)
}

// Duals carries every dual value pricing needs, re-extracted after each
// solve.
type Duals struct {
	// StripBalance is v_j, one per strip type.
	StripBalance []float64
	// Demand is pi_i, one per item type.
	Demand []float64
	// SP1Arc is mu^1_a for each SP1 arc-branching row, published as the
	// negated LP row dual: pricing subtracts mu from an arc's reward, so a
	// binding upper/zero row (raw dual <= 0) surfaces as a positive penalty
	// and a binding lower row as a negative one.
	SP1Arc map[model.Arc]float64
	// SP2Arc is mu^2_{tau,a} for each SP2 arc-branching row, by strip type,
	// in the same sign convention.
	SP2Arc map[int]map[model.Arc]float64
}

// Solution is an optimal master solve.
type Solution struct {
	Objective float64
	// YValues and XValues are the primal values in column insertion order.
	YValues []float64
	XValues []float64
	Duals   Duals
}

// RMP is a restricted master problem. Columns are only ever appended.
type RMP struct {
	inst    *model.Instance
	prob    *lp.Problem
	rules   []ArcRule
	zeroTol float64

	baseRows int
	ruleRow  []int // row index of each rule

	// Column bookkeeping: LP column index per Y / X column, in insertion
	// order.
	yCols []int
	xCols []int
}

// New builds the master over the node's column pool and arc rules.
// Every column must carry its arc set when rules are present.
func New(inst *model.Instance, ys []model.YColumn, xs []model.XColumn, rules []ArcRule, zeroTol float64) *RMP {
	m := &RMP{
		inst:    inst,
		prob:    lp.NewProblem(),
		rules:   rules,
		zeroTol: zeroTol,
	}

	// Strip-balance rows: production - consumption >= 0.
	for range inst.Strips {
		m.prob.AddRow(lp.GE, 0)
	}
	// Demand rows: >= d_i.
	for _, it := range inst.Items {
		m.prob.AddRow(lp.GE, float64(it.Demand))
	}
	m.baseRows = m.prob.NumRows()

	// One row per accumulated arc constraint.
	m.ruleRow = make([]int, len(rules))
	for k, rule := range rules {
		switch rule.Kind {
		case Zero:
			m.ruleRow[k] = m.prob.AddRow(lp.LE, 0)
		case Upper:
			m.ruleRow[k] = m.prob.AddRow(lp.LE, float64(rule.Bound))
		case Lower:
			m.ruleRow[k] = m.prob.AddRow(lp.GE, float64(rule.Bound))
		}
	}

	for i := range ys {
		m.AddY(ys[i])
	}
	for i := range xs {
		m.AddX(xs[i])
	}
	return m
}

// AddY appends a stage-1 column (objective coefficient 1).
func (m *RMP) AddY(col model.YColumn) {
	coef := make(map[int]float64)
	for j, n := range col.Pattern {
		if n != 0 {
			coef[j] = float64(n)
		}
	}
	for k, rule := range m.rules {
		if rule.Applies(-1, col.Arcs) {
			coef[m.ruleRow[k]] = 1
		}
	}
	m.yCols = append(m.yCols, m.prob.AddColumn(1, coef))
}

// AddX appends a stage-2 column (objective coefficient 0). It consumes one
// strip of its type per use.
func (m *RMP) AddX(col model.XColumn) {
	coef := map[int]float64{col.Strip: -1}
	for i, n := range col.Pattern {
		if n != 0 {
			coef[len(m.inst.Strips)+i] = float64(n)
		}
	}
	for k, rule := range m.rules {
		if rule.Applies(col.Strip, col.Arcs) {
			coef[m.ruleRow[k]] = 1
		}
	}
	m.xCols = append(m.xCols, m.prob.AddColumn(0, coef))
}

// NumY and NumX return the column counts.
func (m *RMP) NumY() int { return len(m.yCols) }
func (m *RMP) NumX() int { return len(m.xCols) }

// Solve runs the LP. A nil solution with a nil error means the inherited
// branching rows made the node infeasible; any unexpected backend state is
// ErrBackend.
func (m *RMP) Solve() (*Solution, error) {
	raw, err := m.prob.Solve()
	if err != nil {
		return nil, fmt.Errorf("master solve: %v: %w", err, model.ErrBackend)
	}
	switch raw.Status {
	case lp.StatusOptimal:
	case lp.StatusInfeasible:
		return nil, nil
	default:
		return nil, fmt.Errorf("master solve ended %v: %w", raw.Status, model.ErrBackend)
	}

	sol := &Solution{
		Objective: raw.Objective,
		YValues:   make([]float64, len(m.yCols)),
		XValues:   make([]float64, len(m.xCols)),
		Duals: Duals{
			StripBalance: make([]float64, len(m.inst.Strips)),
			Demand:       make([]float64, len(m.inst.Items)),
			SP1Arc:       make(map[model.Arc]float64),
			SP2Arc:       make(map[int]map[model.Arc]float64),
		},
	}

	for i, c := range m.yCols {
		sol.YValues[i] = snap(raw.X[c], m.zeroTol)
	}
	for i, c := range m.xCols {
		sol.XValues[i] = snap(raw.X[c], m.zeroTol)
	}

	for j := range m.inst.Strips {
		sol.Duals.StripBalance[j] = raw.Duals[j]
	}
	for i := range m.inst.Items {
		sol.Duals.Demand[i] = raw.Duals[len(m.inst.Strips)+i]
	}
	for k, rule := range m.rules {
		mu := -raw.Duals[m.ruleRow[k]]
		if mu == 0 {
			mu = 0 // normalize -0
		}
		if rule.Strip < 0 {
			sol.Duals.SP1Arc[rule.Arc] += mu
		} else {
			byArc := sol.Duals.SP2Arc[rule.Strip]
			if byArc == nil {
				byArc = make(map[model.Arc]float64)
				sol.Duals.SP2Arc[rule.Strip] = byArc
			}
			byArc[rule.Arc] += mu
		}
	}

	return sol, nil
}

// snap clears numerical noise around zero.
func snap(v, tol float64) float64 {
	if math.Abs(v) < tol {
		return 0
	}
	return v
}
