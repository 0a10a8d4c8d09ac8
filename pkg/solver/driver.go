// Package solver runs branch-and-price over the two-stage guillotine
// cutting-stock master problem: column generation at every node, arc-flow
// branching on fractional flows, best-first search with incumbent pruning,
// and an anytime rounding fallback when the budget expires.
package solver

import (
	"fmt"
	"math"
	"time"

	"github.com/vanderheijden86/platecut/pkg/arcflow"
	"github.com/vanderheijden86/platecut/pkg/model"
)

// Result is the solver's answer: always a feasible integer cutting plan
// for valid input, with Optimal reporting whether the gap closed.
type Result struct {
	// Objective is the incumbent plate count (the upper bound).
	Objective float64
	// RootLB is the root relaxation value.
	RootLB float64
	// Gap is (UB - LB*) / UB with LB* the smallest open-node bound; 0 on a
	// finished search.
	Gap float64
	// YCols and XCols are the incumbent's columns, values included.
	YCols []model.YColumn
	XCols []model.XColumn

	Optimal  bool
	TimedOut bool
	Nodes    int
	Elapsed  time.Duration
}

// Plates is the number of stock plates the plan uses.
func (r *Result) Plates() int {
	n := 0
	for i := range r.YCols {
		n += int(math.Round(r.YCols[i].Value))
	}
	return n
}

// state is the driver's working set: instance, networks, node arena and
// incumbent. All of it lives on the Solve call stack.
type state struct {
	inst  *model.Instance
	cfg   Config
	trace *Trace

	sp1Net  *arcflow.Network
	sp2Nets []*arcflow.Network

	nodes  []*Node
	nextID int

	incumbent float64
	bestY     []model.YColumn
	bestX     []model.XColumn

	deadline time.Time
	timedOut bool
}

func (s *state) nextNodeID() int {
	id := s.nextID
	s.nextID++
	return id
}

// timeUp is the cooperative cancellation poll.
func (s *state) timeUp() bool {
	if s.timedOut {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// Solve runs the full pipeline on a validated instance.
func Solve(inst *model.Instance, cfg Config, trace *Trace) (*Result, error) {
	cfg = cfg.Normalize()
	start := time.Now()

	// All-zero demand needs no plates at all.
	if inst.TotalDemand() == 0 {
		return &Result{Optimal: true, Elapsed: time.Since(start)}, nil
	}

	s := &state{
		inst:      inst,
		cfg:       cfg,
		trace:     trace,
		incumbent: math.Inf(1),
	}
	if cfg.TimeLimit > 0 {
		s.deadline = start.Add(cfg.TimeLimit)
	}

	s.sp1Net = arcflow.BuildSP1(inst)
	s.sp2Nets = make([]*arcflow.Network, len(inst.Strips))
	for j := range inst.Strips {
		s.sp2Nets[j] = arcflow.BuildSP2(inst, j)
	}
	s.trace.Printf("[setup] SP1 arcs=%d, strip types=%d", len(s.sp1Net.Arcs), len(inst.Strips))

	ys, xs := diagonalBasis(inst)
	root := newRoot(ys, xs, len(inst.Strips))
	root.ID = s.nextNodeID()
	s.nodes = append(s.nodes, root)

	outcome, err := s.runCG(root)
	if err != nil {
		return nil, err
	}
	if outcome == cgInfeasible {
		// The diagonal basis covers any valid demand; an infeasible root
		// means the LP layer misbehaved.
		return nil, fmt.Errorf("root relaxation infeasible: %w", model.ErrBackend)
	}
	rootLB := root.LowerBound
	if !root.Solved {
		rootLB = 0
	}
	s.trace.Printf("[root] lb=%.4f", rootLB)

	if outcome == cgConverged {
		if _, fractional := s.selectBranch(root); !fractional {
			s.acceptIncumbent(root)
			root.Branched = true
			s.trace.Printf("[root] arc-integral, no branching needed")
		} else {
			if err := s.branchAndPrice(); err != nil {
				return nil, err
			}
		}
	}

	// Anytime fallback: no integer solution found yet, so ceil the root LP
	// column values. Rounding up only adds capacity, so the plan stays
	// feasible.
	if math.IsInf(s.incumbent, 1) {
		s.ceilRoot(root)
	}

	ub := s.incumbent
	lbStar := s.openLowerBound(ub)
	gap := 0.0
	if ub > 0 && lbStar < ub {
		gap = (ub - lbStar) / ub
	}

	return &Result{
		Objective: ub,
		RootLB:    rootLB,
		Gap:       gap,
		YCols:     s.bestY,
		XCols:     s.bestX,
		Optimal:   gap <= s.cfg.ZeroTol,
		TimedOut:  s.timedOut,
		Nodes:     len(s.nodes),
		Elapsed:   time.Since(start),
	}, nil
}

// branchAndPrice is the best-first expansion loop.
func (s *state) branchAndPrice() error {
	for {
		if s.timeUp() {
			s.trace.Printf("[bp] time limit reached after %d nodes", len(s.nodes))
			return nil
		}
		if s.cfg.MaxNodes > 0 && len(s.nodes) >= s.cfg.MaxNodes {
			s.trace.Printf("[bp] node cap (%d) reached", s.cfg.MaxNodes)
			s.timedOut = true
			return nil
		}

		parent := s.selectNode()
		if parent == nil {
			s.trace.Printf("[bp] frontier empty, search complete")
			return nil
		}
		s.trace.Printf("[bp] expand node %d (lb=%.4f, ub=%.4f)", parent.ID, parent.LowerBound, s.incumbent)

		bp, fractional := s.selectBranch(parent)
		if !fractional {
			// Already integral (can happen when the pool changed only by
			// value snapping); accept and close it.
			s.acceptIncumbent(parent)
			parent.Branched = true
			continue
		}

		left, right := s.makeChildren(parent, bp)
		if err := s.expandChild(left); err != nil {
			return err
		}
		if s.timeUp() {
			s.nodes = append(s.nodes, left, right)
			parent.Branched = true
			return nil
		}
		if err := s.expandChild(right); err != nil {
			return err
		}
		s.nodes = append(s.nodes, left, right)
		parent.Branched = true

		s.pruneSweep()
		if s.timeUp() {
			return nil
		}
	}
}

// expandChild prices one child to convergence and, when its flows are
// already integral, turns it straight into an incumbent candidate.
// Backend failures abort the search; the node's state is in the trace.
func (s *state) expandChild(child *Node) error {
	outcome, err := s.runCG(child)
	if err != nil {
		s.trace.Printf("[bp] node %d backend failure (lb=%.4f, rules=%d): %v",
			child.ID, child.LowerBound, len(child.Rules), err)
		return err
	}
	if outcome != cgConverged {
		return nil
	}
	if _, fractional := s.selectBranch(child); !fractional {
		s.acceptIncumbent(child)
		child.Branched = true
	}
	return nil
}

// selectNode picks the open node with the smallest lower bound; insertion
// order breaks ties, so traces are reproducible.
func (s *state) selectNode() *Node {
	var best *Node
	for _, n := range s.nodes {
		if n.Pruned || n.Branched || !n.Solved {
			continue
		}
		if best == nil || n.LowerBound < best.LowerBound {
			best = n
		}
	}
	return best
}

// pruneSweep closes every open node whose bound cannot beat the incumbent.
func (s *state) pruneSweep() {
	for _, n := range s.nodes {
		if n.Pruned || n.Branched {
			continue
		}
		if n.LowerBound >= s.incumbent-s.cfg.ZeroTol {
			n.Pruned = true
			s.trace.Printf("[bp] node %d pruned (lb=%.4f >= ub=%.4f)", n.ID, n.LowerBound, s.incumbent)
		}
	}
}

// acceptIncumbent snapshots an arc-integral node as the new best integer
// solution if it improves on the current one. Column values are snapped to
// the nearest integer within tolerance; anything still fractional is
// rounded up so the stored plan stays feasible.
func (s *state) acceptIncumbent(node *Node) {
	obj := 0.0
	ys := make([]model.YColumn, 0, len(node.YCols))
	for i := range node.YCols {
		c := model.CloneY(node.YCols[i])
		c.Value = integerize(c.Value, s.cfg.ArcIntTol)
		if c.Value > 0 {
			ys = append(ys, c)
			obj += c.Value
		}
	}
	xs := make([]model.XColumn, 0, len(node.XCols))
	for i := range node.XCols {
		c := model.CloneX(node.XCols[i])
		c.Value = integerize(c.Value, s.cfg.ArcIntTol)
		if c.Value > 0 {
			xs = append(xs, c)
		}
	}

	if obj < s.incumbent-s.cfg.ZeroTol {
		s.incumbent = obj
		s.bestY = ys
		s.bestX = xs
		s.trace.Printf("[bp] new incumbent: %.0f plates (node %d)", obj, node.ID)
	}
}

// ceilRoot builds the anytime fallback plan from the root LP.
func (s *state) ceilRoot(root *Node) {
	if !root.Solved {
		// The budget expired inside the root's own pricing: the diagonal
		// basis itself is the plan (one strip per plate, one item class per
		// strip), which is always feasible.
		obj := 0.0
		for i := range root.XCols[:len(s.inst.Items)] {
			root.XCols[i].Value = float64(s.inst.Items[i].Demand)
		}
		for j := range root.YCols[:len(s.inst.Strips)] {
			need := 0
			for _, i := range s.inst.ItemsOfStrip(j) {
				need += s.inst.Items[i].Demand
			}
			root.YCols[j].Value = float64(need)
			obj += float64(need)
		}
		s.incumbent = obj
		s.bestY = append([]model.YColumn(nil), root.YCols[:len(s.inst.Strips)]...)
		s.bestX = append([]model.XColumn(nil), root.XCols[:len(s.inst.Items)]...)
		s.trace.Printf("[bp] fallback: diagonal plan with %.0f plates", obj)
		return
	}

	obj := 0.0
	ys := make([]model.YColumn, 0, len(root.YCols))
	for i := range root.YCols {
		if root.YCols[i].Value <= s.cfg.ZeroTol {
			continue
		}
		c := model.CloneY(root.YCols[i])
		c.Value = math.Ceil(c.Value - s.cfg.ZeroTol)
		ys = append(ys, c)
		obj += c.Value
	}
	xs := make([]model.XColumn, 0, len(root.XCols))
	for i := range root.XCols {
		if root.XCols[i].Value <= s.cfg.ZeroTol {
			continue
		}
		c := model.CloneX(root.XCols[i])
		c.Value = math.Ceil(c.Value - s.cfg.ZeroTol)
		xs = append(xs, c)
	}
	s.incumbent = obj
	s.bestY = ys
	s.bestX = xs
	s.trace.Printf("[bp] fallback: root LP rounded up to %.0f plates", obj)
}

// openLowerBound is LB*: the smallest bound among open nodes (unsolved
// ones carry their parent's bound), or the incumbent itself once the
// frontier is empty.
func (s *state) openLowerBound(ub float64) float64 {
	lb := math.Inf(1)
	for _, n := range s.nodes {
		if n.Pruned || n.Branched {
			continue
		}
		if n.LowerBound < lb {
			lb = n.LowerBound
		}
	}
	if math.IsInf(lb, 1) {
		return ub
	}
	if math.IsInf(lb, -1) {
		return 0
	}
	return lb
}

// integerize snaps near-integers and rounds the rest up.
func integerize(v, tol float64) float64 {
	if nearest := math.Round(v); math.Abs(v-nearest) <= tol {
		return nearest
	}
	return math.Ceil(v)
}
