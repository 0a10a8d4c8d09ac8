package solver

import (
	"math"

	"github.com/vanderheijden86/platecut/pkg/master"
	"github.com/vanderheijden86/platecut/pkg/model"
)

// Stage says which pricing network a branch acts on.
type Stage int

const (
	StageSP1 Stage = iota
	StageSP2
)

// branchPoint is a selected fractional arc: the branching decision taken
// at a node.
type branchPoint struct {
	Stage Stage
	Arc   model.Arc
	Strip int // strip type for SP2 branches, -1 for SP1
	Flow  float64
}

// Node is one branch-and-price tree node. Nodes live in the driver's
// arena and reference each other by index, never by pointer. A node is
// immutable once Branched is set.
type Node struct {
	ID     int
	Parent int // arena index, -1 for the root

	// Column pool, copied by value from the parent at creation. Values are
	// only meaningful after the node's column generation converged.
	YCols []model.YColumn
	XCols []model.XColumn

	// Accumulated branching state: the union of all ancestor constraints
	// plus the single constraint added at creation. Rules is the ordered
	// row table handed to the master; SP1Bounds/SP2Bounds are the same
	// constraints keyed for the pricing networks.
	Rules     []master.ArcRule
	SP1Bounds model.ArcBounds
	SP2Bounds map[int]model.ArcBounds

	LowerBound float64
	Objective  float64
	Solved     bool

	Pruned   bool
	Branched bool
}

// newRoot builds the root node around the initial diagonal basis.
func newRoot(ys []model.YColumn, xs []model.XColumn, numStrips int) *Node {
	n := &Node{
		ID:         0,
		Parent:     -1,
		YCols:      ys,
		XCols:      xs,
		SP1Bounds:  model.NewArcBounds(),
		SP2Bounds:  make(map[int]model.ArcBounds, numStrips),
		LowerBound: math.Inf(-1),
	}
	for j := 0; j < numStrips; j++ {
		n.SP2Bounds[j] = model.NewArcBounds()
	}
	return n
}

// child clones the node's pool and constraints into a fresh node; the
// caller then applies exactly one new branching constraint.
func (n *Node) child(id int) *Node {
	c := &Node{
		ID:        id,
		Parent:    n.ID,
		YCols:     make([]model.YColumn, len(n.YCols)),
		XCols:     make([]model.XColumn, len(n.XCols)),
		Rules:     append([]master.ArcRule(nil), n.Rules...),
		SP1Bounds: n.SP1Bounds.Clone(),
		SP2Bounds: make(map[int]model.ArcBounds, len(n.SP2Bounds)),
		// Until the child re-prices, the parent's relaxation value is the
		// best known bound for it.
		LowerBound: n.LowerBound,
	}
	for i := range n.YCols {
		c.YCols[i] = model.CloneY(n.YCols[i])
	}
	for i := range n.XCols {
		c.XCols[i] = model.CloneX(n.XCols[i])
	}
	for j, b := range n.SP2Bounds {
		c.SP2Bounds[j] = b.Clone()
	}
	return c
}

// constrain records one branching constraint in both the rule table and
// the pricing bounds.
func (n *Node) constrain(rule master.ArcRule) {
	n.Rules = append(n.Rules, rule)

	bounds := n.SP1Bounds
	if rule.Strip >= 0 {
		bounds = n.SP2Bounds[rule.Strip]
	}
	switch rule.Kind {
	case master.Zero:
		bounds.Zero.Add(rule.Arc)
	case master.Upper:
		bounds.Upper[rule.Arc] = rule.Bound
	case master.Lower:
		bounds.Lower[rule.Arc] = rule.Bound
	}
}

// constrainedSP1 reports whether any arc constraint applies to SP1.
func (n *Node) constrainedSP1() bool { return !n.SP1Bounds.Empty() }

// constrainedSP2 reports whether any arc constraint applies to the given
// strip type's SP2.
func (n *Node) constrainedSP2(strip int) bool { return !n.SP2Bounds[strip].Empty() }
