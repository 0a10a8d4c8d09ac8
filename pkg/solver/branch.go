package solver

import (
	"math"

	"github.com/vanderheijden86/platecut/pkg/master"
)

// selectBranch converts the node's LP solution into arc flows and picks
// the branching arc: SP1 first, then SP2 strip types in index order; among
// fractional arcs the one closest to half-integral wins. ok is false when
// every aggregated flow is integral, i.e. the node is an integer solution.
func (s *state) selectBranch(node *Node) (branchPoint, bool) {
	if arc, flow, found := s.flowsSP1(node).Fractional(s.cfg.ArcIntTol); found {
		s.trace.Printf("[branch] node %d: SP1 arc %v flow=%.4f", node.ID, arc, flow)
		return branchPoint{Stage: StageSP1, Arc: arc, Strip: -1, Flow: flow}, true
	}
	for j := range s.inst.Strips {
		if arc, flow, found := s.flowsSP2(node, j).Fractional(s.cfg.ArcIntTol); found {
			s.trace.Printf("[branch] node %d: SP2 arc %v strip=%d flow=%.4f", node.ID, arc, j, flow)
			return branchPoint{Stage: StageSP2, Arc: arc, Strip: j, Flow: flow}, true
		}
	}
	return branchPoint{}, false
}

// makeChildren spawns the two children of a branching decision. The left
// child caps the arc's flow at floor(f) (a zero constraint when the floor
// is 0); the right child forces it to at least ceil(f). Both inherit the
// parent's pool and every ancestor constraint.
func (s *state) makeChildren(parent *Node, bp branchPoint) (left, right *Node) {
	floor := int(math.Floor(bp.Flow))
	ceil := int(math.Ceil(bp.Flow))

	strip := bp.Strip
	if bp.Stage == StageSP1 {
		strip = -1
	}

	left = parent.child(s.nextNodeID())
	if floor == 0 {
		left.constrain(master.ArcRule{Kind: master.Zero, Arc: bp.Arc, Strip: strip})
	} else {
		left.constrain(master.ArcRule{Kind: master.Upper, Arc: bp.Arc, Strip: strip, Bound: floor})
	}

	right = parent.child(s.nextNodeID())
	right.constrain(master.ArcRule{Kind: master.Lower, Arc: bp.Arc, Strip: strip, Bound: ceil})

	s.trace.Printf("[branch] node %d -> left %d (arc %v <= %d), right %d (arc %v >= %d)",
		parent.ID, left.ID, bp.Arc, floor, right.ID, bp.Arc, ceil)
	return left, right
}
