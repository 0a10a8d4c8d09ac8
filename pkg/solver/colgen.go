package solver

import (
	"fmt"

	"github.com/vanderheijden86/platecut/pkg/arcflow"
	"github.com/vanderheijden86/platecut/pkg/master"
	"github.com/vanderheijden86/platecut/pkg/model"
	"github.com/vanderheijden86/platecut/pkg/pricing"
)

// cgOutcome classifies a node's column-generation run.
type cgOutcome int

const (
	cgConverged cgOutcome = iota
	cgInfeasible
	cgTimedOut
)

// runCG prices the node to convergence: solve the restricted master, run
// SP1, then sweep SP2 over the strip types in index order, appending every
// improving column and re-extracting duals after each append. On
// convergence the node's LowerBound and column values are set.
func (s *state) runCG(node *Node) (cgOutcome, error) {
	m := master.New(s.inst, node.YCols, node.XCols, node.Rules, s.cfg.ZeroTol)

	sol, err := m.Solve()
	if err != nil {
		return 0, fmt.Errorf("node %d: %w", node.ID, err)
	}
	if sol == nil {
		node.Pruned = true
		s.trace.Printf("[cg] node %d infeasible, pruned", node.ID)
		return cgInfeasible, nil
	}

	iter := 0
	for {
		iter++
		if s.timeUp() {
			s.timedOut = true
			return cgTimedOut, nil
		}
		if iter > s.cfg.MaxCGIter {
			// Convergence should always happen well before this; hitting the
			// cap points at a pricing or dual-extraction bug.
			s.trace.Printf("[cg] warning: node %d hit the iteration cap (%d); keeping the last LP value",
				node.ID, s.cfg.MaxCGIter)
			break
		}

		yCol, err := s.priceSP1(node, &sol.Duals)
		if err != nil {
			return 0, err
		}
		if yCol != nil {
			node.YCols = append(node.YCols, *yCol)
			m.AddY(*yCol)
			if sol, err = s.resolve(m, node); err != nil {
				return 0, err
			}
			if sol == nil {
				return cgInfeasible, nil
			}
			continue
		}

		improved := false
		for j := range s.inst.Strips {
			xCol, err := s.priceSP2(node, j, &sol.Duals)
			if err != nil {
				return 0, err
			}
			if xCol == nil {
				continue
			}
			improved = true
			node.XCols = append(node.XCols, *xCol)
			m.AddX(*xCol)
			if sol, err = s.resolve(m, node); err != nil {
				return 0, err
			}
			if sol == nil {
				return cgInfeasible, nil
			}
		}
		if !improved {
			s.trace.Printf("[cg] node %d converged after %d iterations, lb=%.4f", node.ID, iter, sol.Objective)
			break
		}
	}

	node.LowerBound = sol.Objective
	node.Objective = sol.Objective
	node.Solved = true
	for i := range node.YCols {
		node.YCols[i].Value = sol.YValues[i]
	}
	for i := range node.XCols {
		node.XCols[i].Value = sol.XValues[i]
	}
	return cgConverged, nil
}

// resolve re-solves the master after a column append; an infeasible result
// prunes the node (it can only come from inherited branching rows).
func (s *state) resolve(m *master.RMP, node *Node) (*master.Solution, error) {
	sol, err := m.Solve()
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", node.ID, err)
	}
	if sol == nil {
		node.Pruned = true
		s.trace.Printf("[cg] node %d infeasible after column append, pruned", node.ID)
	}
	return sol, nil
}

// priceSP1 runs the stage-1 subproblem with the configured backend, or the
// arc-flow backend once branching constraints exist.
func (s *state) priceSP1(node *Node, duals *master.Duals) (*model.YColumn, error) {
	method := s.cfg.SP1Method
	if len(node.Rules) > 0 {
		method = pricing.ArcFlow
	}
	return pricing.SP1(method, s.inst, s.sp1Net, node.SP1Bounds, duals, s.cfg.RcTol)
}

// priceSP2 runs the stage-2 subproblem of one strip type, switching to the
// arc-flow backend under the same rule as priceSP1.
func (s *state) priceSP2(node *Node, strip int, duals *master.Duals) (*model.XColumn, error) {
	method := s.cfg.SP2Method
	if len(node.Rules) > 0 {
		method = pricing.ArcFlow
	}
	return pricing.SP2(method, s.inst, s.sp2Nets[strip], strip, node.SP2Bounds[strip], duals, s.cfg.RcTol)
}

// flowsSP1 aggregates the node's converged Y values into SP1 arc flows.
func (s *state) flowsSP1(node *Node) arcflow.Flows {
	return arcflow.AggregateY(s.inst, node.YCols, s.cfg.ZeroTol)
}

// flowsSP2 aggregates the node's converged X values for one strip type.
func (s *state) flowsSP2(node *Node, strip int) arcflow.Flows {
	return arcflow.AggregateX(s.inst, node.XCols, strip, s.cfg.ZeroTol)
}
