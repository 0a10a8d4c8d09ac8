package solver

import (
	"github.com/vanderheijden86/platecut/pkg/arcflow"
	"github.com/vanderheijden86/platecut/pkg/model"
)

// diagonalBasis seeds the root column pool: one Y column per strip type
// cutting a single strip, and one X column per item type cutting a single
// item from its matching strip. This basis can always cover the demand
// (one plate per piece in the worst case), so the first master solve is
// feasible and the upper bound is finite from the start.
func diagonalBasis(inst *model.Instance) ([]model.YColumn, []model.XColumn) {
	ys := make([]model.YColumn, len(inst.Strips))
	for j := range inst.Strips {
		pattern := make([]int, len(inst.Strips))
		pattern[j] = 1
		ys[j] = model.YColumn{Pattern: pattern, Arcs: arcflow.YArcs(inst, pattern)}
	}

	xs := make([]model.XColumn, len(inst.Items))
	for i := range inst.Items {
		pattern := make([]int, len(inst.Items))
		pattern[i] = 1
		xs[i] = model.XColumn{
			Strip:   inst.StripOf(i),
			Pattern: pattern,
			Arcs:    arcflow.XArcs(inst, pattern),
		}
	}
	return ys, xs
}
