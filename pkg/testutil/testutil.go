// Package testutil holds assertion helpers shared by the solver's tests.
package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/platecut/pkg/model"
)

const tol = 1e-6

// MustInstance builds an instance or fails the test.
func MustInstance(t *testing.T, w, l int, items []model.ItemType) *model.Instance {
	t.Helper()
	inst, err := model.NewInstance(w, l, items)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

// AssertFeasiblePlan verifies the integer-plan invariants on a column
// valuation: pattern capacities, width binding, strip balance, demand
// coverage and integrality of the stored values.
func AssertFeasiblePlan(t *testing.T, inst *model.Instance, ys []model.YColumn, xs []model.XColumn) {
	t.Helper()

	stripsMade := make([]float64, len(inst.Strips))
	for k := range ys {
		y := &ys[k]
		if y.Value < -tol {
			t.Errorf("Y column %d has negative value %v", k, y.Value)
		}
		if frac := math.Abs(y.Value - math.Round(y.Value)); frac > 1e-4 {
			t.Errorf("Y column %d value %v is not integral", k, y.Value)
		}
		if used := y.WidthUsed(inst); used > inst.StockWidth {
			t.Errorf("Y column %d pattern %v uses width %d > %d", k, y.Pattern, used, inst.StockWidth)
		}
		for j, n := range y.Pattern {
			stripsMade[j] += y.Value * float64(n)
		}
	}

	stripsUsed := make([]float64, len(inst.Strips))
	produced := make([]float64, len(inst.Items))
	for p := range xs {
		x := &xs[p]
		if x.Value < -tol {
			t.Errorf("X column %d has negative value %v", p, x.Value)
		}
		if frac := math.Abs(x.Value - math.Round(x.Value)); frac > 1e-4 {
			t.Errorf("X column %d value %v is not integral", p, x.Value)
		}
		if used := x.LengthUsed(inst); used > inst.StockLength {
			t.Errorf("X column %d pattern %v uses length %d > %d", p, x.Pattern, used, inst.StockLength)
		}
		stripWidth := inst.Strips[x.Strip].Width
		for i, n := range x.Pattern {
			if n > 0 && inst.Items[i].Width != stripWidth {
				t.Errorf("X column %d puts width-%d item %d into a width-%d strip",
					p, inst.Items[i].Width, i, stripWidth)
			}
			produced[i] += x.Value * float64(n)
		}
		stripsUsed[x.Strip] += x.Value
	}

	for j := range inst.Strips {
		if stripsMade[j] < stripsUsed[j]-tol {
			t.Errorf("strip type %d: produced %v < consumed %v", j, stripsMade[j], stripsUsed[j])
		}
	}
	for i, it := range inst.Items {
		if produced[i] < float64(it.Demand)-tol {
			t.Errorf("item %d: produced %v < demand %d", i, produced[i], it.Demand)
		}
	}
}
