package solver

import (
	"math"
	"testing"
	"time"

	"github.com/vanderheijden86/platecut/pkg/model"
	"github.com/vanderheijden86/platecut/pkg/testutil"
)

func solve(t *testing.T, w, l int, items []model.ItemType) *Result {
	t.Helper()
	inst := testutil.MustInstance(t, w, l, items)
	res, err := Solve(inst, Config{TimeLimit: 30 * time.Second}, Discard())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	testutil.AssertFeasiblePlan(t, inst, res.YCols, res.XCols)
	return res
}

func TestScenarioTrivialFit(t *testing.T) {
	res := solve(t, 10, 10, []model.ItemType{{ID: 0, Width: 10, Length: 10, Demand: 1}})
	if res.Plates() != 1 {
		t.Errorf("plates = %d, want 1", res.Plates())
	}
	if !res.Optimal {
		t.Error("expected proven optimality")
	}
}

func TestScenarioMultiplicity(t *testing.T) {
	res := solve(t, 10, 10, []model.ItemType{{ID: 0, Width: 10, Length: 10, Demand: 3}})
	if res.Plates() != 3 {
		t.Errorf("plates = %d, want 3", res.Plates())
	}
}

func TestScenarioTwoStripsSamePlate(t *testing.T) {
	res := solve(t, 10, 10, []model.ItemType{{ID: 0, Width: 5, Length: 10, Demand: 2}})
	if res.Plates() != 1 {
		t.Errorf("plates = %d, want 1", res.Plates())
	}
}

func TestScenarioFourSquaresOnePlate(t *testing.T) {
	res := solve(t, 10, 10, []model.ItemType{{ID: 0, Width: 5, Length: 5, Demand: 4}})
	if res.Plates() != 1 {
		t.Errorf("plates = %d, want 1", res.Plates())
	}
}

func TestScenarioFiveSquaresTwoPlates(t *testing.T) {
	res := solve(t, 10, 10, []model.ItemType{{ID: 0, Width: 5, Length: 5, Demand: 5}})
	if res.Plates() != 2 {
		t.Errorf("plates = %d, want 2", res.Plates())
	}
}

func TestScenarioMixedWidthsExercisesBranching(t *testing.T) {
	inst := testutil.MustInstance(t, 20, 20, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 4},
		{ID: 1, Width: 5, Length: 20, Demand: 2},
	})
	res, err := Solve(inst, Config{TimeLimit: 30 * time.Second}, Discard())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	testutil.AssertFeasiblePlan(t, inst, res.YCols, res.XCols)

	if res.Plates() != 2 {
		t.Errorf("plates = %d, want 2", res.Plates())
	}
	// The relaxation is fractional (1.5), so at least one arc-flow branch
	// must have happened and the root bound sits strictly below the answer.
	if res.Nodes < 3 {
		t.Errorf("nodes = %d, want the root plus at least one branching pair", res.Nodes)
	}
	if !(res.RootLB < res.Objective-1e-6) {
		t.Errorf("root lb = %v, want strictly below objective %v", res.RootLB, res.Objective)
	}
	if math.Abs(res.RootLB-1.5) > 1e-4 {
		t.Errorf("root lb = %v, want 1.5", res.RootLB)
	}
	// Clean termination proves the incumbent: gap 0 despite the weaker
	// root bound.
	if res.Gap != 0 {
		t.Errorf("gap = %v, want 0 on clean termination", res.Gap)
	}
	if !res.Optimal || res.TimedOut {
		t.Errorf("expected clean optimal termination, got optimal=%v timedOut=%v", res.Optimal, res.TimedOut)
	}
}

func TestZeroDemandNeedsNoPlates(t *testing.T) {
	res := solve(t, 10, 10, []model.ItemType{{ID: 0, Width: 5, Length: 5, Demand: 0}})
	if res.Plates() != 0 {
		t.Errorf("plates = %d, want 0", res.Plates())
	}
	if !res.Optimal {
		t.Error("empty plan is trivially optimal")
	}
}

func TestIncumbentMatchesBoundInvariants(t *testing.T) {
	inst := testutil.MustInstance(t, 20, 20, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 4},
		{ID: 1, Width: 5, Length: 20, Demand: 2},
	})
	res, err := Solve(inst, Config{TimeLimit: 30 * time.Second}, Discard())
	if err != nil {
		t.Fatal(err)
	}

	// UB is the plate count of the stored columns.
	if got := float64(res.Plates()); math.Abs(got-res.Objective) > 1e-6 {
		t.Errorf("objective %v != stored plate count %v", res.Objective, got)
	}
	// Bound correctness: UB >= root LB.
	if res.Objective < res.RootLB-1e-6 {
		t.Errorf("objective %v below root lb %v", res.Objective, res.RootLB)
	}
}

func TestNodeCapTriggersAnytimeFallback(t *testing.T) {
	inst := testutil.MustInstance(t, 20, 20, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 4},
		{ID: 1, Width: 5, Length: 20, Demand: 2},
	})
	// Only the root fits under the cap: the search must stop immediately
	// and still return a feasible (rounded-up) plan.
	res, err := Solve(inst, Config{MaxNodes: 1, TimeLimit: 30 * time.Second}, Discard())
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertFeasiblePlan(t, inst, res.YCols, res.XCols)
	if !res.TimedOut {
		t.Error("node cap should report as a budget stop")
	}
	if res.Gap <= 0 {
		t.Errorf("gap = %v, want > 0 without a finished search", res.Gap)
	}
	if res.Plates() < 2 {
		t.Errorf("plates = %d, fallback cannot beat the true optimum of 2", res.Plates())
	}
}

func TestTightTimeLimitStillReturnsPlan(t *testing.T) {
	inst := testutil.MustInstance(t, 20, 20, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 4},
		{ID: 1, Width: 5, Length: 20, Demand: 2},
	})
	res, err := Solve(inst, Config{TimeLimit: time.Nanosecond}, Discard())
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertFeasiblePlan(t, inst, res.YCols, res.XCols)
	if !res.TimedOut {
		t.Error("nanosecond budget must report a timeout")
	}
}

func TestSharedWidthItemsShareStrips(t *testing.T) {
	// Two item types of the same width must be cuttable from the same
	// strip type; 60+40=100 fills a strip exactly.
	res := solve(t, 10, 100, []model.ItemType{
		{ID: 0, Width: 10, Length: 60, Demand: 1},
		{ID: 1, Width: 10, Length: 40, Demand: 1},
	})
	if res.Plates() != 1 {
		t.Errorf("plates = %d, want 1", res.Plates())
	}
}
