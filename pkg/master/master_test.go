package master

import (
	"math"
	"testing"

	"github.com/vanderheijden86/platecut/pkg/arcflow"
	"github.com/vanderheijden86/platecut/pkg/model"
)

const zeroTol = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// twoStripInstance is scenario 6 from the acceptance table: 20x20 stock,
// four 10x10 items and two 5x20 items.
func twoStripInstance(t *testing.T) *model.Instance {
	t.Helper()
	inst, err := model.NewInstance(20, 20, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 4},
		{ID: 1, Width: 5, Length: 20, Demand: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	return inst
}

// diagonal seeds the trivial one-strip-per-plate, one-item-per-strip basis.
func diagonal(inst *model.Instance) ([]model.YColumn, []model.XColumn) {
	var ys []model.YColumn
	for j := range inst.Strips {
		pattern := make([]int, len(inst.Strips))
		pattern[j] = 1
		ys = append(ys, model.YColumn{Pattern: pattern, Arcs: arcflow.YArcs(inst, pattern)})
	}
	var xs []model.XColumn
	for i := range inst.Items {
		pattern := make([]int, len(inst.Items))
		pattern[i] = 1
		xs = append(xs, model.XColumn{
			Strip:   inst.StripOf(i),
			Pattern: pattern,
			Arcs:    arcflow.XArcs(inst, pattern),
		})
	}
	return ys, xs
}

func TestSolveDiagonalBasis(t *testing.T) {
	inst := twoStripInstance(t)
	ys, xs := diagonal(inst)
	m := New(inst, ys, xs, nil, zeroTol)

	sol, err := m.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol == nil {
		t.Fatal("master infeasible with the diagonal basis")
	}

	// Diagonal basis: each 10x10 item needs its own strip cut (pattern is
	// one item per strip), so 4 strips of width 10 and 2 of width 5 are
	// consumed. With one strip per plate that is 6 plates.
	if !approx(sol.Objective, 6) {
		t.Errorf("objective = %v, want 6", sol.Objective)
	}

	// Demand rows must price at their duals: covering them is the only
	// reason plates are used at all.
	for i, d := range sol.Duals.Demand {
		if d < -zeroTol {
			t.Errorf("demand dual %d = %v, want >= 0", i, d)
		}
	}
}

func TestSolveImprovesWithBetterColumns(t *testing.T) {
	inst := twoStripInstance(t)
	ys, xs := diagonal(inst)
	m := New(inst, ys, xs, nil, zeroTol)
	if _, err := m.Solve(); err != nil {
		t.Fatal(err)
	}

	// Better stage-2 pattern: two 10x10 items per strip.
	xPattern := []int{2, 0}
	m.AddX(model.XColumn{Strip: 0, Pattern: xPattern, Arcs: arcflow.XArcs(inst, xPattern)})
	// Better stage-1 pattern: two width-10 strips per plate.
	yPattern := []int{2, 0}
	m.AddY(model.YColumn{Pattern: yPattern, Arcs: arcflow.YArcs(inst, yPattern)})
	// And the mixed plate: one width-10 strip plus two width-5 strips.
	yMixed := []int{1, 2}
	m.AddY(model.YColumn{Pattern: yMixed, Arcs: arcflow.YArcs(inst, yMixed)})

	sol, err := m.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if sol == nil {
		t.Fatal("unexpected infeasible")
	}
	// LP optimum for scenario 6 is 1.5 plates.
	if !approx(sol.Objective, 1.5) {
		t.Errorf("objective = %v, want 1.5", sol.Objective)
	}
}

func TestArcRuleRowsConstrainAndPriceDuals(t *testing.T) {
	inst := twoStripInstance(t)
	ys, xs := diagonal(inst)

	// Forbid the plate layout that stacks two width-10 strips: its second
	// strip occupies arc (10,20).
	rules := []ArcRule{{Kind: Zero, Arc: model.Arc{Start: 10, End: 20}, Strip: -1}}
	m := New(inst, ys, xs, rules, zeroTol)

	yPattern := []int{2, 0}
	m.AddY(model.YColumn{Pattern: yPattern, Arcs: arcflow.YArcs(inst, yPattern)})
	xPattern := []int{2, 0}
	m.AddX(model.XColumn{Strip: 0, Pattern: xPattern, Arcs: arcflow.XArcs(inst, xPattern)})

	sol, err := m.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if sol == nil {
		t.Fatal("unexpected infeasible")
	}

	// The zero rule pins the [2 0] plate column to 0.
	twoStripIdx := len(ys) // first added after the diagonal
	if sol.YValues[twoStripIdx] > zeroTol {
		t.Errorf("zero-arc rule violated: Y[2,0] = %v", sol.YValues[twoStripIdx])
	}
	// The rule's dual is published under its arc.
	if _, ok := sol.Duals.SP1Arc[model.Arc{Start: 10, End: 20}]; !ok {
		t.Error("SP1 arc dual missing for the branching row")
	}
}

func TestLowerRuleInfeasibleWhenUnreachable(t *testing.T) {
	inst := twoStripInstance(t)
	ys, xs := diagonal(inst)

	// Demand a flow of 1 on an arc no pooled column uses, with no way to
	// produce it: the node must report infeasible.
	rules := []ArcRule{{Kind: Lower, Arc: model.Arc{Start: 3, End: 13}, Strip: -1, Bound: 1}}
	m := New(inst, ys, xs, rules, zeroTol)

	sol, err := m.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol != nil {
		t.Fatal("expected infeasible master under unsatisfiable lower rule")
	}
}

func TestSP2RuleMatchesStripType(t *testing.T) {
	inst := twoStripInstance(t)
	_, xs := diagonal(inst)

	rule := ArcRule{Kind: Upper, Arc: model.Arc{Start: 0, End: 10}, Strip: 0, Bound: 2}
	if !rule.Applies(0, xs[0].Arcs) {
		t.Error("rule must apply to strip-0 column using arc (0,10)")
	}
	if rule.Applies(1, xs[1].Arcs) {
		t.Error("rule must not apply to a different strip type")
	}
	if rule.Applies(-1, xs[0].Arcs) {
		t.Error("an SP2 rule must not apply to Y columns")
	}
}
