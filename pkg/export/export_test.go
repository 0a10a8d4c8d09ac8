package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/platecut/pkg/model"
	"github.com/vanderheijden86/platecut/pkg/solver"
	"github.com/vanderheijden86/platecut/pkg/testutil"
)

var exportStamp = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// singlePlateResult is the "item exactly fills the plate" boundary case.
func singlePlateResult(t *testing.T) (*model.Instance, *solver.Result) {
	t.Helper()
	inst := testutil.MustInstance(t, 10, 10, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 1},
	})
	res := &solver.Result{
		Objective: 1,
		RootLB:    1,
		YCols:     []model.YColumn{{Pattern: []int{1}, Value: 1}},
		XCols:     []model.XColumn{{Strip: 0, Pattern: []int{1}, Value: 1}},
		Optimal:   true,
	}
	return inst, res
}

func TestBuildPlanFullPlate(t *testing.T) {
	inst, res := singlePlateResult(t)
	plan := BuildPlan(inst, res, "inst.csv", exportStamp)

	if plan.Summary.NumPlates != 1 {
		t.Fatalf("num_plates = %d, want 1", plan.Summary.NumPlates)
	}
	if plan.Summary.TotalUtilization != 1.0 {
		t.Errorf("total_utilization = %v, want 1.0", plan.Summary.TotalUtilization)
	}
	if len(plan.Plates) != 1 {
		t.Fatalf("plates = %d, want 1", len(plan.Plates))
	}
	plate := plan.Plates[0]
	if plate.Utilization != 1.0 || plate.NumItems != 1 {
		t.Errorf("plate = %+v, want full single-item plate", plate)
	}
	item := plate.Items[0]
	if item.X != 0 || item.Y != 0 || item.Width != 10 || item.Length != 10 {
		t.Errorf("item = %+v, want the full plate at the origin", item)
	}
	if plan.Metadata.Solver != SolverName || plan.Metadata.Timestamp != "20250314_093000" {
		t.Errorf("metadata = %+v", plan.Metadata)
	}
}

func TestBuildPlanPlacementRule(t *testing.T) {
	// One mixed [1 2] plate (one width-10 strip, two width-5 strips) whose
	// strips exactly cover the demand of two items of each type.
	inst := testutil.MustInstance(t, 20, 20, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 2},
		{ID: 1, Width: 5, Length: 20, Demand: 2},
	})
	res := &solver.Result{
		Objective: 1,
		RootLB:    1,
		YCols:     []model.YColumn{{Pattern: []int{1, 2}, Value: 1}},
		XCols: []model.XColumn{
			{Strip: 0, Pattern: []int{2, 0}, Value: 1},
			{Strip: 1, Pattern: []int{0, 1}, Value: 2},
		},
	}
	plan := BuildPlan(inst, res, "inst.csv", exportStamp)
	if len(plan.Plates) != 1 {
		t.Fatalf("plates = %d, want 1", len(plan.Plates))
	}
	items := plan.Plates[0].Items
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4", len(items))
	}

	// Strip layout along width: the width-10 strip first (y=0), then the
	// two width-5 strips at y=10 and y=15. Inside the first strip the two
	// 10x10 items sit at x=0 and x=10.
	want := []PlacedItem{
		{ItemType: 0, X: 0, Y: 0, Width: 10, Length: 10},
		{ItemType: 0, X: 10, Y: 0, Width: 10, Length: 10},
		{ItemType: 1, X: 0, Y: 10, Width: 5, Length: 20},
		{ItemType: 1, X: 0, Y: 15, Width: 5, Length: 20},
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("item %d = %+v, want %+v", i, items[i], w)
		}
	}

	// Utilization: 2*100 + 2*100 = 400 of 400.
	if plan.Plates[0].Utilization != 1.0 {
		t.Errorf("utilization = %v, want 1.0", plan.Plates[0].Utilization)
	}
}

func TestBuildPlanSpreadsColumnUses(t *testing.T) {
	// One X column used twice must feed two separate plates.
	inst := testutil.MustInstance(t, 10, 10, []model.ItemType{
		{ID: 0, Width: 10, Length: 10, Demand: 2},
	})
	res := &solver.Result{
		Objective: 2,
		RootLB:    2,
		YCols:     []model.YColumn{{Pattern: []int{1}, Value: 2}},
		XCols:     []model.XColumn{{Strip: 0, Pattern: []int{1}, Value: 2}},
	}
	plan := BuildPlan(inst, res, "inst.csv", exportStamp)
	if len(plan.Plates) != 2 {
		t.Fatalf("plates = %d, want 2", len(plan.Plates))
	}
	for _, plate := range plan.Plates {
		if plate.NumItems != 1 {
			t.Errorf("plate %d has %d items, want 1", plate.PlateID, plate.NumItems)
		}
	}
}

func TestWriteJSONShape(t *testing.T) {
	inst, res := singlePlateResult(t)
	plan := BuildPlan(inst, res, "data/inst.csv", exportStamp)

	path := filepath.Join(t.TempDir(), "out", "solution.json")
	if err := WriteJSON(plan, path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Plan
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded.Stock.Width != 10 || decoded.Stock.Length != 10 {
		t.Errorf("stock = %+v", decoded.Stock)
	}
	if decoded.Summary.NumPlates != 1 {
		t.Errorf("summary = %+v", decoded.Summary)
	}

	// Field names are part of the contract.
	for _, key := range []string{`"metadata"`, `"instance_file"`, `"num_plates"`, `"objective_value"`,
		`"root_lb"`, `"gap"`, `"total_utilization"`, `"plate_id"`, `"item_type"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("JSON missing key %s", key)
		}
	}
}

func TestWriteSVG(t *testing.T) {
	inst, res := singlePlateResult(t)
	plan := BuildPlan(inst, res, "inst.csv", exportStamp)

	path := filepath.Join(t.TempDir(), "plan.svg")
	if err := WriteSVG(plan, path); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "<rect") {
		t.Error("SVG output missing expected elements")
	}
	if !strings.Contains(out, "plate 1") {
		t.Error("SVG output missing plate caption")
	}
}

func TestWritePNG(t *testing.T) {
	inst, res := singlePlateResult(t)
	plan := BuildPlan(inst, res, "inst.csv", exportStamp)

	path := filepath.Join(t.TempDir(), "plan.png")
	if err := WritePNG(plan, path); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 || !bytes.Equal(data[1:4], []byte("PNG")) {
		t.Error("output is not a PNG file")
	}
}

func TestBuildPlanEmptyResult(t *testing.T) {
	inst := testutil.MustInstance(t, 10, 10, []model.ItemType{
		{ID: 0, Width: 5, Length: 5, Demand: 0},
	})
	plan := BuildPlan(inst, &solver.Result{}, "inst.csv", exportStamp)
	if plan.Summary.NumPlates != 0 || len(plan.Plates) != 0 {
		t.Errorf("empty result must produce an empty plan, got %+v", plan.Summary)
	}
	if plan.Summary.TotalUtilization != 0 {
		t.Errorf("utilization = %v, want 0", plan.Summary.TotalUtilization)
	}
}
