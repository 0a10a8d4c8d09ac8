// Package export turns a solved cutting plan into its external formats:
// the JSON plan document, and SVG/PNG drawings of the plates.
//
// The placement rule is a representation choice of the exporter, not a
// solver invariant: strips are laid out in descending strip-type order
// along the width axis (the y coordinate), and inside each strip the items
// follow the stage-2 pattern along the length axis (the x coordinate).
package export

import (
	"time"

	"github.com/vanderheijden86/platecut/pkg/model"
	"github.com/vanderheijden86/platecut/pkg/solver"
)

// SolverName tags exported plans.
const SolverName = "platecut"

// PlacedItem is one rectangle on a plate. X runs along the length axis, Y
// along the width axis.
type PlacedItem struct {
	ItemType int `json:"item_type"`
	X        int `json:"x"`
	Y        int `json:"y"`
	Width    int `json:"width"`
	Length   int `json:"length"`
}

// Plate is one cut stock plate.
type Plate struct {
	PlateID     int          `json:"plate_id"`
	Utilization float64      `json:"utilization"`
	NumItems    int          `json:"num_items"`
	Items       []PlacedItem `json:"items"`
}

// Metadata identifies the run.
type Metadata struct {
	InstanceFile string `json:"instance_file"`
	Timestamp    string `json:"timestamp"`
	Solver       string `json:"solver"`
}

// Summary is the plan's headline numbers.
type Summary struct {
	NumPlates        int     `json:"num_plates"`
	ObjectiveValue   float64 `json:"objective_value"`
	RootLB           float64 `json:"root_lb"`
	Gap              float64 `json:"gap"`
	TotalUtilization float64 `json:"total_utilization"`
}

// Stock is the plate size.
type Stock struct {
	Width  int `json:"width"`
	Length int `json:"length"`
}

// Plan is the exported document.
type Plan struct {
	Metadata Metadata `json:"metadata"`
	Summary  Summary  `json:"summary"`
	Stock    Stock    `json:"stock"`
	Plates   []Plate  `json:"plates"`
}

// BuildPlan lays the incumbent columns out into concrete plates.
func BuildPlan(inst *model.Instance, res *solver.Result, instanceFile string, now time.Time) *Plan {
	plan := &Plan{
		Metadata: Metadata{
			InstanceFile: instanceFile,
			Timestamp:    now.Format("20060102_150405"),
			Solver:       SolverName,
		},
		Stock: Stock{Width: inst.StockWidth, Length: inst.StockLength},
	}

	// Working copies of the X multiplicities: each cut strip consumes one
	// use of some matching stage-2 column.
	remaining := make([]float64, len(res.XCols))
	for p := range res.XCols {
		remaining[p] = res.XCols[p].Value
	}

	plateArea := float64(inst.StockWidth * inst.StockLength)
	plateID := 0
	for k := range res.YCols {
		y := &res.YCols[k]
		copies := int(y.Value + 0.5)
		for c := 0; c < copies; c++ {
			plateID++
			plate := Plate{PlateID: plateID}

			stripY := 0
			for j, count := range y.Pattern {
				stripWidth := inst.Strips[j].Width
				for s := 0; s < count; s++ {
					if p := takeColumn(res.XCols, remaining, j); p >= 0 {
						itemX := 0
						for i, n := range res.XCols[p].Pattern {
							for c2 := 0; c2 < n; c2++ {
								plate.Items = append(plate.Items, PlacedItem{
									ItemType: i,
									X:        itemX,
									Y:        stripY,
									Width:    inst.Items[i].Width,
									Length:   inst.Items[i].Length,
								})
								itemX += inst.Items[i].Length
							}
						}
					}
					stripY += stripWidth
				}
			}

			area := 0
			for _, it := range plate.Items {
				area += it.Width * it.Length
			}
			plate.NumItems = len(plate.Items)
			if plateArea > 0 {
				plate.Utilization = float64(area) / plateArea
			}
			plan.Plates = append(plan.Plates, plate)
		}
	}

	plan.Summary = Summary{
		NumPlates:      plateID,
		ObjectiveValue: res.Objective,
		RootLB:         res.RootLB,
		Gap:            res.Gap,
	}
	if plateID > 0 {
		plan.Summary.TotalUtilization = float64(inst.ItemArea()) / (float64(plateID) * plateArea)
	}
	return plan
}

// takeColumn picks an X column of the given strip type with at least one
// use left and consumes it.
func takeColumn(xs []model.XColumn, remaining []float64, strip int) int {
	for p := range xs {
		if xs[p].Strip == strip && remaining[p] >= 1-1e-6 {
			remaining[p]--
			return p
		}
	}
	return -1
}
