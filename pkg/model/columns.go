package model

// YColumn is a stage-1 cutting pattern: how many strips of each type are
// cut from one stock plate. Its objective coefficient in the master is 1.
type YColumn struct {
	// Pattern[j] = number of strips of type j cut from the plate.
	Pattern []int
	// Arcs are the SP1 placement arcs of the pattern under canonical
	// ordering. Used only for arc-branching row coefficients and flows.
	Arcs ArcSet
	// Value is the column's primal value in the most recent LP solve.
	// Invalid until the owning node's column generation has converged.
	Value float64
}

// XColumn is a stage-2 cutting pattern bound to one strip type: how many
// items of each type are cut from one strip. Objective coefficient 0.
type XColumn struct {
	Strip int
	// Pattern[i] = number of items of type i cut from the strip. Non-zero
	// only for items whose width equals the strip width.
	Pattern []int
	Arcs    ArcSet
	Value   float64
}

// WidthUsed is the total strip width the pattern consumes on the plate.
func (y *YColumn) WidthUsed(inst *Instance) int {
	w := 0
	for j, n := range y.Pattern {
		w += n * inst.Strips[j].Width
	}
	return w
}

// LengthUsed is the total item length the pattern consumes on the strip.
func (x *XColumn) LengthUsed(inst *Instance) int {
	l := 0
	for i, n := range x.Pattern {
		l += n * inst.Items[i].Length
	}
	return l
}

// CloneY copies a Y column by value, including its arc set.
func CloneY(y YColumn) YColumn {
	c := YColumn{Pattern: append([]int(nil), y.Pattern...), Value: y.Value}
	if y.Arcs != nil {
		c.Arcs = y.Arcs.Clone()
	}
	return c
}

// CloneX copies an X column by value, including its arc set.
func CloneX(x XColumn) XColumn {
	c := XColumn{Strip: x.Strip, Pattern: append([]int(nil), x.Pattern...), Value: x.Value}
	if x.Arcs != nil {
		c.Arcs = x.Arcs.Clone()
	}
	return c
}
