// Package model defines the cutting-stock problem instance and the column
// records shared by the master problem, the pricing subproblems and the
// branch-and-price driver.
//
// An instance normalizes the raw item list into strip types (one per
// distinct item width, widest first) and precomputes the index maps the
// arc-flow networks rely on: width -> strip type, length -> item type,
// width -> items of that width.
package model

import (
	"fmt"
	"sort"
)

// ItemType is one demanded rectangle class: d copies of a w x l piece.
type ItemType struct {
	ID     int
	Width  int
	Length int
	Demand int
}

// StripType is a stage-1 product: a full-length strip of a given width.
// Strip types are the distinct item widths, ordered by descending width.
type StripType struct {
	Index  int
	Width  int
	Length int
}

// Arc is a placement edge in a position-indexed network: a piece of size
// End-Start placed with its lower edge at position Start.
type Arc struct {
	Start int
	End   int
}

// Len returns the arc's size (strip width for SP1, item length for SP2).
func (a Arc) Len() int { return a.End - a.Start }

func (a Arc) String() string { return fmt.Sprintf("(%d,%d)", a.Start, a.End) }

// ArcSet is the set of placement arcs a column's pattern induces under the
// canonical descending-position ordering.
type ArcSet map[Arc]struct{}

// Has reports whether the arc is in the set.
func (s ArcSet) Has(a Arc) bool {
	_, ok := s[a]
	return ok
}

// Add inserts the arc.
func (s ArcSet) Add(a Arc) { s[a] = struct{}{} }

// Clone returns an independent copy of the set.
func (s ArcSet) Clone() ArcSet {
	c := make(ArcSet, len(s))
	for a := range s {
		c[a] = struct{}{}
	}
	return c
}

// Instance is the normalized problem: stock plate dimensions, item types
// and the derived strip types and index maps. It is immutable once built.
type Instance struct {
	StockWidth  int
	StockLength int

	Items  []ItemType
	Strips []StripType

	// WidthToStrip maps a strip width to its strip-type index.
	WidthToStrip map[int]int
	// LengthToItem maps an item length to its item-type index. Lengths are
	// required to be distinct across item types.
	LengthToItem map[int]int
	// WidthToItems maps an item width to the indices of all items of that
	// width, in item order.
	WidthToItems map[int][]int
}

// NewInstance validates the raw input and derives strip types and index
// maps. It returns ErrBadInstance (wrapped) for out-of-range dimensions,
// items that exceed the stock plate, negative demand, or duplicate item
// lengths (which would make the length -> item map ambiguous).
func NewInstance(stockWidth, stockLength int, items []ItemType) (*Instance, error) {
	if stockWidth <= 0 || stockLength <= 0 {
		return nil, fmt.Errorf("stock %dx%d: %w", stockWidth, stockLength, ErrBadInstance)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no item types: %w", ErrBadInstance)
	}

	inst := &Instance{
		StockWidth:   stockWidth,
		StockLength:  stockLength,
		Items:        make([]ItemType, len(items)),
		WidthToStrip: make(map[int]int),
		LengthToItem: make(map[int]int),
		WidthToItems: make(map[int][]int),
	}
	copy(inst.Items, items)

	widthSet := make(map[int]bool)
	for i, it := range inst.Items {
		if it.Width <= 0 || it.Length <= 0 {
			return nil, fmt.Errorf("item %d has size %dx%d: %w", it.ID, it.Width, it.Length, ErrBadInstance)
		}
		if it.Width > stockWidth || it.Length > stockLength {
			return nil, fmt.Errorf("item %d (%dx%d) exceeds stock %dx%d: %w",
				it.ID, it.Width, it.Length, stockWidth, stockLength, ErrBadInstance)
		}
		if it.Demand < 0 {
			return nil, fmt.Errorf("item %d has demand %d: %w", it.ID, it.Demand, ErrBadInstance)
		}
		if prev, dup := inst.LengthToItem[it.Length]; dup {
			return nil, fmt.Errorf("items %d and %d share length %d: %w",
				inst.Items[prev].ID, it.ID, it.Length, ErrBadInstance)
		}
		inst.LengthToItem[it.Length] = i
		widthSet[it.Width] = true
		inst.WidthToItems[it.Width] = append(inst.WidthToItems[it.Width], i)
	}

	// Strip types: distinct widths, widest first. Wider strips come first so
	// the exporter's descending layout matches strip-type index order.
	widths := make([]int, 0, len(widthSet))
	for w := range widthSet {
		widths = append(widths, w)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(widths)))

	inst.Strips = make([]StripType, len(widths))
	for j, w := range widths {
		inst.Strips[j] = StripType{Index: j, Width: w, Length: stockLength}
		inst.WidthToStrip[w] = j
	}

	return inst, nil
}

// StripOf returns the strip-type index an item is cut from (exact width
// match). The map is total by construction.
func (in *Instance) StripOf(item int) int {
	return in.WidthToStrip[in.Items[item].Width]
}

// ItemsOfStrip returns the item indices cuttable from the given strip type,
// i.e. the items whose width equals the strip width.
func (in *Instance) ItemsOfStrip(strip int) []int {
	return in.WidthToItems[in.Strips[strip].Width]
}

// TotalDemand is the number of individual pieces demanded.
func (in *Instance) TotalDemand() int {
	n := 0
	for _, it := range in.Items {
		n += it.Demand
	}
	return n
}

// ItemArea is the total demanded item area, used for utilization figures.
func (in *Instance) ItemArea() int {
	a := 0
	for _, it := range in.Items {
		a += it.Width * it.Length * it.Demand
	}
	return a
}
