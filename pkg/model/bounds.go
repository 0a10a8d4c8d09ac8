package model

// ArcBounds is the accumulated branching state of one pricing network: the
// arcs a node has disabled, capped, or forced. A node's bounds are the
// union of its ancestors' plus the one constraint added at creation.
type ArcBounds struct {
	Zero  ArcSet
	Upper map[Arc]int
	Lower map[Arc]int
}

// NewArcBounds returns empty bounds.
func NewArcBounds() ArcBounds {
	return ArcBounds{
		Zero:  make(ArcSet),
		Upper: make(map[Arc]int),
		Lower: make(map[Arc]int),
	}
}

// Empty reports whether no constraint has been recorded.
func (b ArcBounds) Empty() bool {
	return len(b.Zero) == 0 && len(b.Upper) == 0 && len(b.Lower) == 0
}

// Clone deep-copies the bounds.
func (b ArcBounds) Clone() ArcBounds {
	c := ArcBounds{
		Zero:  b.Zero.Clone(),
		Upper: make(map[Arc]int, len(b.Upper)),
		Lower: make(map[Arc]int, len(b.Lower)),
	}
	for a, v := range b.Upper {
		c.Upper[a] = v
	}
	for a, v := range b.Lower {
		c.Lower[a] = v
	}
	return c
}
