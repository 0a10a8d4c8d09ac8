// Package arcflow builds the position-indexed networks behind the pricing
// subproblems and the branching rule.
//
// A network spans positions 0..Capacity. An arc (s, e) places one piece of
// size e-s at position s; a path source -> sink is a cutting pattern. SP1
// uses one network over the plate width (arc sizes are strip widths); SP2
// uses one network per strip type over the strip length (arc sizes are the
// lengths of items cut from that strip type).
package arcflow

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/platecut/pkg/model"
)

// Network is an immutable position-indexed DAG.
type Network struct {
	// Capacity is the sink position: plate width (SP1) or strip length (SP2).
	Capacity int
	// Sizes are the distinct usable piece sizes, descending.
	Sizes []int

	Arcs  []model.Arc
	index map[model.Arc]int

	// SourceOut and SinkIn are the arc indices leaving position 0 and
	// entering position Capacity.
	SourceOut []int
	SinkIn    []int
	// Interior holds the interior node positions in ascending order; In and
	// Out give each node's incident arc indices (source and sink included).
	Interior []int
	In       map[int][]int
	Out      map[int][]int

	// Positions are all node positions in topological order.
	Positions []int

	g *simple.DirectedGraph
}

// BuildSP1 constructs the stage-1 network over the plate width. Arc sizes
// are the strip widths.
func BuildSP1(inst *model.Instance) *Network {
	sizes := make([]int, len(inst.Strips))
	for j, s := range inst.Strips {
		sizes[j] = s.Width
	}
	return build(inst.StockWidth, sizes)
}

// BuildSP2 constructs the stage-2 network for one strip type over the
// strip length. Arc sizes are the lengths of the items cut from that strip
// (width equality, per the two-stage rule).
func BuildSP2(inst *model.Instance, strip int) *Network {
	var sizes []int
	for _, i := range inst.ItemsOfStrip(strip) {
		sizes = append(sizes, inst.Items[i].Length)
	}
	return build(inst.StockLength, sizes)
}

// build enumerates candidate arcs (s, s+size) for every start position and
// usable size, deduplicates them, and classifies nodes.
func build(capacity int, sizes []int) *Network {
	n := &Network{
		Capacity: capacity,
		index:    make(map[model.Arc]int),
		In:       make(map[int][]int),
		Out:      make(map[int][]int),
		g:        simple.NewDirectedGraph(),
	}

	// Distinct sizes, descending. Duplicate sizes collapse to one arc per
	// position; the pattern index mapping recovers the type later.
	seen := make(map[int]bool)
	for _, s := range sizes {
		if s > 0 && s <= capacity && !seen[s] {
			seen[s] = true
			n.Sizes = append(n.Sizes, s)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(n.Sizes)))

	nodes := map[int]bool{0: true, capacity: true}
	for start := 0; start <= capacity; start++ {
		for _, size := range n.Sizes {
			end := start + size
			if end > capacity {
				continue
			}
			arc := model.Arc{Start: start, End: end}
			if _, dup := n.index[arc]; dup {
				continue
			}
			idx := len(n.Arcs)
			n.index[arc] = idx
			n.Arcs = append(n.Arcs, arc)
			nodes[start] = true
			nodes[end] = true
		}
	}

	// The graph's node IDs are positions; edges mirror the arc list. The
	// topological order doubles as the DP sweep order in pricing.
	for pos := range nodes {
		n.g.AddNode(simple.Node(pos))
	}
	for _, arc := range n.Arcs {
		n.g.SetEdge(n.g.NewEdge(simple.Node(arc.Start), simple.Node(arc.End)))
	}
	if order, err := topo.Sort(n.g); err == nil {
		for _, node := range order {
			n.Positions = append(n.Positions, int(node.ID()))
		}
	} else {
		// Unreachable for position-indexed arcs (start < end always).
		for pos := range nodes {
			n.Positions = append(n.Positions, pos)
		}
		sort.Ints(n.Positions)
	}

	for idx, arc := range n.Arcs {
		if arc.Start == 0 {
			n.SourceOut = append(n.SourceOut, idx)
		}
		if arc.End == capacity {
			n.SinkIn = append(n.SinkIn, idx)
		}
		n.Out[arc.Start] = append(n.Out[arc.Start], idx)
		n.In[arc.End] = append(n.In[arc.End], idx)
	}
	for pos := range nodes {
		if pos != 0 && pos != capacity {
			n.Interior = append(n.Interior, pos)
		}
	}
	sort.Ints(n.Interior)

	return n
}

// ArcIndex returns the index of arc in the network, or -1 if absent.
func (n *Network) ArcIndex(a model.Arc) int {
	if idx, ok := n.index[a]; ok {
		return idx
	}
	return -1
}

// HasArc reports whether the arc exists in the network.
func (n *Network) HasArc(a model.Arc) bool {
	_, ok := n.index[a]
	return ok
}

// NumNodes returns the node count (source and sink included).
func (n *Network) NumNodes() int { return len(n.Interior) + 2 }
