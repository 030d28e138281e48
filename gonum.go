package graphlocal

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// undirected exposes the CSR arrays as a gonum graph.Undirected without
// copying the adjacency. Self-loops are hidden; an entry with weight zero is
// still an edge.
type undirected struct {
	g *Graph
}

var _ graph.Undirected = undirected{}

func (u undirected) has(id int64) bool {
	return id >= 0 && id < int64(u.g.n)
}

// Node implements graph.Graph.
func (u undirected) Node(id int64) graph.Node {
	if !u.has(id) {
		return nil
	}
	return simple.Node(id)
}

// Nodes implements graph.Graph.
func (u undirected) Nodes() graph.Nodes {
	nodes := make([]graph.Node, u.g.n)
	for i := range nodes {
		nodes[i] = simple.Node(i)
	}
	return iterator.NewOrderedNodes(nodes)
}

// From implements graph.Graph.
func (u undirected) From(id int64) graph.Nodes {
	if !u.has(id) {
		return graph.Empty
	}
	g := u.g
	cols := g.colIndex[g.rowStart[id]:g.rowStart[id+1]]
	it := &rowNodes{cols: cols, selfAt: -1, pos: -1}
	for i, c := range cols {
		if int64(c) == id {
			it.selfAt = i
			break
		}
	}
	return it
}

func (u undirected) weight(xid, yid int64) (float64, bool) {
	if !u.has(xid) || !u.has(yid) || xid == yid {
		return 0, false
	}
	g := u.g
	for k := g.rowStart[xid]; k < g.rowStart[xid+1]; k++ {
		if int64(g.colIndex[k]) == yid {
			return g.weight[k], true
		}
	}
	return 0, false
}

// HasEdgeBetween implements graph.Graph.
func (u undirected) HasEdgeBetween(xid, yid int64) bool {
	_, ok := u.weight(xid, yid)
	return ok
}

// Edge implements graph.Graph.
func (u undirected) Edge(uid, vid int64) graph.Edge {
	return u.EdgeBetween(uid, vid)
}

// EdgeBetween implements graph.Undirected.
func (u undirected) EdgeBetween(xid, yid int64) graph.Edge {
	w, ok := u.weight(xid, yid)
	if !ok {
		return nil
	}
	return simple.WeightedEdge{F: simple.Node(xid), T: simple.Node(yid), W: w}
}

// rowNodes iterates one CSR row, skipping the self-loop entry at selfAt.
type rowNodes struct {
	cols   []uint32
	selfAt int
	pos    int
}

func (it *rowNodes) Next() bool {
	if it.pos >= len(it.cols) {
		return false
	}
	it.pos++
	if it.pos == it.selfAt {
		it.pos++
	}
	return it.pos < len(it.cols)
}

func (it *rowNodes) Len() int {
	rem := len(it.cols) - it.pos - 1
	if it.selfAt > it.pos {
		rem--
	}
	return max(rem, 0)
}

func (it *rowNodes) Reset() { it.pos = -1 }

func (it *rowNodes) Node() graph.Node {
	if it.pos < 0 || it.pos >= len(it.cols) {
		return nil
	}
	return simple.Node(it.cols[it.pos])
}
