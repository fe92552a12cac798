package graph

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
)

// Edge is an undirected weighted edge. A was discovered before B.
type Edge struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Weight int    `json:"weight"`
}

// Neighbor is an adjacent node together with the weight of the shared edge.
type Neighbor struct {
	ID     string
	Weight int
}

// Graph is an undirected, weighted, simple co-occurrence graph.
//
// Node identifiers are strings; internally each node is assigned a dense
// int64 ID equal to its discovery index, and the structure is held in a gonum
// [simple.WeightedUndirectedGraph]. A Graph is immutable after [New] and safe
// for concurrent reads.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	ids   []string
	index map[string]int64
	edges []Edge
}

// New builds a graph with one node per identifier appearing in any pair and
// one edge per pair, weighted by its count. Nodes are numbered in the order
// they first appear while iterating p.
func New(p *Pairs) *Graph {
	g := &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, 0),
		index: make(map[string]int64),
	}
	for pr, n := range p.All() {
		a, b := g.intern(pr.A), g.intern(pr.B)
		g.g.SetWeightedEdge(g.g.NewWeightedEdge(simple.Node(a), simple.Node(b), float64(n)))
		g.edges = append(g.edges, Edge{A: pr.A, B: pr.B, Weight: n})
	}
	return g
}

func (g *Graph) intern(id string) int64 {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := int64(len(g.ids))
	g.ids = append(g.ids, id)
	g.index[id] = i
	g.g.AddNode(simple.Node(i))
	return i
}

// Nodes returns node identifiers in discovery order. The slice is a copy.
func (g *Graph) Nodes() []string { return slices.Clone(g.ids) }

// Edges returns all edges in discovery order. The slice is a copy.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.ids) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Index returns the discovery index of id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return int(i), ok
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Weight returns the weight of the edge between a and b. The lookup is
// symmetric; ok is false if there is no such edge or a == b.
func (g *Graph) Weight(a, b string) (int, bool) {
	ai, aok := g.index[a]
	bi, bok := g.index[b]
	if !aok || !bok || ai == bi {
		return 0, false
	}
	if !g.g.HasEdgeBetween(ai, bi) {
		return 0, false
	}
	w, _ := g.g.Weight(ai, bi)
	return int(w), true
}

// Neighbors returns the nodes adjacent to id with their edge weights, ordered
// by discovery index so that floating-point accumulation over them is
// reproducible.
func (g *Graph) Neighbors(id string) []Neighbor {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	it := g.g.From(i)
	out := make([]Neighbor, 0, it.Len())
	idx := make([]int64, 0, it.Len())
	for it.Next() {
		idx = append(idx, it.Node().ID())
	}
	slices.SortFunc(idx, cmp.Compare[int64])
	for _, j := range idx {
		w, _ := g.g.Weight(i, j)
		out = append(out, Neighbor{ID: g.ids[j], Weight: int(w)})
	}
	return out
}

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return g.g.From(i).Len()
}

// WeightedDegree returns the sum of the weights of edges incident to id.
func (g *Graph) WeightedDegree(id string) int {
	total := 0
	for _, n := range g.Neighbors(id) {
		total += n.Weight
	}
	return total
}

// TotalWeight returns the sum of all edge weights.
func (g *Graph) TotalWeight() int {
	total := 0
	for _, e := range g.edges {
		total += e.Weight
	}
	return total
}

// MaxWeight returns the largest edge weight, or 0 for a graph without edges.
func (g *Graph) MaxWeight() int {
	m := 0
	for _, e := range g.edges {
		m = max(m, e.Weight)
	}
	return m
}
