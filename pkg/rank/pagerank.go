package rank

import (
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/conet/pkg/graph"
)

// adjacency is the weighted adjacency of a graph in dense node indices.
type adjacency struct {
	ids  []string
	nbrs [][]int
	w    [][]float64
	wdeg []float64
}

func newAdjacency(g *graph.Graph) adjacency {
	ids := g.Nodes()
	a := adjacency{
		ids:  ids,
		nbrs: make([][]int, len(ids)),
		w:    make([][]float64, len(ids)),
		wdeg: make([]float64, len(ids)),
	}
	for i, id := range ids {
		for _, n := range g.Neighbors(id) {
			j, _ := g.Index(n.ID)
			a.nbrs[i] = append(a.nbrs[i], j)
			a.w[i] = append(a.w[i], float64(n.Weight))
			a.wdeg[i] += float64(n.Weight)
		}
	}
	return a
}

// PageRank ranks the nodes of g by weighted PageRank.
//
// The walk starts from the uniform distribution. Each step moves along edge
// u–v with probability w(u,v)/wdeg(u), and the mass of nodes without edges
// is spread uniformly. Iteration stops once the L1 change between steps
// falls below opts.Tolerance or opts.MaxIterations is reached. Zero option
// fields take the package defaults.
func PageRank(g *graph.Graph, opts Options) Result {
	opts.SetDefaults()
	adj := newAdjacency(g)
	n := len(adj.ids)
	res := Result{Algorithm: "pagerank", ids: adj.ids, Converged: true}
	if n == 0 {
		return res
	}

	nf := float64(n)
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / nf
	}
	next := make([]float64, n)

	res.Converged = false
	for res.Iterations < opts.MaxIterations {
		res.Iterations++

		dangling := 0.0
		for u := range rank {
			if adj.wdeg[u] == 0 {
				dangling += rank[u]
			}
		}
		base := (1-opts.Damping)/nf + opts.Damping*dangling/nf
		for i := range next {
			next[i] = base
		}
		for u, vs := range adj.nbrs {
			if adj.wdeg[u] == 0 {
				continue
			}
			share := opts.Damping * rank[u] / adj.wdeg[u]
			for k, v := range vs {
				next[v] += share * adj.w[u][k]
			}
		}

		res.Delta = floats.Distance(next, rank, 1)
		rank, next = next, rank
		if res.Delta < opts.Tolerance {
			res.Converged = true
			break
		}
	}

	floats.Scale(1/floats.Sum(rank), rank)
	res.values = rank
	return res
}
