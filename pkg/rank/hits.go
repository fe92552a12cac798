package rank

import (
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/conet/pkg/graph"
)

// HITS computes hub and authority scores of g by power iteration on the
// weighted adjacency matrix A:
//
//	a = Aᵀh, h = Aa
//
// Both vectors are scaled by their maximum after every step, and the
// iteration stops when the L1 change of the hub vector drops below
// opts.Tolerance or opts.MaxIterations is reached. The final vectors are
// normalized to sum to 1. opts.Damping is ignored.
func HITS(g *graph.Graph, opts Options) HubsAuthorities {
	opts.SetDefaults()
	adj := newAdjacency(g)
	n := len(adj.ids)

	hubs := Result{Algorithm: "hits", ids: adj.ids, Converged: true}
	auths := Result{Algorithm: "hits", ids: adj.ids, Converged: true}
	if n == 0 {
		return HubsAuthorities{Hubs: hubs, Authorities: auths}
	}

	h := make([]float64, n)
	for i := range h {
		h[i] = 1 / float64(n)
	}
	a := make([]float64, n)
	last := make([]float64, n)

	converged := false
	iters := 0
	delta := 0.0
	for iters < opts.MaxIterations {
		iters++
		copy(last, h)

		// a = Aᵀh; A is symmetric.
		mulAdj(adj, a, last)
		// h = Aa
		mulAdj(adj, h, a)

		scaleMax(h)
		scaleMax(a)

		delta = floats.Distance(h, last, 1)
		if delta < opts.Tolerance {
			converged = true
			break
		}
	}

	scaleSum(h)
	scaleSum(a)

	for _, r := range []*Result{&hubs, &auths} {
		r.Iterations = iters
		r.Converged = converged
		r.Delta = delta
	}
	hubs.values = h
	auths.values = a
	return HubsAuthorities{Hubs: hubs, Authorities: auths}
}

// mulAdj sets dst = A·x.
func mulAdj(adj adjacency, dst, x []float64) {
	for u, vs := range adj.nbrs {
		s := 0.0
		for k, v := range vs {
			s += adj.w[u][k] * x[v]
		}
		dst[u] = s
	}
}

func scaleMax(v []float64) {
	if m := floats.Max(v); m > 0 {
		floats.Scale(1/m, v)
	}
}

func scaleSum(v []float64) {
	if s := floats.Sum(v); s > 0 {
		floats.Scale(1/s, v)
	}
}
