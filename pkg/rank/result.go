// Package rank computes node importance scores on a co-occurrence graph.
//
// Two algorithms are provided, both as power iterations over the weighted
// adjacency matrix:
//
//   - [PageRank]: the stationary distribution of a random walk that follows
//     an edge with probability proportional to its weight and teleports to a
//     uniformly random node with probability 1-damping.
//   - [HITS]: hub and authority scores. On an undirected graph the two
//     vectors coincide up to numerical error; both are reported.
//
// Every Result is normalized to sum to 1. When the iteration cap is reached
// before convergence the best-effort scores are still returned and
// [Result.Warning] reports a NOT_CONVERGED error.
package rank

import (
	"cmp"
	"slices"

	"github.com/matzehuels/conet/pkg/errors"
)

// Default iteration parameters.
const (
	DefaultDamping       = 0.85
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
)

// Options configures the power iterations.
type Options struct {
	Damping       float64 `json:"damping" toml:"damping"`               // PageRank only
	Tolerance     float64 `json:"tolerance" toml:"tolerance"`           // L1 change that counts as converged
	MaxIterations int     `json:"max_iterations" toml:"max_iterations"` // iteration cap
}

// DefaultOptions returns damping 0.85, tolerance 1e-6 and 100 iterations.
func DefaultOptions() Options {
	return Options{
		Damping:       DefaultDamping,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

// SetDefaults fills zero fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.Damping == 0 {
		o.Damping = DefaultDamping
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
}

// Validate checks that the options describe a well-defined iteration.
func (o Options) Validate() error {
	if o.Damping <= 0 || o.Damping >= 1 {
		return errors.New(errors.ErrCodeInvalidInput, "damping must be in (0, 1), got %v", o.Damping)
	}
	if o.Tolerance <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tolerance must be positive, got %v", o.Tolerance)
	}
	if o.MaxIterations < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "max iterations must be at least 1, got %d", o.MaxIterations)
	}
	return nil
}

// Score is one node's rank.
type Score struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// Result holds the scores of one ranking run, indexed in node discovery
// order.
type Result struct {
	// Algorithm names the ranking, e.g. "pagerank".
	Algorithm string
	// Iterations is the number of power-iteration steps performed.
	Iterations int
	// Converged is false when MaxIterations was reached first.
	Converged bool
	// Delta is the L1 change of the last step.
	Delta float64

	ids    []string
	values []float64
}

// Len returns the number of ranked nodes.
func (r Result) Len() int { return len(r.ids) }

// Score returns the score of id.
func (r Result) Score(id string) (float64, bool) {
	i := slices.Index(r.ids, id)
	if i < 0 {
		return 0, false
	}
	return r.values[i], true
}

// Map returns the scores keyed by node.
func (r Result) Map() map[string]float64 {
	m := make(map[string]float64, len(r.ids))
	for i, id := range r.ids {
		m[id] = r.values[i]
	}
	return m
}

// Sorted returns the scores in descending order. Equal scores keep node
// discovery order, so the ordering is reproducible.
func (r Result) Sorted() []Score {
	out := make([]Score, len(r.ids))
	for i, id := range r.ids {
		out[i] = Score{ID: id, Value: r.values[i]}
	}
	slices.SortStableFunc(out, func(a, b Score) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}

// Warning returns a NOT_CONVERGED error if the iteration cap was reached,
// otherwise nil.
func (r Result) Warning() error {
	if r.Converged {
		return nil
	}
	return errors.New(errors.ErrCodeNotConverged,
		"%s did not converge after %d iterations (last change %.3g)", r.Algorithm, r.Iterations, r.Delta)
}

// HubsAuthorities is the outcome of [HITS].
type HubsAuthorities struct {
	Hubs        Result
	Authorities Result
}

// Warning returns the convergence warning shared by both vectors.
func (h HubsAuthorities) Warning() error { return h.Hubs.Warning() }
