// Package metrics computes structural statistics of a co-occurrence graph.
//
// All metrics use edge weights: the weighted degree of a node is the sum of
// its incident edge weights, and the clustering coefficient scales each
// triangle by the geometric mean of its normalized edge weights. On a graph
// whose weights are all 1 the same code yields the unweighted values.
//
// Metrics that are mathematically undefined for a given graph (for example
// assortativity when every edge joins nodes of equal degree) are reported as
// an invalid [Value], which encodes as JSON null, together with a warning in
// [Result.Undefined]. One undefined metric never prevents the others from
// being reported.
package metrics

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/graph"
)

// Metric names used in result documents.
const (
	NodeNum           = "node_num"
	EdgeNum           = "edge_num"
	AvgDegree         = "avg_degree"
	Density           = "density"
	Assortativity     = "assortativity"
	AverageClustering = "average_clustering"
)

// Value is a metric that may be undefined.
type Value struct {
	V     float64
	Valid bool
}

// Defined returns a valid Value holding v.
func Defined(v float64) Value { return Value{V: v, Valid: true} }

// Float returns the value, or NaN if it is undefined.
func (v Value) Float() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.V
}

// MarshalJSON encodes an undefined value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON decodes null as an undefined value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}

// Result holds the scalar metrics of one graph. It is read-only once
// returned by [Compute].
type Result struct {
	NodeNum           int     `json:"node_num"`
	EdgeNum           int     `json:"edge_num"`
	AvgDegree         float64 `json:"avg_degree"`
	Density           float64 `json:"density"`
	Assortativity     Value   `json:"assortativity"`
	AverageClustering Value   `json:"average_clustering"`

	// Undefined explains every metric reported as undefined.
	Undefined []errors.Warning `json:"-"`
}

// Map returns the metrics keyed by name. Undefined metrics map to NaN.
func (r Result) Map() map[string]float64 {
	return map[string]float64{
		NodeNum:           float64(r.NodeNum),
		EdgeNum:           float64(r.EdgeNum),
		AvgDegree:         r.AvgDegree,
		Density:           r.Density,
		Assortativity:     r.Assortativity.Float(),
		AverageClustering: r.AverageClustering.Float(),
	}
}

// Compute derives all metrics from g.
//
// A graph without edges fails with [errors.ErrCodeInsufficientData]; the
// returned Result still carries the node and edge counts so callers can
// report partial data.
func Compute(g *graph.Graph) (Result, error) {
	r := Result{
		NodeNum: g.NodeCount(),
		EdgeNum: g.EdgeCount(),
	}
	if r.EdgeNum == 0 {
		err := errors.New(errors.ErrCodeInsufficientData, "graph has no edges")
		r.Undefined = append(r.Undefined,
			errors.AsWarning(errors.New(errors.ErrCodeInsufficientData, "%s: graph has no edges", Assortativity)),
			errors.AsWarning(errors.New(errors.ErrCodeInsufficientData, "%s: graph has no edges", AverageClustering)),
		)
		return r, err
	}

	r.AvgDegree = AverageDegree(g)
	r.Density = GraphDensity(g)

	if v, err := DegreeAssortativity(g); err != nil {
		r.Undefined = append(r.Undefined, errors.AsWarning(err))
	} else {
		r.Assortativity = Defined(v)
	}

	if v, err := AverageClusteringCoefficient(g); err != nil {
		r.Undefined = append(r.Undefined, errors.AsWarning(err))
	} else {
		r.AverageClustering = Defined(v)
	}

	return r, nil
}

// AverageDegree returns the mean weighted degree, or 0 for an empty graph.
func AverageDegree(g *graph.Graph) float64 {
	n := g.NodeCount()
	if n == 0 {
		return 0
	}
	total := 0
	for _, id := range g.Nodes() {
		total += g.WeightedDegree(id)
	}
	return float64(total) / float64(n)
}

// GraphDensity returns m / (n(n-1)/2), or 0 if the graph has fewer than two
// nodes.
func GraphDensity(g *graph.Graph) float64 {
	n := g.NodeCount()
	if n < 2 {
		return 0
	}
	return float64(g.EdgeCount()) / (float64(n) * float64(n-1) / 2)
}

// DegreeAssortativity returns the Pearson correlation between the weighted
// degrees at either end of each edge. Every edge contributes both
// orientations, so the coefficient is symmetric.
//
// It fails with [errors.ErrCodeInsufficientData] when all endpoint degrees
// are equal, because the correlation is then 0/0.
func DegreeAssortativity(g *graph.Graph) (float64, error) {
	edges := g.Edges()
	if len(edges) == 0 {
		return math.NaN(), errors.New(errors.ErrCodeInsufficientData, "%s: graph has no edges", Assortativity)
	}

	deg := make(map[string]int, g.NodeCount())
	for _, id := range g.Nodes() {
		deg[id] = g.WeightedDegree(id)
	}

	x := make([]float64, 0, 2*len(edges))
	y := make([]float64, 0, 2*len(edges))
	lo, hi := math.MaxInt, math.MinInt
	for _, e := range edges {
		da, db := deg[e.A], deg[e.B]
		x = append(x, float64(da), float64(db))
		y = append(y, float64(db), float64(da))
		lo, hi = min(lo, da, db), max(hi, da, db)
	}
	if lo == hi {
		return math.NaN(), errors.New(errors.ErrCodeInsufficientData,
			"%s: every edge joins nodes of degree %d (zero variance)", Assortativity, lo)
	}

	return stat.Correlation(x, y, nil), nil
}

// AverageClusteringCoefficient returns the mean local clustering coefficient
// over all nodes.
//
// For a node u with k ≥ 2 neighbors the local coefficient is
//
//	c(u) = 2/(k(k-1)) · Σ (ŵ(u,v) · ŵ(u,w) · ŵ(v,w))^(1/3)
//
// summed over neighbor pairs {v, w} that are themselves adjacent, where
// ŵ = weight / max edge weight. Nodes with fewer than two neighbors
// contribute 0. Graphs with fewer than three nodes cannot hold a triangle and
// fail with [errors.ErrCodeInsufficientData].
func AverageClusteringCoefficient(g *graph.Graph) (float64, error) {
	n := g.NodeCount()
	if n < 3 {
		return math.NaN(), errors.New(errors.ErrCodeInsufficientData,
			"%s: need at least 3 nodes, got %d", AverageClustering, n)
	}

	maxW := float64(g.MaxWeight())
	total := 0.0
	for _, id := range g.Nodes() {
		total += localClustering(g, id, maxW)
	}
	return total / float64(n), nil
}

func localClustering(g *graph.Graph, id string, maxW float64) float64 {
	nbrs := g.Neighbors(id)
	k := len(nbrs)
	if k < 2 {
		return 0
	}

	tri := 0.0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			w, ok := g.Weight(nbrs[i].ID, nbrs[j].ID)
			if !ok {
				continue
			}
			prod := float64(nbrs[i].Weight) / maxW * float64(nbrs[j].Weight) / maxW * float64(w) / maxW
			tri += math.Cbrt(prod)
		}
	}
	return 2 * tri / float64(k*(k-1))
}
