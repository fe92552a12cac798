// Package graph builds weighted co-occurrence graphs from relationship records.
//
// # Overview
//
// Input records relate a node (for example a contributor) to a group (for
// example a project). Two nodes are linked when they share a group, and the
// edge weight counts how many distinct groups they share:
//
//	project,contributor
//	P1,alice
//	P1,bob
//	P2,alice
//	P2,bob
//
// yields the single edge alice–bob with weight 2.
//
// # Building
//
// [Aggregate] buckets records by group and counts pairs; [New] turns the
// counts into a [Graph]:
//
//	pairs, err := graph.Aggregate(table.Records, 1, 0)
//	if err != nil {
//	    return err
//	}
//	g := graph.New(pairs)
//
// # Invariants
//
//   - No self-loops: a node repeated inside a group never pairs with itself.
//   - No parallel edges: repeated co-occurrence increments one edge's weight.
//   - Symmetry: Weight(a, b) == Weight(b, a).
//   - Determinism: nodes and edges are numbered in discovery order, so
//     iteration and any floating-point accumulation over the graph are
//     reproducible between runs on the same input.
//
// The graph is immutable once built; there is no mutation API.
package graph
