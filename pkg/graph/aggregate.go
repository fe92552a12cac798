package graph

import (
	"iter"

	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/records"
)

// Pair is an unordered pair of distinct node identifiers. A is the member that
// was discovered first; the pair (B, A) denotes the same co-occurrence.
type Pair struct {
	A, B string
}

type pairKey struct{ lo, hi string }

func keyOf(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Pairs counts, for every unordered pair of nodes, the number of groups in
// which both appear. Iteration follows discovery order, never map order.
type Pairs struct {
	order  []Pair
	counts map[pairKey]int
}

// Count returns the number of groups shared by a and b, in either order.
func (p *Pairs) Count(a, b string) int {
	return p.counts[keyOf(a, b)]
}

// Len returns the number of distinct pairs.
func (p *Pairs) Len() int { return len(p.order) }

// All yields every pair with its count in discovery order.
func (p *Pairs) All() iter.Seq2[Pair, int] {
	return func(yield func(Pair, int) bool) {
		for _, pr := range p.order {
			if !yield(pr, p.counts[keyOf(pr.A, pr.B)]) {
				return
			}
		}
	}
}

func (p *Pairs) add(a, b string) {
	k := keyOf(a, b)
	if _, ok := p.counts[k]; !ok {
		p.order = append(p.order, Pair{A: a, B: b})
	}
	p.counts[k]++
}

// Aggregate groups records by the value at groupIdx and counts every pair of
// distinct node values (taken from nodeIdx) that share a group.
//
// A node value repeated inside one group is collapsed to its first occurrence
// before pairing: it never pairs with itself, and a duplicate record never
// counts a group twice. Groups with fewer than two distinct members produce
// no pairs. The result does not depend on record order beyond the discovery
// order used for iteration.
func Aggregate(recs []records.Record, nodeIdx, groupIdx int) (*Pairs, error) {
	if err := errors.ValidateIndices(nodeIdx, groupIdx); err != nil {
		return nil, err
	}
	need := records.Required(nodeIdx, groupIdx)

	var groupOrder []string
	members := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for i, r := range recs {
		if len(r) < need {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"record %d: want at least %d fields, got %d", i+1, need, len(r))
		}
		group, node := r[groupIdx], r[nodeIdx]

		s, ok := seen[group]
		if !ok {
			s = make(map[string]bool)
			seen[group] = s
			groupOrder = append(groupOrder, group)
		}
		if s[node] {
			continue
		}
		s[node] = true
		members[group] = append(members[group], node)
	}

	p := &Pairs{counts: make(map[pairKey]int)}
	for _, group := range groupOrder {
		m := members[group]
		for i := 0; i < len(m); i++ {
			for j := i + 1; j < len(m); j++ {
				p.add(m[i], m[j])
			}
		}
	}
	return p, nil
}
