// Package enrich attaches a categorical distribution, typically the share of
// a contributor's records per country, to each ranked node.
//
// [Tally] turns the raw records into a [Distribution] of percentages per
// node, and [Merge] joins the distribution onto a ranking by exact node
// identifier. Nodes without category data are kept with an empty
// distribution; a missing match is never an error.
package enrich

import (
	"maps"
	"slices"

	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/rank"
	"github.com/matzehuels/conet/pkg/records"
)

// RankField is the output key holding a node's score. A category with this
// name is written with a leading underscore, see [CategoryKey].
const RankField = "rank"

// LastField selects the last field of every record as the category.
const LastField = -1

// Distribution maps node -> category -> percentage. The percentages of each
// node sum to 100.
type Distribution map[string]map[string]float64

// Categories returns the distribution of id, or nil if id has no data.
func (d Distribution) Categories(id string) map[string]float64 {
	return d[id]
}

// Tally counts category values per node and converts the counts to
// percentages of each node's total. Every record counts once. A negative
// categoryIdx counts from the end of the record, so [LastField] selects the
// trailing field.
func Tally(recs []records.Record, nodeIdx, categoryIdx int) (Distribution, error) {
	if nodeIdx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node index must be non-negative, got %d", nodeIdx)
	}

	counts := make(map[string]map[string]int)
	totals := make(map[string]int)
	for i, rec := range recs {
		ci := categoryIdx
		if ci < 0 {
			ci += len(rec)
		}
		if nodeIdx >= len(rec) || ci < 0 || ci >= len(rec) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"record %d: no node field %d or category field %d in %d fields", i+1, nodeIdx, categoryIdx, len(rec))
		}
		if ci == nodeIdx {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"record %d: category field is the node field (%d)", i+1, nodeIdx)
		}

		node, cat := rec[nodeIdx], rec[ci]
		if counts[node] == nil {
			counts[node] = make(map[string]int)
		}
		counts[node][cat]++
		totals[node]++
	}

	d := make(Distribution, len(counts))
	for node, cats := range counts {
		pct := make(map[string]float64, len(cats))
		for cat, n := range cats {
			pct[cat] = 100 * float64(n) / float64(totals[node])
		}
		d[node] = pct
	}
	return d, nil
}

// Entry is one node's enriched rank.
type Entry struct {
	Rank       float64
	Categories map[string]float64
}

// Ranked pairs a node with its entry.
type Ranked struct {
	ID    string
	Entry Entry
}

// Ranking is the merged result in descending rank order.
type Ranking struct {
	Entries []Ranked
	// Unmatched counts ranked nodes for which the distribution had no data.
	Unmatched int
}

// Merge builds one new Entry per score, in the order given, attaching the
// node's categories from d. A nil d means enrichment is disabled: every
// entry gets an empty distribution and nothing counts as unmatched.
func Merge(scores []rank.Score, d Distribution) Ranking {
	r := Ranking{Entries: make([]Ranked, 0, len(scores))}
	for _, s := range scores {
		cats, ok := d[s.ID]
		if !ok && d != nil {
			r.Unmatched++
		}
		e := Entry{Rank: s.Value, Categories: make(map[string]float64, len(cats))}
		maps.Copy(e.Categories, cats)
		r.Entries = append(r.Entries, Ranked{ID: s.ID, Entry: e})
	}
	return r
}

// Warning returns a MERGE_MISMATCH error describing unmatched nodes, or nil.
// The condition is informational and never aborts a run.
func (r Ranking) Warning() error {
	if r.Unmatched == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeMergeMismatch,
		"%d of %d ranked nodes have no category data", r.Unmatched, len(r.Entries))
}

// Get returns the entry for id.
func (r Ranking) Get(id string) (Entry, bool) {
	i := slices.IndexFunc(r.Entries, func(e Ranked) bool { return e.ID == id })
	if i < 0 {
		return Entry{}, false
	}
	return r.Entries[i].Entry, true
}
