package pipeline

import (
	stderrors "errors"
	"io/fs"
	"time"

	"github.com/matzehuels/conet/pkg/enrich"
	"github.com/matzehuels/conet/pkg/errors"
	conetio "github.com/matzehuels/conet/pkg/io"
	"github.com/matzehuels/conet/pkg/metrics"
	"github.com/matzehuels/conet/pkg/rank"
)

// Document is the assembled result of one run. It is never modified after
// assembly.
type Document struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`

	metrics.Result

	PageRank enrich.Ranking   `json:"page_rank"`
	HITS     *HITSScores      `json:"hits,omitempty"`
	Warnings []errors.Warning `json:"warnings"`
}

// HITSScores holds hub and authority scores by node.
type HITSScores struct {
	Hubs        map[string]float64 `json:"hubs"`
	Authorities map[string]float64 `json:"authorities"`
}

// Assemble combines the analysis outputs into a Document. Every ranked node
// appears in PageRank whether or not d has data for it; a nil d means
// enrichment is disabled. hits may be nil.
//
// Undefined metrics and non-converged rankings become Warnings, in stage
// order. Nodes without category data are only counted in PageRank.Unmatched.
// RunID, Source and GeneratedAt are left for the caller.
func Assemble(m metrics.Result, pr rank.Result, hits *rank.HubsAuthorities, d enrich.Distribution) Document {
	doc := Document{
		Result:   m,
		PageRank: enrich.Merge(pr.Sorted(), d),
		Warnings: []errors.Warning{},
	}
	doc.Warnings = append(doc.Warnings, m.Undefined...)
	if err := pr.Warning(); err != nil {
		doc.Warnings = append(doc.Warnings, errors.AsWarning(err))
	}
	if hits != nil {
		doc.HITS = &HITSScores{
			Hubs:        hits.Hubs.Map(),
			Authorities: hits.Authorities.Map(),
		}
		if err := hits.Warning(); err != nil {
			doc.Warnings = append(doc.Warnings, errors.AsWarning(err))
		}
	}
	return doc
}

// Scores returns the PageRank score of every node.
func (d *Document) Scores() map[string]float64 {
	out := make(map[string]float64, len(d.PageRank.Entries))
	for _, e := range d.PageRank.Entries {
		out[e.ID] = e.Entry.Rank
	}
	return out
}

// LoadDocument reads a result document written by a previous run.
func LoadDocument(path string) (*Document, error) {
	doc, err := conetio.ImportJSON[Document](path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "result file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read result %s", path)
	}
	return &doc, nil
}
