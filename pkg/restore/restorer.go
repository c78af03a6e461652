// Package restore re-applies stored highlights to a freshly loaded document
// and scrolls a fragment-addressed highlight into view once it exists.
package restore

import (
	"errors"

	"github.com/sensenote/sensenote/pkg/anchor"
	"github.com/sensenote/sensenote/pkg/document"
	"github.com/sensenote/sensenote/pkg/highlight"
	"github.com/sensenote/sensenote/pkg/logging"
)

// Failure records one anchor that could not be restored.
type Failure struct {
	AnchorID string
	Err      error
}

// Result aggregates one restoration pass over a document.
type Result struct {
	Restored int
	Failed   int
	Skipped  int
	Failures []Failure
}

// Restorer drives the resolve, materialize, wrap pipeline over a document's
// stored anchors.
type Restorer struct {
	log *logging.Logger
}

// New builds a restorer. A nil logger is replaced with a no-op one.
func New(log *logging.Logger) *Restorer {
	if log == nil {
		log = logging.Nop()
	}
	return &Restorer{log: log}
}

// Restore applies every anchor belonging to doc's key, in stored order.
// Anchors for other documents are ignored. A failing anchor is counted and
// logged, never fatal: one unresolvable highlight must not take down the
// rest of the batch.
//
// The document is re-linearized for every anchor. Applying a wrapper splits
// text nodes and removes the wrapped text from later linearizations, so a
// fresh run arena per anchor is the only view whose node references are
// guaranteed live.
func (r *Restorer) Restore(doc *document.Document, anchors []*anchor.Anchor) Result {
	var res Result
	for _, a := range anchors {
		if a.DocumentKey != doc.Key() {
			continue
		}
		if doc.HasWrapper(a.ID) {
			res.Skipped++
			continue
		}

		lin := document.Linearize(doc.Body())
		rng, err := anchor.Materialize(a, lin)
		if err != nil {
			res.Failed++
			res.Failures = append(res.Failures, Failure{AnchorID: a.ID, Err: err})
			switch {
			case errors.Is(err, anchor.ErrNotFound):
				r.log.Infof("anchor %s: text not found, highlight not restored", a.ID)
			case errors.Is(err, anchor.ErrTextMismatch):
				r.log.Infof("anchor %s: matched text drifted, highlight not restored", a.ID)
			default:
				r.log.Warnf("anchor %s: %v", a.ID, err)
			}
			continue
		}

		if err := highlight.Apply(doc, rng, a.ID, a.Color); err != nil {
			res.Failed++
			res.Failures = append(res.Failures, Failure{AnchorID: a.ID, Err: err})
			r.log.Warnf("anchor %s: wrap failed: %v", a.ID, err)
			continue
		}
		res.Restored++
	}

	if res.Restored > 0 {
		r.log.Infof("restored %d highlights (%d failed, %d already live)", res.Restored, res.Failed, res.Skipped)
	}
	return res
}
