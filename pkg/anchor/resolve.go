package anchor

import (
	"fmt"
	"strings"

	"github.com/sensenote/sensenote/pkg/document"
)

// Span is a resolved position: a half-open byte interval of the linear text.
type Span struct {
	Start int
	End   int
}

// Resolve finds where an anchor's text lives in the given linearization.
//
// The context-qualified pattern before+exact+after runs first, since it
// pinpoints the original selection even when the exact text repeats. When
// the qualified pattern misses, the bare exact text is searched on its own.
// Both searches take the leftmost match. Resolve never mutates the anchor.
func Resolve(a *Anchor, lin *document.Linearization) (Span, error) {
	if a.ExactText == "" {
		return Span{}, ErrNotFound
	}
	text := lin.Text()
	if a.ContextBefore != "" || a.ContextAfter != "" {
		if p := strings.Index(text, a.ContextBefore+a.ExactText+a.ContextAfter); p >= 0 {
			start := p + len(a.ContextBefore)
			return Span{Start: start, End: start + len(a.ExactText)}, nil
		}
	}
	if p := strings.Index(text, a.ExactText); p >= 0 {
		return Span{Start: p, End: p + len(a.ExactText)}, nil
	}
	return Span{}, ErrNotFound
}

// Materialize resolves the anchor and converts the span to a live range,
// verifying that the text the range actually covers is byte-identical to
// the anchor's exact text. A range that would walk through content the
// linearization excluded fails verification, so highlighting can never
// swallow foreign markup.
func Materialize(a *Anchor, lin *document.Linearization) (document.Range, error) {
	span, err := Resolve(a, lin)
	if err != nil {
		return document.Range{}, err
	}
	r, err := lin.Materialize(span.Start, span.End)
	if err != nil {
		return document.Range{}, fmt.Errorf("anchor %s: %w", a.ID, err)
	}
	if r.Text() != a.ExactText {
		return document.Range{}, ErrTextMismatch
	}
	return r, nil
}
