package anchor

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sensenote/sensenote/pkg/document"
)

// CaptureOptions adjust a capture. Zero values select the defaults.
type CaptureOptions struct {
	// ContextLength is the context window width in runes.
	ContextLength int

	// Color is the highlight color recorded on the anchor.
	Color string
}

// Capture turns a live selection into a durable anchor scoped to key.
// Context windows are sliced from the linearization around the selection.
//
// Capture degrades rather than fails: when the selection's start node is not
// part of the linearization, or the selection's text does not line up with
// the linear text, the anchor keeps the exact text but carries no context
// and no position. Only an empty selection is an error.
func Capture(sel document.Selection, lin *document.Linearization, key string, opts CaptureOptions) (*Anchor, error) {
	if sel.Text == "" {
		return nil, ErrEmptySelection
	}
	window := opts.ContextLength
	if window <= 0 {
		window = DefaultContextLength
	}

	now := time.Now().UTC()
	a := &Anchor{
		ID:            uuid.NewString(),
		DocumentKey:   key,
		ExactText:     sel.Text,
		CapturedStart: -1,
		CapturedEnd:   -1,
		Color:         opts.Color,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	run, ok := lin.Locate(sel.Start.Node)
	if !ok {
		return a, nil
	}
	start := run.Start + sel.Start.Offset
	end := start + len(sel.Text)
	text := lin.Text()
	if start < 0 || end > len(text) || text[start:end] != sel.Text {
		// The selection crosses content the linearization excludes, so the
		// linear neighborhood around it is not trustworthy.
		return a, nil
	}

	a.CapturedStart = start
	a.CapturedEnd = end
	a.ContextBefore = contextBefore(text, start, window)
	a.ContextAfter = contextAfter(text, end, window)
	return a, nil
}

// contextBefore returns at most window runes of text ending at start, never
// splitting a rune.
func contextBefore(text string, start, window int) string {
	i := start
	for n := 0; n < window && i > 0; n++ {
		_, w := utf8.DecodeLastRuneInString(text[:i])
		i -= w
	}
	return text[i:start]
}

// contextAfter returns at most window runes of text beginning at end.
func contextAfter(text string, end, window int) string {
	i := end
	for n := 0; n < window && i < len(text); n++ {
		_, w := utf8.DecodeRuneInString(text[i:])
		i += w
	}
	return text[end:i]
}
