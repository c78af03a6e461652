// Package document provides the flat text model that anchoring is built on.
//
// A parsed HTML page is a tree, but selections, anchors, and searches all
// operate on linear text. This package bridges the two views: it linearizes
// the renderable text of a tree into an ordered arena of runs, and maps byte
// spans of that linear text back to live node boundaries.
//
// # Linearization
//
// Linearize walks a subtree in document order and concatenates the content of
// every text node that a reader would actually see. Three kinds of text are
// excluded:
//
//   - text owned by non-rendered elements (script, style, head, and friends)
//   - whitespace-only text nodes, which are formatting artifacts of the markup
//   - text inside already-applied highlight wrappers
//
// The result is a snapshot. Any mutation of the tree, including applying a
// highlight, invalidates it; callers re-linearize instead of caching across
// changes.
//
// # Runs
//
// Each included text node contributes one TextRun carrying the node, its text,
// and the half-open [Start, End) interval it occupies in the linear text.
// Runs are contiguous: End of one run equals Start of the next. RunAt answers
// point queries by binary search and Materialize converts a byte span into a
// live Range.
//
// # Identity
//
// Documents are keyed by their address with any navigation fragment removed,
// so https://example.com/a#section and https://example.com/a share one set of
// highlights. The sensenote- fragment prefix is reserved for addressing a
// highlight by id.
package document
