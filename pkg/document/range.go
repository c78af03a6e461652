package document

import (
	"strings"

	"golang.org/x/net/html"
)

// Boundary addresses a position inside a text node as a byte offset into the
// node's data. Offset may equal the data length, closing a range at the
// node's end.
type Boundary struct {
	Node   *html.Node
	Offset int
}

// Valid reports whether the boundary points into a text node at an offset
// within its data.
func (b Boundary) Valid() bool {
	return b.Node != nil && b.Node.Type == html.TextNode &&
		b.Offset >= 0 && b.Offset <= len(b.Node.Data)
}

// Range is a live span between two boundaries, start inclusive, end
// exclusive. Both boundaries must sit inside text nodes of the same tree.
type Range struct {
	Start Boundary
	End   Boundary
}

// Selection is what an embedding surface hands to capture: the boundary
// points of a user selection plus the text the user saw selected.
type Selection struct {
	Start Boundary
	End   Boundary
	Text  string
}

// Range returns the selection's span.
func (s Selection) Range() Range {
	return Range{Start: s.Start, End: s.End}
}

// Text reassembles the range's content by walking the live tree from start to
// end, independent of any linearization. The walk is raw: it includes text a
// linearization would exclude, which is what lets resolution detect spans
// that would swallow foreign content.
func (r Range) Text() string {
	if r.Start.Node == nil || r.End.Node == nil {
		return ""
	}
	if r.Start.Node == r.End.Node {
		return substr(r.Start.Node.Data, r.Start.Offset, r.End.Offset)
	}
	var sb strings.Builder
	sb.WriteString(substr(r.Start.Node.Data, r.Start.Offset, len(r.Start.Node.Data)))
	for n := nextInOrder(r.Start.Node); n != nil; n = nextInOrder(n) {
		if n == r.End.Node {
			sb.WriteString(substr(n.Data, 0, r.End.Offset))
			return sb.String()
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	}
	// End was never reached: the boundaries are reversed or belong to
	// different trees. The partial text will fail any verification.
	return sb.String()
}

// nextInOrder is the document-order successor: first child, else next
// sibling, else the nearest ancestor's next sibling.
func nextInOrder(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

func substr(s string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	if from >= to {
		return ""
	}
	return s[from:to]
}
