package document

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// TextRun is one contiguous unit of renderable text: the content of a single
// text node together with the half-open [Start, End) byte interval it
// occupies in the linear text.
type TextRun struct {
	Node  *html.Node
	Start int
	End   int
	Text  string
}

// Linearization is the flat text model of a subtree at one point in time: the
// ordered run arena plus the concatenated linear text. It is a snapshot; any
// tree mutation invalidates it.
type Linearization struct {
	runs   []TextRun
	text   string
	byNode map[*html.Node]int
}

// skippedElements hold text that never renders, so linearization excludes
// their subtrees entirely.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"template": true,
	"head":     true,
}

// Linearize walks the subtree under root in document order and builds its
// flat text model. Whitespace-only text nodes are skipped, as is all text
// owned by non-rendered elements and by already-applied highlight wrappers.
func Linearize(root *html.Node) *Linearization {
	l := &Linearization{byNode: make(map[*html.Node]int)}
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			if _, ok := WrapperID(n); ok {
				return
			}
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" {
				return
			}
			l.byNode[n] = len(l.runs)
			l.runs = append(l.runs, TextRun{
				Node:  n,
				Start: sb.Len(),
				End:   sb.Len() + len(n.Data),
				Text:  n.Data,
			})
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	if root != nil {
		visit(root)
	}
	l.text = sb.String()
	return l
}

// Text returns the concatenated linear text.
func (l *Linearization) Text() string {
	return l.text
}

// Len returns the linear text length in bytes.
func (l *Linearization) Len() int {
	return len(l.text)
}

// Runs returns the run arena in document order.
func (l *Linearization) Runs() []TextRun {
	return l.runs
}

// RunAt returns the run whose half-open interval contains the byte offset.
// An offset sitting exactly on a run boundary belongs to the following run.
func (l *Linearization) RunAt(offset int) (TextRun, bool) {
	if offset < 0 || offset >= len(l.text) {
		return TextRun{}, false
	}
	i := sort.Search(len(l.runs), func(i int) bool { return l.runs[i].End > offset })
	if i == len(l.runs) {
		return TextRun{}, false
	}
	return l.runs[i], true
}

// Locate returns the run owned by a text node, or false when the node was not
// part of this linearization.
func (l *Linearization) Locate(n *html.Node) (TextRun, bool) {
	i, ok := l.byNode[n]
	if !ok {
		return TextRun{}, false
	}
	return l.runs[i], true
}

// Materialize maps a half-open [start, end) byte span of the linear text to
// live node boundaries. A start landing exactly on a run boundary opens at
// the following run; an end landing on a boundary closes at the preceding
// run's end, so a span never pulls in a node it contains no bytes of.
func (l *Linearization) Materialize(start, end int) (Range, error) {
	if start < 0 || end > len(l.text) || start >= end {
		return Range{}, fmt.Errorf("document: span [%d,%d) outside linear text of %d bytes", start, end, len(l.text))
	}
	sr, ok := l.RunAt(start)
	if !ok {
		return Range{}, fmt.Errorf("document: no run contains offset %d", start)
	}
	er, ok := l.RunAt(end - 1)
	if !ok {
		return Range{}, fmt.Errorf("document: no run contains offset %d", end-1)
	}
	return Range{
		Start: Boundary{Node: sr.Node, Offset: start - sr.Start},
		End:   Boundary{Node: er.Node, Offset: end - er.Start},
	}, nil
}
