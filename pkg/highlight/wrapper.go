// Package highlight applies and removes the marker wrappers that make
// resolved anchors visible. Wrapping is strictly structural: every byte of
// rendered text present before an operation is present after it, and
// removing a wrapper splices its content back where it came from.
package highlight

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sensenote/sensenote/pkg/document"
)

var (
	// ErrNoWrapper means no live wrapper carries the requested id.
	ErrNoWrapper = errors.New("highlight: no wrapper with id")

	// ErrInvalidRange rejects ranges that are empty, reversed, or not
	// anchored inside text nodes.
	ErrInvalidRange = errors.New("highlight: invalid range")
)

// Apply wraps the content covered by r in a marker span carrying id.
//
// When both boundaries end up under one parent after edge splitting, the
// covered siblings move into the wrapper in place. Otherwise the partially
// covered ancestors on each side are split down to the boundaries' common
// ancestor first, the way a DOM range extraction splits them, and the wrap
// happens at that level. Elements fully covered by the range are moved
// whole and survive a later Remove unchanged.
//
// Applying an id that already has a live wrapper is a no-op.
func Apply(doc *document.Document, r document.Range, id, color string) error {
	if id == "" {
		return errors.New("highlight: empty id")
	}
	if doc.HasWrapper(id) {
		return nil
	}
	if !r.Start.Valid() || !r.End.Valid() {
		return fmt.Errorf("%w: boundaries must sit inside text nodes", ErrInvalidRange)
	}
	if r.End.Offset == 0 {
		return fmt.Errorf("%w: end must cover at least one byte of its node", ErrInvalidRange)
	}
	if r.Start.Node == r.End.Node && r.Start.Offset >= r.End.Offset {
		return fmt.Errorf("%w: start does not precede end", ErrInvalidRange)
	}

	// Split the end first: when both boundaries share a node, splitting the
	// start first would leave the end offset pointing into the wrong node.
	endParent := r.End.Node.Parent
	until := splitText(r.End.Node, r.End.Offset)
	first := splitText(r.Start.Node, r.Start.Offset)
	if first == nil || first == until {
		return fmt.Errorf("%w: nothing to wrap", ErrInvalidRange)
	}

	var through *html.Node
	if until != nil {
		through = until.PrevSibling
	} else {
		through = endParent.LastChild
	}
	if through == nil {
		return fmt.Errorf("%w: nothing to wrap", ErrInvalidRange)
	}

	wrapper := newWrapper(id, color)

	if first.Parent == endParent {
		wrapSiblings(endParent, first, through, wrapper)
		document.NormalizeText(endParent)
		return nil
	}

	common := commonAncestor(first.Parent, endParent)
	if common == nil {
		return fmt.Errorf("%w: boundaries belong to different trees", ErrInvalidRange)
	}

	// Climb the start side. A parent entered mid-way is split: the covered
	// tail moves into a fresh shell inserted after it.
	top := first
	for top.Parent != common {
		parent := top.Parent
		if top.PrevSibling != nil {
			shell := cloneShell(parent)
			moveTail(parent, top, shell)
			parent.Parent.InsertBefore(shell, parent.NextSibling)
			top = shell
		} else {
			top = parent
		}
	}

	// Climb the end side symmetrically: a parent left mid-way has its
	// covered head moved into a shell inserted before it.
	bottom := through
	for bottom.Parent != common {
		parent := bottom.Parent
		if bottom.NextSibling != nil {
			shell := cloneShell(parent)
			moveHead(parent, bottom, shell)
			parent.Parent.InsertBefore(shell, parent)
			bottom = shell
		} else {
			bottom = parent
		}
	}

	wrapSiblings(common, top, bottom, wrapper)
	document.NormalizeText(common)
	return nil
}

// Remove deletes the wrapper carrying id and splices its children back into
// place. Applying a highlight and removing it leaves the rendered text
// byte-identical to what it was before the apply.
func Remove(doc *document.Document, id string) error {
	w := doc.FindWrapper(id)
	if w == nil {
		return fmt.Errorf("remove %q: %w", id, ErrNoWrapper)
	}
	parent := w.Parent
	for w.FirstChild != nil {
		c := w.FirstChild
		w.RemoveChild(c)
		parent.InsertBefore(c, w)
	}
	parent.RemoveChild(w)
	document.NormalizeText(parent)
	return nil
}

// Recolor rewrites the inline style of an applied wrapper.
func Recolor(doc *document.Document, id, color string) error {
	w := doc.FindWrapper(id)
	if w == nil {
		return fmt.Errorf("recolor %q: %w", id, ErrNoWrapper)
	}
	setColor(w, color)
	return nil
}

func newWrapper(id, color string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: document.MarkerAttr, Val: id},
			{Key: "class", Val: document.MarkerClass},
		},
	}
	setColor(n, color)
	return n
}

func setColor(n *html.Node, color string) {
	style := ""
	if color != "" {
		style = "background-color: " + color + ";"
	}
	for i := range n.Attr {
		if n.Attr[i].Key == "style" {
			if style == "" {
				n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			} else {
				n.Attr[i].Val = style
			}
			return
		}
	}
	if style != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
	}
}

// splitText splits a text node at a byte offset and returns the node that
// begins at it: the node itself at offset zero, its successor at or past the
// end, and a freshly inserted sibling holding the tail otherwise.
func splitText(n *html.Node, offset int) *html.Node {
	if offset <= 0 {
		return n
	}
	if offset >= len(n.Data) {
		return n.NextSibling
	}
	tail := &html.Node{Type: html.TextNode, Data: n.Data[offset:]}
	n.Data = n.Data[:offset]
	n.Parent.InsertBefore(tail, n.NextSibling)
	return tail
}

// wrapSiblings moves the children of parent from first through last into
// wrapper and plants wrapper where first stood.
func wrapSiblings(parent, first, last, wrapper *html.Node) {
	parent.InsertBefore(wrapper, first)
	for n := first; n != nil; {
		next := n.NextSibling
		parent.RemoveChild(n)
		wrapper.AppendChild(n)
		if n == last {
			return
		}
		n = next
	}
}

// moveTail moves from and all of its following siblings into dst.
func moveTail(parent, from, dst *html.Node) {
	for n := from; n != nil; {
		next := n.NextSibling
		parent.RemoveChild(n)
		dst.AppendChild(n)
		n = next
	}
}

// moveHead moves parent's children up to and including through into dst.
func moveHead(parent, through, dst *html.Node) {
	for parent.FirstChild != nil {
		n := parent.FirstChild
		parent.RemoveChild(n)
		dst.AppendChild(n)
		if n == through {
			return
		}
	}
}

// cloneShell copies an element without its children.
func cloneShell(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	return c
}

// commonAncestor returns the nearest node that contains both a and b. A node
// counts as its own ancestor.
func commonAncestor(a, b *html.Node) *html.Node {
	seen := make(map[*html.Node]bool)
	for n := a; n != nil; n = n.Parent {
		seen[n] = true
	}
	for n := b; n != nil; n = n.Parent {
		if seen[n] {
			return n
		}
	}
	return nil
}
