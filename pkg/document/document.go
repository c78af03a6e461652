package document

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Marker attributes carried by every highlight wrapper element. The attribute
// holds the highlight id; the class is what stylesheets target.
const (
	MarkerAttr  = "data-sensenote-id"
	MarkerClass = "sensenote-highlight"
)

// Document is a parsed HTML page together with the normalized key that scopes
// its highlights.
type Document struct {
	root *html.Node
	key  string
}

// Parse reads an HTML document and derives its key from rawURL. Parsing is
// tolerant the way browsers are: malformed markup yields a best-effort tree,
// not an error.
func Parse(r io.Reader, rawURL string) (*Document, error) {
	key, err := Key(rawURL)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("document: parse %s: %w", key, err)
	}
	return &Document{root: root, key: key}, nil
}

// ParseString is Parse over an in-memory page.
func ParseString(src, rawURL string) (*Document, error) {
	return Parse(strings.NewReader(src), rawURL)
}

// Root returns the document root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Key returns the normalized document key.
func (d *Document) Key() string {
	return d.key
}

// Body returns the element linearization starts from: the body element when
// the tree has one, the root otherwise.
func (d *Document) Body() *html.Node {
	if b := findElement(d.root, "body"); b != nil {
		return b
	}
	return d.root
}

// Render serializes the current tree, including any applied wrappers.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("document: render %s: %w", d.key, err)
	}
	return nil
}

// HTML returns the serialized tree as a string.
func (d *Document) HTML() (string, error) {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FindWrapper returns the live wrapper element carrying the given highlight
// id, or nil when none is applied.
func (d *Document) FindWrapper(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if wid, ok := WrapperID(n); ok && wid == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// HasWrapper reports whether a wrapper for the given highlight id is applied.
func (d *Document) HasWrapper(id string) bool {
	return d.FindWrapper(id) != nil
}

// WrapperIDs returns the ids of all applied wrappers in document order.
func (d *Document) WrapperIDs() []string {
	var ids []string
	walk(d.root, func(n *html.Node) bool {
		if id, ok := WrapperID(n); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// WrapperID returns the highlight id carried by an element's marker
// attribute.
func WrapperID(n *html.Node) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == MarkerAttr && a.Val != "" {
			return a.Val, true
		}
	}
	return "", false
}

// NormalizeText coalesces adjacent text-node siblings and drops empty text
// nodes throughout the subtree, the way DOM normalize does. Wrapper apply and
// remove both finish with this so later linearizations see one run per
// contiguous stretch of text.
func NormalizeText(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode {
			if c.Data == "" {
				n.RemoveChild(c)
			} else {
				for next != nil && next.Type == html.TextNode {
					c.Data += next.Data
					after := next.NextSibling
					n.RemoveChild(next)
					next = after
				}
				next = c.NextSibling
			}
		} else {
			NormalizeText(c)
		}
		c = next
	}
}

// walk visits n and its descendants in document order until visit returns
// false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func findElement(n *html.Node, name string) *html.Node {
	var found *html.Node
	walk(n, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == name {
			found = n
			return false
		}
		return true
	})
	return found
}
