// Package export renders stored anchors for use outside sensenote.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/sensenote/sensenote/pkg/anchor"
)

// Format selects an export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown" // FormatMarkdown writes a readable notes file grouped by document.
	FormatJSON     Format = "json"     // FormatJSON writes the raw records, loadable as a store file.
)

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMarkdown, FormatJSON:
		return Format(s), nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("export: unknown format %q (markdown or json)", s)
	}
}

// Write renders anchors to w in the given format.
func Write(w io.Writer, format Format, anchors []*anchor.Anchor) error {
	switch format {
	case FormatMarkdown:
		return Markdown(w, anchors)
	case FormatJSON:
		return JSON(w, anchors)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

// JSON writes anchors as an indented JSON array, the same shape the file
// store uses, so an export can be re-imported by dropping it in place.
func JSON(w io.Writer, anchors []*anchor.Anchor) error {
	if anchors == nil {
		anchors = []*anchor.Anchor{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(anchors)
}

// Markdown writes anchors grouped by document, stored order within each
// group, documents ordered by key.
func Markdown(w io.Writer, anchors []*anchor.Anchor) error {
	byDoc := make(map[string][]*anchor.Anchor)
	var keys []string
	for _, a := range anchors {
		if _, seen := byDoc[a.DocumentKey]; !seen {
			keys = append(keys, a.DocumentKey)
		}
		byDoc[a.DocumentKey] = append(byDoc[a.DocumentKey], a)
	}
	sort.Strings(keys)

	if _, err := fmt.Fprintf(w, "# Highlights\n"); err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "\n## %s\n", key); err != nil {
			return err
		}
		for _, a := range byDoc[key] {
			if err := writeAnchor(w, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAnchor(w io.Writer, a *anchor.Anchor) error {
	if _, err := fmt.Fprintf(w, "\n> %s\n", a.ExactText); err != nil {
		return err
	}

	meta := a.CreatedAt.Format("2006-01-02")
	if a.Category != anchor.CategoryNone {
		meta += " · " + string(a.Category)
	}
	if a.Favorite {
		meta += " · favorite"
	}
	if _, err := fmt.Fprintf(w, "%s\n", meta); err != nil {
		return err
	}

	if a.Note != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", a.Note); err != nil {
			return err
		}
	}
	return nil
}
