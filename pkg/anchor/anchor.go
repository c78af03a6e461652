// Package anchor captures selections as re-findable anchors and resolves
// them against a document's linear text.
//
// An anchor stores the exact selected text plus short context windows on
// either side. Resolution searches the context-qualified pattern first, falls
// back to the bare text, and verifies the materialized range before anything
// is allowed to act on it. Capture degrades rather than fails: a selection
// whose position cannot be read still yields an anchor, just one without
// context.
package anchor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultContextLength is the widest context window captured on either side
// of the exact text, measured in runes. Windows shrink at document edges.
const DefaultContextLength = 50

var (
	// ErrEmptySelection rejects captures carrying no selected text.
	ErrEmptySelection = errors.New("anchor: empty selection")

	// ErrNotFound means neither the context-qualified pattern nor the bare
	// exact text occurs in the document. Recoverable.
	ErrNotFound = errors.New("anchor: text not found in document")

	// ErrTextMismatch means the resolved span's live text no longer matches
	// the anchor's exact text. Recoverable, treated like not-found.
	ErrTextMismatch = errors.New("anchor: materialized text does not match")
)

// Category classifies the annotation an anchor carries.
type Category string

const (
	CategoryNone      Category = ""
	CategoryImportant Category = "important"
	CategoryQuestion  Category = "question"
	CategoryTodo      Category = "todo"
	CategoryReference Category = "reference"
)

// Categories lists the assignable categories in display order.
func Categories() []Category {
	return []Category{CategoryImportant, CategoryQuestion, CategoryTodo, CategoryReference}
}

// ParseCategory converts user input to a category. Empty input clears the
// category; anything else must name an assignable one.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryNone, nil
	}
	c := Category(strings.ToLower(s))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return CategoryNone, fmt.Errorf("anchor: unknown category %q", s)
}

// Anchor is the durable record of one highlight: the exact selected text plus
// enough surrounding context to find it again in a later rendering of the
// same document.
type Anchor struct {
	ID            string `json:"id"`
	DocumentKey   string `json:"document_key"`
	ExactText     string `json:"exact_text"`
	ContextBefore string `json:"context_before,omitempty"`
	ContextAfter  string `json:"context_after,omitempty"`

	// CapturedStart and CapturedEnd record where the span sat in the linear
	// text at capture time. Diagnostics only; resolution never trusts them.
	CapturedStart int `json:"captured_start"`
	CapturedEnd   int `json:"captured_end"`

	Color    string   `json:"color,omitempty"`
	Note     string   `json:"note,omitempty"`
	Category Category `json:"category,omitempty"`
	Favorite bool     `json:"favorite,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Degraded reports whether capture could not read the selection's position,
// leaving the anchor with bare text and no context windows.
func (a *Anchor) Degraded() bool {
	return a.CapturedStart < 0
}

// Touch bumps the modification timestamp.
func (a *Anchor) Touch() {
	a.UpdatedAt = time.Now().UTC()
}

// Validate checks the invariants every stored anchor must hold.
func (a *Anchor) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("anchor: missing id")
	}
	if a.ExactText == "" {
		return fmt.Errorf("anchor %s: empty exact text", a.ID)
	}
	if a.DocumentKey == "" {
		return fmt.Errorf("anchor %s: missing document key", a.ID)
	}
	if strings.Contains(a.DocumentKey, "#") {
		return fmt.Errorf("anchor %s: document key %q carries a fragment", a.ID, a.DocumentKey)
	}
	return nil
}
