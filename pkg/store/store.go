// Package store persists the anchor collection.
//
// Semantics are deliberately simple: the whole collection loads and saves as
// one unit with last-write-wins. Mutating helpers re-read the store first so
// a writer holding a stale view loses the race instead of corrupting the
// collection.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sensenote/sensenote/pkg/anchor"
)

// ErrNotFound means no stored anchor carries the requested id.
var ErrNotFound = errors.New("store: anchor not found")

// Store is the persistence boundary for anchors.
type Store interface {
	Load(ctx context.Context) ([]*anchor.Anchor, error)
	Save(ctx context.Context, anchors []*anchor.Anchor) error
}

// Add validates a and appends it against freshly loaded state.
func Add(ctx context.Context, s Store, a *anchor.Anchor) error {
	if err := a.Validate(); err != nil {
		return err
	}
	all, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, append(all, a))
}

// Update re-reads the collection, applies patch to the stored anchor with
// the given id, bumps its modification time, and saves. The patch runs on
// the stored copy rather than the caller's view, so edits made against a
// stale read cannot clobber fields they did not touch. The updated anchor
// is returned.
func Update(ctx context.Context, s Store, id string, patch func(*anchor.Anchor) error) (*anchor.Anchor, error) {
	all, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.ID != id {
			continue
		}
		if err := patch(a); err != nil {
			return nil, err
		}
		a.Touch()
		if err := s.Save(ctx, all); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("update %q: %w", id, ErrNotFound)
}

// Remove deletes the anchor with id against freshly loaded state.
func Remove(ctx context.Context, s Store, id string) error {
	all, err := s.Load(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, a := range all {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	return s.Save(ctx, kept)
}

// Get returns the stored anchor with id.
func Get(ctx context.Context, s Store, id string) (*anchor.Anchor, error) {
	all, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("get %q: %w", id, ErrNotFound)
}

// ForDocument filters anchors to one document key, preserving stored order.
func ForDocument(anchors []*anchor.Anchor, key string) []*anchor.Anchor {
	var out []*anchor.Anchor
	for _, a := range anchors {
		if a.DocumentKey == key {
			out = append(out, a)
		}
	}
	return out
}
