// Package page ties one loaded document to the anchor store and drives the
// highlight lifecycle on it: marking new selections, restoring stored
// anchors, editing annotations, and removing highlights.
//
// A session never caches the anchor set. Every operation that shows or
// mutates records re-reads the store first, so two sessions over the same
// store converge on last-write-wins instead of clobbering each other with
// stale views.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sensenote/sensenote/pkg/anchor"
	"github.com/sensenote/sensenote/pkg/config"
	"github.com/sensenote/sensenote/pkg/document"
	"github.com/sensenote/sensenote/pkg/highlight"
	"github.com/sensenote/sensenote/pkg/logging"
	"github.com/sensenote/sensenote/pkg/restore"
	"github.com/sensenote/sensenote/pkg/store"
)

// ErrSiteDisabled means the configured site rules exclude this document
// from capture.
var ErrSiteDisabled = errors.New("page: capture disabled for this site")

// Session drives the highlight lifecycle for one loaded document.
type Session struct {
	doc      *document.Document
	store    store.Store
	cfg      *config.Config
	rules    *config.SiteRules
	restorer *restore.Restorer
	log      *logging.Logger
}

// Options configures a session. Nil fields fall back to defaults.
type Options struct {
	// Config supplies capture and site settings. Defaults to
	// config.Default().
	Config *config.Config

	// Logger receives session diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger
}

// NewSession creates a session over doc backed by st.
func NewSession(doc *document.Document, st store.Store, opts Options) (*Session, error) {
	if doc == nil {
		return nil, errors.New("page: document is required")
	}
	if st == nil {
		return nil, errors.New("page: store is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	rules, err := cfg.SiteRules()
	if err != nil {
		return nil, err
	}
	return &Session{
		doc:      doc,
		store:    st,
		cfg:      cfg,
		rules:    rules,
		restorer: restore.New(log),
		log:      log,
	}, nil
}

// Document returns the session's document.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Key returns the session's document key.
func (s *Session) Key() string {
	return s.doc.Key()
}

// Mark captures the selection as a new anchor, persists it, then wraps the
// live range. Persistence comes first so a wrapper failure cannot lose the
// record; wrap errors are logged and absorbed. An empty color takes the
// configured default.
func (s *Session) Mark(ctx context.Context, sel document.Selection, color string) (*anchor.Anchor, error) {
	if !s.rules.Allows(s.doc.Key()) {
		return nil, fmt.Errorf("%w: %s", ErrSiteDisabled, s.doc.Key())
	}
	if color == "" {
		color = s.cfg.Capture.DefaultColor
	}

	lin := document.Linearize(s.doc.Body())
	a, err := anchor.Capture(sel, lin, s.doc.Key(), anchor.CaptureOptions{
		ContextLength: s.cfg.Capture.ContextLength,
		Color:         color,
	})
	if err != nil {
		return nil, err
	}
	if a.Degraded() {
		s.log.Debugf("capture %s degraded, selection outside the linear model", a.ID)
	}

	if err := store.Add(ctx, s.store, a); err != nil {
		return nil, fmt.Errorf("persist anchor: %w", err)
	}

	if err := s.wrap(a, lin); err != nil {
		s.log.Warnf("wrap new highlight %s: %v", a.ID, err)
	}
	return a, nil
}

// MarkText marks the first occurrence of text in the page's readable text.
// It stands in for a pointer selection in surfaces that only know the text,
// such as the command line.
func (s *Session) MarkText(ctx context.Context, text, color string) (*anchor.Anchor, error) {
	if text == "" {
		return nil, anchor.ErrEmptySelection
	}
	lin := document.Linearize(s.doc.Body())
	start := strings.Index(lin.Text(), text)
	if start < 0 {
		return nil, fmt.Errorf("%w: %q", anchor.ErrNotFound, text)
	}
	r, err := lin.Materialize(start, start+len(text))
	if err != nil {
		return nil, err
	}
	return s.Mark(ctx, document.Selection{Start: r.Start, End: r.End, Text: text}, color)
}

func (s *Session) wrap(a *anchor.Anchor, lin *document.Linearization) error {
	r, err := anchor.Materialize(a, lin)
	if err != nil {
		return err
	}
	return highlight.Apply(s.doc, r, a.ID, a.Color)
}

// RestoreAll re-reads the store and applies every anchor belonging to this
// document. Per-anchor failures are counted in the result, never returned;
// only a store failure is an error.
func (s *Session) RestoreAll(ctx context.Context) (restore.Result, error) {
	anchors, err := s.store.Load(ctx)
	if err != nil {
		return restore.Result{}, fmt.Errorf("load anchors: %w", err)
	}
	return s.restorer.Restore(s.doc, anchors), nil
}

// ScrollToFragment brings the highlight the viewport's navigation fragment
// points at into view, polling with the configured retry bounds.
func (s *Session) ScrollToFragment(ctx context.Context, vp restore.Viewport) error {
	return restore.ScrollToFragment(ctx, vp, restore.ScrollOptions{
		Attempts: s.cfg.Restore.ScrollAttempts,
		Delay:    s.cfg.Restore.ScrollDelay.Std(),
	})
}

// Anchors re-reads the store and returns this document's anchors in stored
// order. Callers get a fresh snapshot each call, not a cached set.
func (s *Session) Anchors(ctx context.Context) ([]*anchor.Anchor, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return store.ForDocument(all, s.doc.Key()), nil
}

// UpdateAnnotations edits the stored record for id and reflects a color
// change on the live wrapper. The patch runs against the latest stored
// revision.
func (s *Session) UpdateAnnotations(ctx context.Context, id string, patch func(*anchor.Anchor) error) (*anchor.Anchor, error) {
	a, err := store.Update(ctx, s.store, id, patch)
	if err != nil {
		return nil, err
	}
	// The record is authoritative; a missing wrapper just means this page
	// never restored it.
	if err := highlight.Recolor(s.doc, a.ID, a.Color); err != nil && !errors.Is(err, highlight.ErrNoWrapper) {
		s.log.Warnf("recolor %s: %v", a.ID, err)
	}
	return a, nil
}

// Remove deletes the stored record and unwraps the live highlight. The
// record goes first; a failed unwrap leaves a stale wrapper until the next
// load rather than a ghost record.
func (s *Session) Remove(ctx context.Context, id string) error {
	if err := store.Remove(ctx, s.store, id); err != nil {
		return err
	}
	if err := highlight.Remove(s.doc, id); err != nil && !errors.Is(err, highlight.ErrNoWrapper) {
		return err
	}
	return nil
}

// Activate fetches the record behind a clicked highlight for the detail
// popup. The store is re-read so the popup shows the latest annotations;
// when the record was deleted elsewhere the stale wrapper is dropped and
// store.ErrNotFound surfaces.
func (s *Session) Activate(ctx context.Context, id string) (*anchor.Anchor, error) {
	a, err := store.Get(ctx, s.store, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if rerr := highlight.Remove(s.doc, id); rerr == nil {
				s.log.Infof("dropped stale wrapper %s", id)
			}
		}
		return nil, err
	}
	return a, nil
}

// Render writes the annotated document tree to w.
func (s *Session) Render(w io.Writer) error {
	return s.doc.Render(w)
}
