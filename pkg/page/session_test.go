package page

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/sensenote/sensenote/pkg/anchor"
	"github.com/sensenote/sensenote/pkg/config"
	"github.com/sensenote/sensenote/pkg/document"
	"github.com/sensenote/sensenote/pkg/store"
)

const pageURL = "https://example.com/article"

func newSession(t *testing.T, src string, opts Options) (*Session, *store.Memory) {
	t.Helper()
	doc, err := document.ParseString(src, pageURL)
	require.NoError(t, err)
	st := store.NewMemory()
	s, err := NewSession(doc, st, opts)
	require.NoError(t, err)
	return s, st
}

// selectText builds a live selection over the first occurrence of text.
func selectText(t *testing.T, doc *document.Document, text string) document.Selection {
	t.Helper()
	lin := document.Linearize(doc.Body())
	p := strings.Index(lin.Text(), text)
	require.GreaterOrEqual(t, p, 0, "fixture does not contain %q", text)
	r, err := lin.Materialize(p, p+len(text))
	require.NoError(t, err)
	return document.Selection{Start: r.Start, End: r.End, Text: text}
}

func TestMarkPersistsAndWraps(t *testing.T) {
	s, st := newSession(t, `<html><body><p>The quick brown fox</p></body></html>`, Options{})

	a, err := s.Mark(context.Background(), selectText(t, s.Document(), "quick brown"), "")
	require.NoError(t, err)
	assert.Equal(t, "quick brown", a.ExactText)
	assert.Equal(t, pageURL, a.DocumentKey)
	assert.Equal(t, config.Default().Capture.DefaultColor, a.Color, "empty color takes the default")

	stored, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, a.ID, stored[0].ID)
	assert.True(t, s.Document().HasWrapper(a.ID))
}

func TestMarkKeepsRecordWhenWrapFails(t *testing.T) {
	s, st := newSession(t, `<html><body><p>Some page text</p></body></html>`, Options{})

	// A selection rooted in a node outside the document degrades capture;
	// its text resolves nowhere, so the wrap step fails.
	foreign := &html.Node{Type: html.TextNode, Data: "zzz"}
	sel := document.Selection{
		Start: document.Boundary{Node: foreign, Offset: 0},
		End:   document.Boundary{Node: foreign, Offset: 3},
		Text:  "zzz",
	}

	a, err := s.Mark(context.Background(), sel, "")
	require.NoError(t, err)
	assert.True(t, a.Degraded())

	stored, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1, "record must survive the failed wrap")
	assert.False(t, s.Document().HasWrapper(a.ID))
}

func TestMarkRejectsDeniedSite(t *testing.T) {
	cfg := config.Default()
	cfg.Sites.Denied = []string{"example.com/**"}
	s, st := newSession(t, `<html><body><p>private text</p></body></html>`, Options{Config: cfg})

	_, err := s.Mark(context.Background(), selectText(t, s.Document(), "private"), "")
	require.ErrorIs(t, err, ErrSiteDisabled)

	stored, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestMarkTextFindsFirstOccurrence(t *testing.T) {
	ctx := context.Background()
	s, st := newSession(t, `<html><body><p>beta one</p><p>beta two</p></body></html>`, Options{})

	a, err := s.MarkText(ctx, "beta", "#90ee90")
	require.NoError(t, err)
	assert.Equal(t, "beta", a.ExactText)
	assert.Equal(t, "#90ee90", a.Color)
	assert.Empty(t, a.ContextBefore, "first occurrence sits at the start of the text")

	stored, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, s.Document().HasWrapper(a.ID))
}

func TestMarkTextRejectsAbsentText(t *testing.T) {
	s, st := newSession(t, `<html><body><p>alpha</p></body></html>`, Options{})

	_, err := s.MarkText(context.Background(), "missing words", "")
	require.ErrorIs(t, err, anchor.ErrNotFound)

	_, err = s.MarkText(context.Background(), "", "")
	require.ErrorIs(t, err, anchor.ErrEmptySelection)

	stored, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRestoreAllAppliesStoredAnchors(t *testing.T) {
	s, st := newSession(t, `<html><body><p>alpha beta gamma</p></body></html>`, Options{})
	seed := []*anchor.Anchor{
		{ID: "a1", DocumentKey: pageURL, ExactText: "beta", ContextBefore: "alpha ", ContextAfter: " gamma"},
		{ID: "a2", DocumentKey: "https://example.com/other", ExactText: "beta"},
	}
	require.NoError(t, st.Save(context.Background(), seed))

	res, err := s.RestoreAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Restored)
	assert.Zero(t, res.Failed)
	assert.True(t, s.Document().HasWrapper("a1"))
	assert.False(t, s.Document().HasWrapper("a2"))
}

func TestRestoreAllPropagatesStoreFailure(t *testing.T) {
	doc, err := document.ParseString(`<html><body><p>text</p></body></html>`, pageURL)
	require.NoError(t, err)
	broken := brokenStore{err: errors.New("disk gone")}
	s, err := NewSession(doc, broken, Options{})
	require.NoError(t, err)

	_, err = s.RestoreAll(context.Background())
	require.ErrorIs(t, err, broken.err)
}

func TestScrollToFragmentFindsLiveWrapper(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, `<html><body><p>The quick brown fox</p></body></html>`, Options{})
	a, err := s.Mark(ctx, selectText(t, s.Document(), "quick"), "")
	require.NoError(t, err)

	vp := &stubViewport{doc: s.Document(), fragment: document.FragmentFor(a.ID)}
	require.NoError(t, s.ScrollToFragment(ctx, vp))
	assert.Equal(t, []string{a.ID}, vp.scrolled)
	assert.Empty(t, vp.fragment, "fragment must be cleared after scrolling")
}

func TestUpdateAnnotationsEditsLatestRevision(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, `<html><body><p>The quick brown fox</p></body></html>`, Options{})
	a, err := s.Mark(ctx, selectText(t, s.Document(), "quick"), "")
	require.NoError(t, err)

	// Another writer edits the record between our read and our patch.
	_, err = store.Update(ctx, s.store, a.ID, func(rec *anchor.Anchor) error {
		rec.Favorite = true
		return nil
	})
	require.NoError(t, err)

	updated, err := s.UpdateAnnotations(ctx, a.ID, func(rec *anchor.Anchor) error {
		rec.Note = "check this claim"
		rec.Color = "#90ee90"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "check this claim", updated.Note)
	assert.True(t, updated.Favorite, "patch must land on the latest revision")

	var out strings.Builder
	require.NoError(t, s.Render(&out))
	assert.Contains(t, out.String(), "background-color: #90ee90;", "color edit must reach the live wrapper")
}

func TestUpdateAnnotationsUnknownID(t *testing.T) {
	s, _ := newSession(t, `<html><body><p>text</p></body></html>`, Options{})

	_, err := s.UpdateAnnotations(context.Background(), "missing", func(*anchor.Anchor) error { return nil })
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveRestoresOriginalText(t *testing.T) {
	ctx := context.Background()
	s, st := newSession(t, `<html><body><p>The quick brown fox</p></body></html>`, Options{})
	before := document.Linearize(s.Document().Body()).Text()

	a, err := s.Mark(ctx, selectText(t, s.Document(), "quick brown"), "")
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, a.ID))

	stored, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.False(t, s.Document().HasWrapper(a.ID))
	assert.Equal(t, before, document.Linearize(s.Document().Body()).Text())
}

func TestActivateReturnsFreshRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, `<html><body><p>The quick brown fox</p></body></html>`, Options{})
	a, err := s.Mark(ctx, selectText(t, s.Document(), "quick"), "")
	require.NoError(t, err)

	_, err = store.Update(ctx, s.store, a.ID, func(rec *anchor.Anchor) error {
		rec.Note = "edited elsewhere"
		return nil
	})
	require.NoError(t, err)

	got, err := s.Activate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited elsewhere", got.Note)
}

func TestActivateDropsStaleWrapper(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, `<html><body><p>The quick brown fox</p></body></html>`, Options{})
	a, err := s.Mark(ctx, selectText(t, s.Document(), "quick"), "")
	require.NoError(t, err)
	require.NoError(t, store.Remove(ctx, s.store, a.ID))

	_, err = s.Activate(ctx, a.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, s.Document().HasWrapper(a.ID), "wrapper without a record must be dropped")
}

func TestAnchorsScopedToDocument(t *testing.T) {
	ctx := context.Background()
	s, st := newSession(t, `<html><body><p>alpha beta</p></body></html>`, Options{})
	seed := []*anchor.Anchor{
		{ID: "a1", DocumentKey: pageURL, ExactText: "alpha"},
		{ID: "b1", DocumentKey: "https://example.com/other", ExactText: "alpha"},
		{ID: "a2", DocumentKey: pageURL, ExactText: "beta"},
	}
	require.NoError(t, st.Save(ctx, seed))

	got, err := s.Anchors(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a2", got[1].ID)
}

// stubViewport answers wrapper queries from a live document.
type stubViewport struct {
	doc      *document.Document
	fragment string
	scrolled []string
}

func (v *stubViewport) HasHighlight(id string) bool { return v.doc.HasWrapper(id) }

func (v *stubViewport) ScrollTo(id string) error {
	v.scrolled = append(v.scrolled, id)
	return nil
}

func (v *stubViewport) Fragment() string { return v.fragment }

func (v *stubViewport) ClearFragment() { v.fragment = "" }

type brokenStore struct{ err error }

func (b brokenStore) Load(context.Context) ([]*anchor.Anchor, error) { return nil, b.err }

func (b brokenStore) Save(context.Context, []*anchor.Anchor) error { return b.err }
