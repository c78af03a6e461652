package anchor

import (
	"errors"
	"strings"
	"testing"
)

func TestResolvePrefersContextQualifiedMatch(t *testing.T) {
	lin := linearized(t, `<html><body><p>alpha beta gamma beta delta</p></body></html>`)
	a := &Anchor{ID: "a1", DocumentKey: pageKey, ExactText: "beta", ContextBefore: "gamma ", ContextAfter: " delta"}

	span, err := Resolve(a, lin)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	text := lin.Text()
	if got := text[span.Start:span.End]; got != "beta" {
		t.Errorf("span covers %q, want beta", got)
	}
	if first := strings.Index(text, "beta"); span.Start == first {
		t.Error("context-qualified search matched the first occurrence, want the second")
	}
	if want := strings.Index(text, "gamma beta") + len("gamma "); span.Start != want {
		t.Errorf("span starts at %d, want %d", span.Start, want)
	}
}

func TestResolveFallsBackToBareText(t *testing.T) {
	lin := linearized(t, `<html><body><p>alpha beta gamma</p></body></html>`)
	a := &Anchor{ID: "a1", ExactText: "beta", ContextBefore: "no longer ", ContextAfter: " present"}

	span, err := Resolve(a, lin)
	if err != nil {
		t.Fatalf("fallback resolve: %v", err)
	}
	if got := lin.Text()[span.Start:span.End]; got != "beta" {
		t.Errorf("span covers %q, want beta", got)
	}
}

func TestResolveTakesLeftmostMatch(t *testing.T) {
	lin := linearized(t, `<html><body><p>echo echo echo</p></body></html>`)
	a := &Anchor{ID: "a1", ExactText: "echo"}

	span, err := Resolve(a, lin)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if span.Start != 0 {
		t.Errorf("span starts at %d, want the leftmost occurrence at 0", span.Start)
	}
}

func TestResolveNotFound(t *testing.T) {
	lin := linearized(t, `<html><body><p>some text</p></body></html>`)
	a := &Anchor{ID: "a1", ExactText: "missing entirely"}

	if _, err := Resolve(a, lin); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveDoesNotMutateAnchor(t *testing.T) {
	lin := linearized(t, `<html><body><p>some text here</p></body></html>`)
	a := &Anchor{ID: "a1", ExactText: "text", ContextBefore: "some "}
	before := *a

	if _, err := Resolve(a, lin); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if *a != before {
		t.Error("Resolve mutated the anchor")
	}
}

func TestMaterializeResolvesCleanSpan(t *testing.T) {
	lin := linearized(t, `<html><body><p>alpha <em>beta</em> gamma</p></body></html>`)
	a := &Anchor{ID: "a1", ExactText: "pha bet"}

	r, err := Materialize(a, lin)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if got := r.Text(); got != "pha bet" {
		t.Errorf("materialized range covers %q, want %q", got, "pha bet")
	}
}

func TestMaterializeVerifiesLiveText(t *testing.T) {
	// "oWo" exists in the linear text, but its live range walks through the
	// whitespace node sitting between the paragraphs.
	lin := linearized(t, "<html><body><p>Hello</p>\n<p>World</p></body></html>")
	a := &Anchor{ID: "a1", ExactText: "oWo"}

	if _, err := Materialize(a, lin); !errors.Is(err, ErrTextMismatch) {
		t.Errorf("err = %v, want ErrTextMismatch", err)
	}
}

func TestMaterializeNotFoundPassesThrough(t *testing.T) {
	lin := linearized(t, `<html><body><p>present</p></body></html>`)
	a := &Anchor{ID: "a1", ExactText: "absent"}

	if _, err := Materialize(a, lin); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
