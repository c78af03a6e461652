package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sensenote/sensenote/pkg/anchor"
)

func exportFixture() []*anchor.Anchor {
	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return []*anchor.Anchor{
		{
			ID:          "a1",
			DocumentKey: "https://example.com/zebra",
			ExactText:   "stripes are unique",
			CreatedAt:   created,
		},
		{
			ID:          "a2",
			DocumentKey: "https://example.com/article",
			ExactText:   "the quick brown fox",
			Note:        "verify this",
			Category:    anchor.CategoryQuestion,
			Favorite:    true,
			CreatedAt:   created,
		},
		{
			ID:          "a3",
			DocumentKey: "https://example.com/article",
			ExactText:   "lazy dog",
			CreatedAt:   created,
		},
	}
}

func TestMarkdownGroupsByDocument(t *testing.T) {
	var out strings.Builder
	if err := Markdown(&out, exportFixture()); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	got := out.String()

	article := strings.Index(got, "## https://example.com/article")
	zebra := strings.Index(got, "## https://example.com/zebra")
	if article < 0 || zebra < 0 || article > zebra {
		t.Fatalf("documents missing or out of order:\n%s", got)
	}

	for _, want := range []string{
		"> the quick brown fox\n",
		"2026-03-14 · question · favorite\n",
		"\nverify this\n",
		"> lazy dog\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}

	// Stored order within a document survives.
	if strings.Index(got, "quick brown") > strings.Index(got, "lazy dog") {
		t.Errorf("anchors reordered within document:\n%s", got)
	}
}

func TestJSONRoundTrips(t *testing.T) {
	var out strings.Builder
	if err := JSON(&out, exportFixture()); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded []*anchor.Anchor
	if err := json.Unmarshal([]byte(out.String()), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 3 || decoded[1].Note != "verify this" || !decoded[1].Favorite {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestJSONEmptyIsAnArray(t *testing.T) {
	var out strings.Builder
	if err := JSON(&out, nil); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Fatalf("empty export = %q, want []", out.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "markdown", want: FormatMarkdown},
		{in: "md", want: FormatMarkdown},
		{in: "json", want: FormatJSON},
		{in: "yaml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
