package anchor

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := Anchor{
		ID:          "a1",
		DocumentKey: "https://example.com/article",
		ExactText:   "some text",
	}

	tests := []struct {
		name    string
		mutate  func(*Anchor)
		wantErr bool
	}{
		{name: "complete record", mutate: func(*Anchor) {}},
		{name: "missing id", mutate: func(a *Anchor) { a.ID = "" }, wantErr: true},
		{name: "empty exact text", mutate: func(a *Anchor) { a.ExactText = "" }, wantErr: true},
		{name: "missing document key", mutate: func(a *Anchor) { a.DocumentKey = "" }, wantErr: true},
		{name: "fragment in document key", mutate: func(a *Anchor) { a.DocumentKey += "#sensenote-a1" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "", want: CategoryNone},
		{in: "important", want: CategoryImportant},
		{in: "Question", want: CategoryQuestion},
		{in: "TODO", want: CategoryTodo},
		{in: "reference", want: CategoryReference},
		{in: "misc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCategory(%q) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTouchBumpsUpdatedAt(t *testing.T) {
	a := Anchor{UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a.Touch()
	if !a.UpdatedAt.After(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Touch did not advance UpdatedAt")
	}
}
