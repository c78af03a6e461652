package restore

import (
	"context"
	"fmt"
	"time"

	"github.com/sensenote/sensenote/pkg/document"
)

// Scroll retry bounds used when ScrollOptions fields are zero.
const (
	DefaultScrollAttempts = 10
	DefaultScrollDelay    = 300 * time.Millisecond
)

// Viewport is the embedding surface the scroll loop drives: it can tell
// whether a highlight's wrapper is present, bring it into view, and manage
// the visible navigation fragment.
type Viewport interface {
	HasHighlight(id string) bool
	ScrollTo(id string) error
	// Fragment returns the current navigation fragment without the '#'.
	Fragment() string
	ClearFragment()
}

// ScrollOptions bound the retry loop. Zero values select the defaults.
type ScrollOptions struct {
	Attempts int
	Delay    time.Duration
}

// ScrollToFragment waits for the highlight a sensenote navigation fragment
// points at and scrolls it into view. The wrapper may not exist yet when the
// fragment is seen: restoration can still be in flight, or the content may
// be lazily rendered. The viewport is therefore polled a bounded number of
// times.
//
// The fragment is cleared on success and on exhaustion alike, and a
// highlight that never appears is not an error. Fragments that do not carry
// the sensenote prefix are left alone.
func ScrollToFragment(ctx context.Context, vp Viewport, opts ScrollOptions) error {
	id, ok := document.ParseFragment(vp.Fragment())
	if !ok {
		return nil
	}

	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultScrollAttempts
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultScrollDelay
	}

	for i := 0; i < attempts; i++ {
		if vp.HasHighlight(id) {
			err := vp.ScrollTo(id)
			vp.ClearFragment()
			if err != nil {
				return fmt.Errorf("restore: scroll to %s: %w", id, err)
			}
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	// The highlight never appeared. Give up silently; a fragment pointing at
	// nothing must not keep re-triggering on every later load.
	vp.ClearFragment()
	return nil
}
