package store

import (
	"context"
	"sync"

	"github.com/sensenote/sensenote/pkg/anchor"
)

// Memory is an in-process Store with copy-in/copy-out semantics: callers can
// mutate what Load returned without reaching through to the stored state.
// Used by tests and ephemeral sessions.
type Memory struct {
	mu      sync.RWMutex
	anchors []*anchor.Anchor
}

// NewMemory builds a memory store seeded with copies of initial.
func NewMemory(initial ...*anchor.Anchor) *Memory {
	return &Memory{anchors: cloneAll(initial)}
}

func (m *Memory) Load(_ context.Context) ([]*anchor.Anchor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.anchors), nil
}

func (m *Memory) Save(_ context.Context, anchors []*anchor.Anchor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anchors = cloneAll(anchors)
	return nil
}

func cloneAll(in []*anchor.Anchor) []*anchor.Anchor {
	out := make([]*anchor.Anchor, len(in))
	for i, a := range in {
		c := *a
		out[i] = &c
	}
	return out
}
