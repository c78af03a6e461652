// Package tui is the interactive terminal browser over the highlight store.
// It lists every stored anchor, opens a detail popup for one highlight, and
// edits its note in a dialog, with the open-surface lifecycle driven by the
// menu state machine rather than ad hoc flags.
//
// The package is split across files by concern:
//   - browser.go: entry point and program lifecycle
//   - model.go: model state, list items, and initialization
//   - update.go: message handling and store commands
//   - view.go: rendering
//   - styles.go: lipgloss styles
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sensenote/sensenote/pkg/config"
	"github.com/sensenote/sensenote/pkg/logging"
	"github.com/sensenote/sensenote/pkg/store"
)

// Browser runs the highlight browser against a store.
type Browser struct {
	store store.Store
	cfg   *config.Config
	log   *logging.Logger
}

// NewBrowser creates a browser. A nil config falls back to defaults and a
// nil logger discards output.
func NewBrowser(st store.Store, cfg *config.Config, log *logging.Logger) *Browser {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Browser{store: st, cfg: cfg, log: log}
}

// Run starts the interactive session and blocks until the user quits or the
// context is cancelled.
func (b *Browser) Run(ctx context.Context) error {
	m := newModel(b.store, b.cfg, b.log)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run highlight browser: %w", err)
	}
	return nil
}
