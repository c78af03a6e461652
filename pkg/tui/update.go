package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sensenote/sensenote/pkg/anchor"
	"github.com/sensenote/sensenote/pkg/menu"
	"github.com/sensenote/sensenote/pkg/store"
)

// Update handles all state updates for the browse UI.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case anchorsLoadedMsg:
		m.setAnchors(msg.anchors)
		return m, nil

	case recordMsg:
		return m.handleRecord(msg)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case suppressionExpiredMsg:
		m.machine.Handle(menu.NewSuppressionExpiredEvent(msg.generation))
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// updateFocused forwards a message to whichever component owns the focus.
func (m *model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.machine.State() {
	case menu.StateDetailPopup:
		m.detail, cmd = m.detail.Update(msg)
	case menu.StateEditDialog:
		m.noteArea, cmd = m.noteArea.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.ready = true
	m.list.SetSize(msg.Width, msg.Height-2)
	m.detail.Width = msg.Width - 8
	m.detail.Height = msg.Height - 10
	m.noteArea.SetWidth(msg.Width - 10)
	if m.current != nil {
		m.setDetailContent()
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.machine.State() {
	case menu.StateDetailPopup:
		return m.handleDetailKey(msg)
	case menu.StateEditDialog:
		return m.handleEditKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m *model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter is typing, every key belongs to it.
	if m.list.FilterState() == list.Filtering {
		return m.updateFocused(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		a, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.current = a
		tr := m.machine.Handle(menu.NewHighlightActivatedEvent(a.ID))
		m.setDetailContent()
		return m, tea.Batch(m.armCmd(tr), m.recordCmd(a.ID))
	case "y":
		if a, ok := m.selected(); ok {
			return m, copyCmd(a.ExactText)
		}
	case "f":
		if a, ok := m.selected(); ok {
			return m, m.toggleFavoriteCmd(a.ID)
		}
	case "d":
		if a, ok := m.selected(); ok {
			return m, m.deleteCmd(a.ID)
		}
	}
	return m.updateFocused(msg)
}

func (m *model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.current == nil {
		m.machine.Handle(menu.NewDismissedEvent())
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.machine.Handle(menu.NewDismissedEvent())
		m.current = nil
		return m, nil
	case "e":
		tr := m.machine.Handle(menu.NewEditRequestedEvent())
		m.noteArea.SetValue(m.current.Note)
		m.noteArea.Focus()
		return m, m.armCmd(tr)
	case "y":
		return m, copyCmd(m.current.ExactText)
	case "f":
		return m, m.toggleFavoriteCmd(m.current.ID)
	case "c":
		return m, m.cycleCategoryCmd(m.current.ID)
	case "d":
		id := m.current.ID
		m.machine.Handle(menu.NewDismissedEvent())
		m.current = nil
		return m, m.deleteCmd(id)
	}
	return m.updateFocused(msg)
}

func (m *model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.machine.Handle(menu.NewDismissedEvent())
		m.noteArea.Blur()
		m.current = nil
		return m, nil
	case "ctrl+s":
		if m.current == nil {
			m.machine.Handle(menu.NewDismissedEvent())
			return m, nil
		}
		id := m.current.ID
		note := m.noteArea.Value()
		m.machine.Handle(menu.NewSavedEvent())
		m.noteArea.Blur()
		m.current = nil
		return m, m.saveNoteCmd(id, note)
	}
	return m.updateFocused(msg)
}

// handleMouse treats any press while a surface is open as an outside click.
// The browse popups have no click targets, so the machine decides whether
// the press dismisses or lands inside the suppression window.
func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || m.machine.State() == menu.StateClosed {
		return m.updateFocused(msg)
	}
	tr := m.machine.Handle(menu.NewOutsideClickEvent())
	if tr.To == menu.StateClosed {
		m.current = nil
		m.noteArea.Blur()
	}
	return m, nil
}

func (m *model) handleRecord(msg recordMsg) (tea.Model, tea.Cmd) {
	if m.machine.State() != menu.StateDetailPopup {
		return m, nil
	}
	m.current = msg.anchor
	m.setDetailContent()
	return m, nil
}

func (m *model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.status = msg.status
	m.lastErr = msg.err
	if msg.err != nil {
		m.log.Warnf("browse action: %v", msg.err)
		// A record that vanished under an open surface closes it.
		if errors.Is(msg.err, store.ErrNotFound) && m.machine.State() != menu.StateClosed {
			m.machine.Handle(menu.NewDismissedEvent())
			m.current = nil
			m.status = "highlight no longer exists"
			m.lastErr = nil
		}
	}

	var cmds []tea.Cmd
	if msg.reload {
		cmds = append(cmds, m.loadCmd())
		if m.machine.State() == menu.StateDetailPopup && m.current != nil {
			cmds = append(cmds, m.recordCmd(m.current.ID))
		}
	}
	return m, tea.Batch(cmds...)
}

// armCmd schedules the expiry event for a freshly armed suppression window.
func (m *model) armCmd(tr menu.Transition) tea.Cmd {
	if !tr.Armed {
		return nil
	}
	window := m.cfg.Menu.SuppressionWindow.Std()
	if window <= 0 {
		m.machine.Handle(menu.NewSuppressionExpiredEvent(tr.Generation))
		return nil
	}
	gen := tr.Generation
	return tea.Tick(window, func(time.Time) tea.Msg {
		return suppressionExpiredMsg{generation: gen}
	})
}

func (m *model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		anchors, err := m.store.Load(context.Background())
		if err != nil {
			return actionDoneMsg{err: fmt.Errorf("load anchors: %w", err)}
		}
		return anchorsLoadedMsg{anchors: anchors}
	}
}

// recordCmd re-reads the store so the popup shows the latest revision.
func (m *model) recordCmd(id string) tea.Cmd {
	return func() tea.Msg {
		a, err := store.Get(context.Background(), m.store, id)
		if err != nil {
			return actionDoneMsg{err: err, reload: true}
		}
		return recordMsg{anchor: a}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return actionDoneMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return actionDoneMsg{status: "copied highlight text"}
	}
}

func (m *model) toggleFavoriteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		a, err := store.Update(context.Background(), m.store, id, func(rec *anchor.Anchor) error {
			rec.Favorite = !rec.Favorite
			return nil
		})
		if err != nil {
			return actionDoneMsg{err: err, reload: true}
		}
		status := "removed favorite"
		if a.Favorite {
			status = "marked favorite"
		}
		return actionDoneMsg{status: status, reload: true}
	}
}

func (m *model) cycleCategoryCmd(id string) tea.Cmd {
	return func() tea.Msg {
		a, err := store.Update(context.Background(), m.store, id, func(rec *anchor.Anchor) error {
			rec.Category = nextCategory(rec.Category)
			return nil
		})
		if err != nil {
			return actionDoneMsg{err: err, reload: true}
		}
		status := "category cleared"
		if a.Category != anchor.CategoryNone {
			status = "category: " + string(a.Category)
		}
		return actionDoneMsg{status: status, reload: true}
	}
}

// nextCategory steps through the assignable categories and back to none.
func nextCategory(c anchor.Category) anchor.Category {
	cats := anchor.Categories()
	for i, cat := range cats {
		if cat == c {
			if i == len(cats)-1 {
				return anchor.CategoryNone
			}
			return cats[i+1]
		}
	}
	return cats[0]
}

func (m *model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := store.Remove(context.Background(), m.store, id); err != nil {
			return actionDoneMsg{err: err, reload: true}
		}
		return actionDoneMsg{status: "highlight deleted", reload: true}
	}
}

func (m *model) saveNoteCmd(id, note string) tea.Cmd {
	return func() tea.Msg {
		_, err := store.Update(context.Background(), m.store, id, func(rec *anchor.Anchor) error {
			rec.Note = note
			return nil
		})
		if err != nil {
			return actionDoneMsg{err: err, reload: true}
		}
		return actionDoneMsg{status: "note saved", reload: true}
	}
}
