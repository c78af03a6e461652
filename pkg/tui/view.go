package tui

import (
	"strings"

	"github.com/sensenote/sensenote/pkg/anchor"
	"github.com/sensenote/sensenote/pkg/menu"
)

// View renders the surface the menu machine says is on top.
func (m *model) View() string {
	if !m.ready {
		return "Loading highlights..."
	}
	switch m.machine.State() {
	case menu.StateDetailPopup:
		return m.buildDetailView()
	case menu.StateEditDialog:
		return m.buildEditView()
	default:
		return m.buildListView()
	}
}

func (m *model) buildListView() string {
	return m.list.View() + "\n" + m.buildStatusLine()
}

func (m *model) buildDetailView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("highlight"))
	b.WriteString("\n\n")
	b.WriteString(m.detail.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("e edit note · c category · f favorite · y copy · d delete · esc close"))
	return boxStyle.Width(m.width-4).Render(b.String()) + "\n" + m.buildStatusLine()
}

func (m *model) buildEditView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("edit note"))
	b.WriteString("\n")
	if m.current != nil {
		b.WriteString(quoteStyle.Render(flatten(m.current.ExactText, 80)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.noteArea.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("ctrl+s save · esc discard"))
	return boxStyle.Width(m.width-4).Render(b.String()) + "\n" + m.buildStatusLine()
}

func (m *model) buildStatusLine() string {
	if m.lastErr != nil {
		return errorStyle.Render(m.lastErr.Error())
	}
	if m.status != "" {
		return successStyle.Render(m.status)
	}
	return statusStyle.Render("enter open · / filter · y copy · f favorite · d delete · q quit")
}

// setDetailContent refreshes the popup viewport from the current record.
func (m *model) setDetailContent() {
	if m.current == nil {
		return
	}
	m.detail.SetContent(m.buildDetailContent(m.current))
	m.detail.GotoTop()
}

func (m *model) buildDetailContent(a *anchor.Anchor) string {
	var b strings.Builder
	b.WriteString(quoteStyle.Render(a.ExactText))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("document  ") + a.DocumentKey + "\n")
	b.WriteString(labelStyle.Render("created   ") + a.CreatedAt.Format("2006-01-02 15:04") + "\n")
	if !a.UpdatedAt.IsZero() && !a.UpdatedAt.Equal(a.CreatedAt) {
		b.WriteString(labelStyle.Render("updated   ") + a.UpdatedAt.Format("2006-01-02 15:04") + "\n")
	}
	if a.Color != "" {
		b.WriteString(labelStyle.Render("color     ") + a.Color + "\n")
	}
	if a.Category != anchor.CategoryNone {
		b.WriteString(labelStyle.Render("category  ") + string(a.Category) + "\n")
	}
	if a.Favorite {
		b.WriteString(labelStyle.Render("favorite  ") + "★\n")
	}
	if a.Note != "" {
		b.WriteString("\n" + labelStyle.Render("note") + "\n" + a.Note + "\n")
	}
	return b.String()
}

// flatten collapses newlines and truncates for single-line display.
func flatten(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
