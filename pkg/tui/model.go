package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sensenote/sensenote/pkg/anchor"
	"github.com/sensenote/sensenote/pkg/config"
	"github.com/sensenote/sensenote/pkg/logging"
	"github.com/sensenote/sensenote/pkg/menu"
	"github.com/sensenote/sensenote/pkg/store"
)

// model is the state of the browse UI. Which surface is showing (list,
// detail popup, note editor) is owned by the menu machine, not by ad hoc
// flags.
type model struct {
	store   store.Store
	cfg     *config.Config
	log     *logging.Logger
	machine *menu.Machine

	list     list.Model
	detail   viewport.Model
	noteArea textarea.Model

	// current is the record behind the open popup or editor, refreshed
	// from the store when the popup opens.
	current *anchor.Anchor

	status  string
	lastErr error

	width  int
	height int
	ready  bool
}

// anchorsLoadedMsg carries a fresh store snapshot for the list.
type anchorsLoadedMsg struct {
	anchors []*anchor.Anchor
}

// recordMsg carries the freshly re-read record behind an activation.
type recordMsg struct {
	anchor *anchor.Anchor
}

// actionDoneMsg reports the outcome of a store mutation or clipboard copy.
type actionDoneMsg struct {
	status string
	err    error
	reload bool
}

// suppressionExpiredMsg delivers the expiry of one suppression window.
type suppressionExpiredMsg struct {
	generation int
}

// anchorItem adapts one anchor for the list.
type anchorItem struct {
	anchor *anchor.Anchor
}

func (i anchorItem) FilterValue() string {
	return i.anchor.ExactText + " " + i.anchor.Note + " " + i.anchor.DocumentKey
}

func (i anchorItem) Title() string {
	title := flatten(i.anchor.ExactText, 70)
	if i.anchor.Favorite {
		title = "★ " + title
	}
	return title
}

func (i anchorItem) Description() string {
	desc := i.anchor.DocumentKey + " · " + i.anchor.CreatedAt.Format("2006-01-02")
	if i.anchor.Category != anchor.CategoryNone {
		desc += " · " + string(i.anchor.Category)
	}
	if i.anchor.Note != "" {
		desc += " · noted"
	}
	return desc
}

// anchorDelegate renders list rows in the sensenote theme.
type anchorDelegate struct {
	list.DefaultDelegate
}

func newAnchorDelegate() anchorDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(honeyYellow).
		BorderForeground(honeyYellow)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(mutedGray).
		BorderForeground(honeyYellow)
	return anchorDelegate{DefaultDelegate: d}
}

func newModel(st store.Store, cfg *config.Config, log *logging.Logger) *model {
	l := list.New([]list.Item{}, newAnchorDelegate(), 0, 0)
	l.Title = "sensenote highlights"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle.Padding(0, 1)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
			key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
			key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
			key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		}
	}

	ta := textarea.New()
	ta.Placeholder = "Add a note..."
	ta.ShowLineNumbers = false
	ta.SetHeight(5)

	return &model{
		store:    st,
		cfg:      cfg,
		log:      log,
		machine:  menu.New(),
		list:     l,
		detail:   viewport.New(0, 0),
		noteArea: ta,
	}
}

// Init loads the first store snapshot.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), textarea.Blink)
}

// selected returns the anchor under the list cursor.
func (m *model) selected() (*anchor.Anchor, bool) {
	item, ok := m.list.SelectedItem().(anchorItem)
	if !ok {
		return nil, false
	}
	return item.anchor, true
}

// setAnchors rebuilds the list from a fresh snapshot.
func (m *model) setAnchors(anchors []*anchor.Anchor) {
	items := make([]list.Item, len(anchors))
	for i, a := range anchors {
		items[i] = anchorItem{anchor: a}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("sensenote highlights (%d)", len(anchors))
}
