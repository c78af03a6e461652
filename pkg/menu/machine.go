// Package menu models the interaction surfaces that sit on top of a page
// (selection menu, highlight detail popup, annotation edit dialog) as an
// explicit state machine driven by discrete input events.
//
// The machine is pure and timer-free. Opening any surface arms a
// suppression window so the click that opened it cannot immediately
// dismiss it; the embedding UI schedules the expiry by delivering a
// SuppressionExpired event carrying the generation token returned by the
// arming transition. A stale token from an earlier surface is ignored, so
// switching surfaces never cuts the new window short.
package menu

// State identifies which interaction surface is currently showing.
type State string

const (
	StateClosed        State = "closed"         // StateClosed means no surface is on screen.
	StateSelectionMenu State = "selection_menu" // StateSelectionMenu is the floating menu over a fresh text selection.
	StateDetailPopup   State = "detail_popup"   // StateDetailPopup shows an existing highlight's annotations.
	StateEditDialog    State = "edit_dialog"    // StateEditDialog is the annotation editor for one highlight.
)

// EventType defines the kind of input event fed to the machine.
type EventType string

const (
	EventSelectionMade      EventType = "selection_made"      // EventSelectionMade indicates the user finished selecting text.
	EventHighlightActivated EventType = "highlight_activated" // EventHighlightActivated indicates the user clicked an existing highlight.
	EventEditRequested      EventType = "edit_requested"      // EventEditRequested indicates the user asked to edit from the detail popup.
	EventSaved              EventType = "saved"               // EventSaved indicates the edit dialog committed its changes.
	EventDismissed          EventType = "dismissed"           // EventDismissed indicates an explicit close action on the current surface.
	EventOutsideClick       EventType = "outside_click"       // EventOutsideClick indicates a click outside the current surface.
	EventSuppressionExpired EventType = "suppression_expired" // EventSuppressionExpired indicates a suppression window elapsed.
)

// Event is one discrete input to the machine.
type Event struct {
	// Type indicates the kind of event.
	Type EventType

	// Target is the highlight id the event refers to. Set on
	// EventHighlightActivated.
	Target string

	// Generation correlates an EventSuppressionExpired with the arming
	// transition it expires.
	Generation int
}

// NewSelectionMadeEvent creates a selection-made event.
func NewSelectionMadeEvent() Event {
	return Event{Type: EventSelectionMade}
}

// NewHighlightActivatedEvent creates an activation event for one highlight.
func NewHighlightActivatedEvent(id string) Event {
	return Event{Type: EventHighlightActivated, Target: id}
}

// NewEditRequestedEvent creates an edit-requested event.
func NewEditRequestedEvent() Event {
	return Event{Type: EventEditRequested}
}

// NewSavedEvent creates a saved event.
func NewSavedEvent() Event {
	return Event{Type: EventSaved}
}

// NewDismissedEvent creates a dismissed event.
func NewDismissedEvent() Event {
	return Event{Type: EventDismissed}
}

// NewOutsideClickEvent creates an outside-click event.
func NewOutsideClickEvent() Event {
	return Event{Type: EventOutsideClick}
}

// NewSuppressionExpiredEvent creates the expiry event for the suppression
// window identified by generation.
func NewSuppressionExpiredEvent(generation int) Event {
	return Event{Type: EventSuppressionExpired, Generation: generation}
}

// Transition records the outcome of feeding one event to the machine.
type Transition struct {
	// From and To are the states before and after the event. Equal values
	// mean the event did not move the machine.
	From State
	To   State

	// Target is the highlight id the surface in To refers to, empty for
	// the selection menu and the closed state.
	Target string

	// Armed reports that a surface just opened and its suppression window
	// is live. The embedding UI must deliver
	// NewSuppressionExpiredEvent(Generation) once the configured window
	// elapses.
	Armed bool

	// Generation identifies the suppression window armed by this
	// transition. Only meaningful when Armed is true.
	Generation int

	// Swallowed reports that the event landed inside a live suppression
	// window and was deliberately ignored.
	Swallowed bool
}

// Machine is the interaction state machine for one page. It is not safe
// for concurrent use; all events arrive on the page's single execution
// context.
type Machine struct {
	state      State
	target     string
	generation int
	suppressed bool
}

// New returns a machine in the closed state.
func New() *Machine {
	return &Machine{state: StateClosed}
}

// State returns the surface currently showing.
func (m *Machine) State() State {
	return m.state
}

// Target returns the highlight id the current surface refers to, or empty.
func (m *Machine) Target() string {
	return m.target
}

// Suppressed reports whether a suppression window is live.
func (m *Machine) Suppressed() bool {
	return m.suppressed
}

// Handle applies one event and reports the resulting transition. Events
// that do not apply in the current state are ignored.
func (m *Machine) Handle(ev Event) Transition {
	tr := Transition{From: m.state}

	switch ev.Type {
	case EventSelectionMade:
		// A fresh selection replaces whatever menu or popup is up, but
		// never steals focus from an open editor.
		if m.state != StateEditDialog {
			m.target = ""
			m.open(StateSelectionMenu, &tr)
		}

	case EventHighlightActivated:
		if m.state != StateEditDialog {
			m.target = ev.Target
			m.open(StateDetailPopup, &tr)
		}

	case EventEditRequested:
		if m.state == StateDetailPopup {
			m.open(StateEditDialog, &tr)
		}

	case EventSaved:
		if m.state == StateEditDialog {
			m.close()
		}

	case EventDismissed:
		if m.state != StateClosed {
			m.close()
		}

	case EventOutsideClick:
		if m.state != StateClosed {
			if m.suppressed {
				tr.Swallowed = true
			} else {
				m.close()
			}
		}

	case EventSuppressionExpired:
		if ev.Generation == m.generation {
			m.suppressed = false
		}
	}

	tr.To = m.state
	tr.Target = m.target
	return tr
}

func (m *Machine) open(s State, tr *Transition) {
	m.state = s
	m.generation++
	m.suppressed = true
	tr.Armed = true
	tr.Generation = m.generation
}

func (m *Machine) close() {
	m.state = StateClosed
	m.target = ""
	m.suppressed = false
}
