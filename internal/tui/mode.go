package tui

import "time"

// mode is the interaction state layered over the active view.
type mode interface {
	modeName() string
}

// normalMode accepts navigation and command keys.
type normalMode struct{}

// creatingMode edits a form for a new note.
type creatingMode struct {
	form noteForm
}

// editingMode edits a form seeded from an existing note.
type editingMode struct {
	noteID string
	form   noteForm
}

// confirmDeleteMode waits for a yes or no on one pending delete.
type confirmDeleteMode struct {
	noteID string
}

func (normalMode) modeName() string        { return "normal" }
func (creatingMode) modeName() string      { return "new" }
func (editingMode) modeName() string       { return "edit" }
func (confirmDeleteMode) modeName() string { return "confirm" }

// view is one of the three board perspectives.
type view int

// viewBoard and related constants define the switchable views.
const (
	viewBoard view = iota
	viewTimeline
	viewProject
)

// label returns the display name of the view.
func (v view) label() string {
	switch v {
	case viewTimeline:
		return "Timeline"
	case viewProject:
		return "Project"
	default:
		return "Board"
	}
}

// parseView maps a configured view name to a view, defaulting to the board.
func parseView(name string) view {
	switch name {
	case "timeline":
		return viewTimeline
	case "project":
		return viewProject
	default:
		return viewBoard
	}
}

// timelineFocus identifies the focused timeline pane.
type timelineFocus int

// focusUnassigned and related constants define the timeline focus cycle.
const (
	focusUnassigned timelineFocus = iota
	focusAssigned
	focusCalendar
)

func (f timelineFocus) next() timelineFocus {
	return (f + 1) % 3
}

func (f timelineFocus) prev() timelineFocus {
	return (f + 2) % 3
}

// projectFocus identifies the focused project pane.
type projectFocus int

// focusTags and focusTagNotes define the project panes.
const (
	focusTags projectFocus = iota
	focusTagNotes
)

// boardState tracks the board view selection and per-column scroll offsets.
type boardState struct {
	column  int
	note    int
	offsets []int
}

// timelineState tracks timeline focus, list selections, and the calendar cursor.
type timelineState struct {
	focus            timelineFocus
	unassigned       int
	assigned         int
	unassignedOffset int
	assignedOffset   int
	cursor           time.Time
}

// projectState tracks project focus and selections.
type projectState struct {
	focus      projectFocus
	tag        int
	note       int
	tagOffset  int
	noteOffset int
}
