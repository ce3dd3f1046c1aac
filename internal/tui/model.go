package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/DamynChipman/postit/internal/domain"
	"github.com/atotto/clipboard"
	charmLog "github.com/charmbracelet/log"
)

// defaultTickInterval bounds how long the header waits between refreshes.
const defaultTickInterval = 200 * time.Millisecond

// clipboardWrite copies text to the system clipboard.
var clipboardWrite = clipboard.WriteAll

// Service is the persistence and identity surface the board session needs.
type Service interface {
	SaveBoard(context.Context, domain.BoardLocation, domain.Board) error
	NewID() string
	Now() time.Time
}

// tickMsg refreshes time-based header text.
type tickMsg time.Time

// Model is the interactive board session.
type Model struct {
	svc   Service
	board domain.Board
	loc   domain.BoardLocation

	ready  bool
	width  int
	height int

	status   string
	lastSave time.Time

	help help.Model
	keys keyMap

	mode     mode
	view     view
	boardNav boardState
	timeline timelineState
	project  projectState

	tickInterval   time.Duration
	renderMarkdown bool
	markdown       *markdownRenderer
	logger         *charmLog.Logger
}

// NewModel constructs a session over one loaded board.
func NewModel(svc Service, board domain.Board, loc domain.BoardLocation, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	now := svc.Now()
	if board.Notes == nil {
		board.Notes = map[string]domain.Note{}
	}
	cursor, ok := earliestDueDay(board)
	if !ok {
		cursor = dateOf(now)
	}
	m := Model{
		svc:          svc,
		board:        board,
		loc:          loc,
		status:       "Loaded board from " + loc.Path,
		lastSave:     now,
		help:         h,
		keys:         newKeyMap(),
		mode:         normalMode{},
		view:         viewBoard,
		boardNav:     boardState{offsets: make([]int, len(board.Columns))},
		timeline:     timelineState{focus: focusAssigned, cursor: cursor},
		project:      projectState{focus: focusTags},
		tickInterval: defaultTickInterval,
		markdown:     &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.ensureBounds()
	return m
}

// Board returns the current in-memory board.
func (m Model) Board() domain.Board {
	return m.board
}

// Init starts the header refresh tick.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// tick schedules one header refresh.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		m.syncOffsets()
		return m, nil

	case tickMsg:
		return m, m.tick()

	case tea.KeyPressMsg:
		var cmd tea.Cmd
		switch m.mode.(type) {
		case creatingMode, editingMode:
			m = m.handleFormKey(msg)
		case confirmDeleteMode:
			m = m.handleConfirmKey(msg)
		default:
			m, cmd = m.handleNormalModeKey(msg)
		}
		m.ensureBounds()
		return m, cmd

	default:
		return m, nil
	}
}

// handleNormalModeKey handles universal keys, then delegates to the active view.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.viewBoard):
		m.setView(viewBoard)
		return m, nil
	case key.Matches(msg, m.keys.viewTimeline):
		m.setView(viewTimeline)
		return m, nil
	case key.Matches(msg, m.keys.viewProject):
		m.setView(viewProject)
		return m, nil
	case key.Matches(msg, m.keys.newNote):
		m.mode = creatingMode{form: newNoteForm()}
		m.status = "Creating new task (Tab/Shift-Tab move, Ctrl+Enter save, Esc cancel)"
		return m, nil
	case key.Matches(msg, m.keys.editNote):
		ref, ok := m.currentNote()
		if !ok {
			m.status = "No note selected to edit"
			return m, nil
		}
		m.mode = editingMode{noteID: ref.id, form: noteFormFrom(ref.note)}
		m.status = "Editing " + ref.id
		return m, nil
	case key.Matches(msg, m.keys.deleteNote):
		ref, ok := m.currentNote()
		if !ok {
			m.status = "No note selected to delete"
			return m, nil
		}
		m.mode = confirmDeleteMode{noteID: ref.id}
		m.status = fmt.Sprintf("Delete %s? (y to confirm, n/Esc to cancel)", ref.id)
		return m, nil
	case key.Matches(msg, m.keys.copyID):
		ref, ok := m.currentNote()
		if !ok {
			m.status = "No note selected to copy"
			return m, nil
		}
		if err := clipboardWrite(ref.id); err != nil {
			m.status = "Copy failed: " + err.Error()
			return m, nil
		}
		m.status = "Copied " + ref.id
		return m, nil
	}

	switch m.view {
	case viewTimeline:
		return m.handleTimelineKey(msg), nil
	case viewProject:
		return m.handleProjectKey(msg), nil
	default:
		return m.handleBoardKey(msg), nil
	}
}

// handleBoardKey handles column and note navigation plus note moves.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) Model {
	nav := &m.boardNav
	switch {
	case key.Matches(msg, m.keys.moveLeft):
		if nav.column > 0 {
			nav.column--
			nav.note = 0
		}
	case key.Matches(msg, m.keys.moveRight):
		if nav.column+1 < len(m.board.Columns) {
			nav.column++
			nav.note = 0
		}
	case key.Matches(msg, m.keys.moveUp):
		if nav.note > 0 {
			nav.note--
		}
	case key.Matches(msg, m.keys.moveDown):
		if nav.column < len(m.board.Columns) && nav.note+1 < len(m.board.Columns[nav.column].NoteIDs) {
			nav.note++
		}
	case key.Matches(msg, m.keys.moveForward):
		m.moveSelected(1)
	case key.Matches(msg, m.keys.moveBack):
		m.moveSelected(-1)
	}
	return m
}

// moveSelected moves the selected board note to an adjacent column and follows it.
func (m *Model) moveSelected(delta int) {
	if len(m.board.Columns) == 0 {
		m.status = "No columns to move between"
		return
	}
	ref, ok := m.currentBoardNote()
	if !ok {
		m.status = "No note selected to move"
		return
	}
	target := clamp(m.boardNav.column+delta, 0, len(m.board.Columns)-1)
	if target == m.boardNav.column {
		m.status = "Already in " + m.board.Columns[target].Name
		return
	}
	dest := m.board.Columns[target]
	if err := m.board.MoveNote(ref.id, dest.ID, m.svc.Now()); err != nil {
		m.status = "Move failed: " + err.Error()
		return
	}
	m.boardNav.column = target
	m.boardNav.note = max(0, len(m.board.Columns[target].NoteIDs)-1)
	m.persist("Moved to " + dest.Name)
}

// handleTimelineKey handles pane focus, list browsing, and calendar movement.
func (m Model) handleTimelineKey(msg tea.KeyPressMsg) Model {
	tl := &m.timeline
	switch {
	case key.Matches(msg, m.keys.focusPrev):
		tl.focus = tl.focus.prev()
	case key.Matches(msg, m.keys.focusNext):
		tl.focus = tl.focus.next()
	case key.Matches(msg, m.keys.moveLeft):
		switch tl.focus {
		case focusCalendar:
			tl.cursor = tl.cursor.AddDate(0, 0, -1)
		case focusAssigned:
			tl.focus = tl.focus.prev()
		}
	case key.Matches(msg, m.keys.moveRight):
		switch tl.focus {
		case focusCalendar:
			tl.cursor = tl.cursor.AddDate(0, 0, 1)
		default:
			tl.focus = tl.focus.next()
		}
	case key.Matches(msg, m.keys.moveUp):
		switch tl.focus {
		case focusUnassigned:
			tl.unassigned = max(0, tl.unassigned-1)
		case focusAssigned:
			tl.assigned = max(0, tl.assigned-1)
		case focusCalendar:
			tl.cursor = tl.cursor.AddDate(0, 0, -7)
		}
	case key.Matches(msg, m.keys.moveDown):
		switch tl.focus {
		case focusUnassigned:
			tl.unassigned++
		case focusAssigned:
			tl.assigned++
		case focusCalendar:
			tl.cursor = tl.cursor.AddDate(0, 0, 7)
		}
	case key.Matches(msg, m.keys.jumpToDay):
		if tl.focus != focusCalendar {
			return m
		}
		idx, ok := m.firstDueOnCursor()
		if !ok {
			m.status = "No tasks due on that day"
			return m
		}
		tl.assigned = idx
		tl.focus = focusAssigned
		m.status = "Viewing tasks due " + tl.cursor.Format("2006-01-02")
	}
	return m
}

// firstDueOnCursor returns the assigned-list index of the first note due on the calendar day.
func (m Model) firstDueOnCursor() (int, bool) {
	_, assigned := timelineLists(m.board)
	day := dateOf(m.timeline.cursor)
	for idx, ref := range assigned {
		if dateOf(*ref.note.Due).Equal(day) {
			return idx, true
		}
	}
	return 0, false
}

// handleProjectKey handles tag and tagged-note browsing.
func (m Model) handleProjectKey(msg tea.KeyPressMsg) Model {
	ps := &m.project
	switch {
	case key.Matches(msg, m.keys.focusNext):
		if ps.focus == focusTags {
			ps.focus = focusTagNotes
		} else {
			ps.focus = focusTags
		}
	case key.Matches(msg, m.keys.moveLeft):
		ps.focus = focusTags
	case key.Matches(msg, m.keys.moveRight):
		ps.focus = focusTagNotes
	case key.Matches(msg, m.keys.moveUp):
		if ps.focus == focusTags {
			if ps.tag > 0 {
				ps.tag--
				ps.note = 0
			}
		} else if ps.note > 0 {
			ps.note--
		}
	case key.Matches(msg, m.keys.moveDown):
		if ps.focus == focusTags {
			ps.tag++
			ps.note = 0
		} else {
			ps.note++
		}
	}
	return m
}

// handleFormKey edits the open form or submits it.
func (m Model) handleFormKey(msg tea.KeyPressMsg) Model {
	var form noteForm
	switch md := m.mode.(type) {
	case creatingMode:
		form = md.form
	case editingMode:
		form = md.form
	default:
		return m
	}

	switch {
	case msg.Code == tea.KeyEscape || msg.String() == "esc":
		m.mode = normalMode{}
		m.status = "Canceled"
		return m
	case msg.String() == "shift+tab":
		form.prevField()
	case msg.Code == tea.KeyTab:
		form.nextField()
	case msg.Code == tea.KeyLeft:
		form.active().moveLeft()
	case msg.Code == tea.KeyRight:
		form.active().moveRight()
	case msg.Code == tea.KeyUp:
		form.active().moveUp()
	case msg.Code == tea.KeyDown:
		form.active().moveDown()
	case isSubmitKey(msg):
		return m.submitForm(form)
	case msg.Code == tea.KeyEnter:
		if form.focus != fieldBody {
			return m.submitForm(form)
		}
		form.active().insert('\n')
	case msg.Code == tea.KeyBackspace:
		form.active().backspace()
	case msg.Text != "" && msg.Mod&(tea.ModCtrl|tea.ModAlt) == 0:
		form.active().insertText(msg.Text)
	}
	return m.withForm(form)
}

// withForm stores an updated form back into the current form mode.
func (m Model) withForm(form noteForm) Model {
	switch md := m.mode.(type) {
	case creatingMode:
		md.form = form
		m.mode = md
	case editingMode:
		md.form = form
		m.mode = md
	}
	return m
}

// isSubmitKey reports whether msg is one of the explicit submit chords.
func isSubmitKey(msg tea.KeyPressMsg) bool {
	switch msg.String() {
	case "ctrl+enter", "alt+enter", "ctrl+s":
		return true
	}
	if msg.Code == tea.KeyEnter && msg.Mod&(tea.ModCtrl|tea.ModAlt) != 0 {
		return true
	}
	return msg.Mod&tea.ModCtrl != 0 && msg.Code == 's'
}

// submitForm commits the form for the current mode; failures keep the form open.
func (m Model) submitForm(form noteForm) Model {
	m = m.withForm(form)
	switch md := m.mode.(type) {
	case creatingMode:
		if err := m.createFromForm(form); err != nil {
			m.status = "Could not create: " + err.Error()
			return m
		}
	case editingMode:
		if err := m.editFromForm(md.noteID, form); err != nil {
			if errors.Is(err, domain.ErrNoteNotFound) {
				m.mode = normalMode{}
				m.status = fmt.Sprintf("Note %s no longer exists", md.noteID)
				return m
			}
			m.status = "Could not edit: " + err.Error()
			return m
		}
	}
	return m
}

// createFromForm adds a note to the selected board column and persists.
func (m *Model) createFromForm(form noteForm) error {
	values, err := form.parse()
	if err != nil {
		return err
	}
	if len(m.board.Columns) == 0 {
		return domain.ErrNoColumns
	}
	column := m.board.Columns[clamp(m.boardNav.column, 0, len(m.board.Columns)-1)]
	note, err := domain.NewNote(domain.NoteInput{
		ID:    m.svc.NewID(),
		Title: values.Title,
		Body:  values.Body,
		Tags:  values.Tags,
		Due:   values.Due,
	}, m.svc.Now())
	if err != nil {
		return err
	}
	if err := m.board.AddNote(note, column.ID); err != nil {
		return err
	}
	m.mode = normalMode{}
	if idx, ok := m.board.ColumnIndex(column.ID); ok {
		m.boardNav.column = idx
		m.boardNav.note = max(0, len(m.board.Columns[idx].NoteIDs)-1)
	}
	m.persist("Created note " + note.ID)
	return nil
}

// editFromForm rewrites all four note fields from the form and persists.
func (m *Model) editFromForm(noteID string, form noteForm) error {
	values, err := form.parse()
	if err != nil {
		return err
	}
	err = m.board.UpdateNote(noteID, func(note *domain.Note) {
		note.Title = values.Title
		note.Body = values.Body
		note.Tags = values.Tags
		note.Due = values.Due
	}, m.svc.Now())
	if err != nil {
		return err
	}
	m.mode = normalMode{}
	m.persist("Updated " + noteID)
	return nil
}

// handleConfirmKey resolves a pending delete.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) Model {
	pending, ok := m.mode.(confirmDeleteMode)
	if !ok {
		return m
	}
	switch msg.String() {
	case "y", "enter":
		m.mode = normalMode{}
		if err := m.board.DeleteNote(pending.noteID); err != nil {
			m.status = "Delete failed: " + err.Error()
			return m
		}
		m.persist("Deleted " + pending.noteID)
	case "n", "esc":
		m.mode = normalMode{}
		m.status = "Delete canceled"
	}
	return m
}

// setView switches the active view and re-clamps every selection.
func (m *Model) setView(v view) {
	if m.view != v {
		m.view = v
		m.status = fmt.Sprintf("Switched to %s view", v.label())
	}
	m.ensureBounds()
}

// persist saves the board synchronously; failures leave the in-memory change in place.
func (m *Model) persist(message string) {
	m.ensureBounds()
	if err := m.svc.SaveBoard(context.Background(), m.loc, m.board); err != nil {
		m.status = "Save failed: " + err.Error()
		if m.logger != nil {
			m.logger.Warn("save board failed", "board_path", m.loc.Path, "err", err)
		}
		return
	}
	m.lastSave = m.svc.Now()
	m.status = message
	if m.logger != nil {
		m.logger.Debug("board saved", "board_path", m.loc.Path, "notes", len(m.board.Notes))
	}
}

// currentNote returns the note selected under the active view's rules.
func (m Model) currentNote() (noteRef, bool) {
	switch m.view {
	case viewTimeline:
		return m.currentTimelineNote()
	case viewProject:
		return m.currentProjectNote()
	default:
		return m.currentBoardNote()
	}
}

func (m Model) currentBoardNote() (noteRef, bool) {
	nav := m.boardNav
	if nav.column < 0 || nav.column >= len(m.board.Columns) {
		return noteRef{}, false
	}
	ids := m.board.Columns[nav.column].NoteIDs
	if nav.note < 0 || nav.note >= len(ids) {
		return noteRef{}, false
	}
	note, ok := m.board.Note(ids[nav.note])
	if !ok {
		return noteRef{}, false
	}
	return noteRef{id: ids[nav.note], note: note}, true
}

func (m Model) currentTimelineNote() (noteRef, bool) {
	unassigned, assigned := timelineLists(m.board)
	switch m.timeline.focus {
	case focusUnassigned:
		if m.timeline.unassigned < len(unassigned) {
			return unassigned[m.timeline.unassigned], true
		}
	case focusAssigned:
		if m.timeline.assigned < len(assigned) {
			return assigned[m.timeline.assigned], true
		}
	}
	return noteRef{}, false
}

func (m Model) currentProjectNote() (noteRef, bool) {
	if m.project.focus != focusTagNotes {
		return noteRef{}, false
	}
	buckets := projectBuckets(m.board)
	if m.project.tag >= len(buckets) {
		return noteRef{}, false
	}
	notes := buckets[m.project.tag].notes
	if m.project.note >= len(notes) {
		return noteRef{}, false
	}
	return notes[m.project.note], true
}

// ensureBounds re-clamps every view's selection against the current board.
func (m *Model) ensureBounds() {
	m.ensureBoardBounds()
	m.ensureTimelineBounds()
	m.ensureProjectBounds()
	m.syncOffsets()
}

func (m *Model) ensureBoardBounds() {
	nav := &m.boardNav
	if len(nav.offsets) != len(m.board.Columns) {
		offsets := make([]int, len(m.board.Columns))
		copy(offsets, nav.offsets)
		nav.offsets = offsets
	}
	if len(m.board.Columns) == 0 {
		nav.column, nav.note = 0, 0
		return
	}
	nav.column = clamp(nav.column, 0, len(m.board.Columns)-1)
	nav.note = clamp(nav.note, 0, len(m.board.Columns[nav.column].NoteIDs)-1)
}

func (m *Model) ensureTimelineBounds() {
	unassigned, assigned := timelineLists(m.board)
	tl := &m.timeline
	tl.unassigned = clamp(tl.unassigned, 0, len(unassigned)-1)
	tl.assigned = clamp(tl.assigned, 0, len(assigned)-1)
	tl.unassignedOffset = clamp(tl.unassignedOffset, 0, len(unassigned)-1)
	tl.assignedOffset = clamp(tl.assignedOffset, 0, len(assigned)-1)
	tl.cursor = dateOf(tl.cursor)
}

func (m *Model) ensureProjectBounds() {
	buckets := projectBuckets(m.board)
	ps := &m.project
	if len(buckets) == 0 {
		ps.tag, ps.note = 0, 0
		ps.focus = focusTags
		return
	}
	ps.tag = clamp(ps.tag, 0, len(buckets)-1)
	notes := len(buckets[ps.tag].notes)
	if notes == 0 {
		ps.note = 0
		ps.focus = focusTags
		return
	}
	ps.note = clamp(ps.note, 0, notes-1)
}

// syncOffsets scrolls every list so its selection stays inside the visible window.
func (m *Model) syncOffsets() {
	cards := m.cardsPerColumn()
	for idx := range m.board.Columns {
		length := len(m.board.Columns[idx].NoteIDs)
		if idx == m.boardNav.column {
			m.boardNav.offsets[idx] = adjustOffset(m.boardNav.note, m.boardNav.offsets[idx], cards, scrollMargin, length)
			continue
		}
		m.boardNav.offsets[idx] = clamp(m.boardNav.offsets[idx], 0, max(0, length-cards))
	}

	rows := m.listRows()
	unassigned, assigned := timelineLists(m.board)
	m.timeline.unassignedOffset = adjustOffset(m.timeline.unassigned, m.timeline.unassignedOffset, rows, scrollMargin, len(unassigned))
	m.timeline.assignedOffset = adjustOffset(m.timeline.assigned, m.timeline.assignedOffset, rows, scrollMargin, len(assigned))

	buckets := projectBuckets(m.board)
	m.project.tagOffset = adjustOffset(m.project.tag, m.project.tagOffset, rows, scrollMargin, len(buckets))
	notes := 0
	if m.project.tag < len(buckets) {
		notes = len(buckets[m.project.tag].notes)
	}
	m.project.noteOffset = adjustOffset(m.project.note, m.project.noteOffset, rows, scrollMargin, notes)
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
