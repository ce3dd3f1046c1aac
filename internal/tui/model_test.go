package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/DamynChipman/postit/internal/domain"
	"github.com/charmbracelet/x/ansi"
)

type fakeService struct {
	now   time.Time
	next  int
	saves int
	err   error
}

func (f *fakeService) SaveBoard(_ context.Context, _ domain.BoardLocation, _ domain.Board) error {
	if f.err != nil {
		return f.err
	}
	f.saves++
	return nil
}

func (f *fakeService) NewID() string {
	f.next++
	return fmt.Sprintf("n%d", f.next)
}

func (f *fakeService) Now() time.Time {
	return f.now
}

var testNow = time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

var testLocation = domain.BoardLocation{Path: "/tmp/work/.postit/board.yml", Scope: domain.BoardScopeProject}

func dueAt(t *testing.T, raw string) *time.Time {
	t.Helper()
	due, err := domain.ParseDue(raw)
	if err != nil {
		t.Fatalf("ParseDue(%q) error = %v", raw, err)
	}
	return due
}

// newTestBoard builds To Do [a, b], Doing (limit 1) [c], Done [].
func newTestBoard(t *testing.T) domain.Board {
	t.Helper()
	todo, _ := domain.NewColumn("todo", "To Do", 0)
	doing, _ := domain.NewColumn("doing", "Doing", 1)
	done, _ := domain.NewColumn("done", "Done", 0)
	board := domain.NewBoard("work", []domain.Column{todo, doing, done})

	inputs := []struct {
		in     domain.NoteInput
		column string
	}{
		{domain.NoteInput{ID: "a", Title: "Alpha", Tags: []string{"work"}, Due: dueAt(t, "2026.02.23@10:00")}, "todo"},
		{domain.NoteInput{ID: "b", Title: "Bravo"}, "todo"},
		{domain.NoteInput{ID: "c", Title: "Charlie", Body: "call back", Tags: []string{"home", "work"}, Due: dueAt(t, "2026.02.22@09:00")}, "doing"},
	}
	for _, item := range inputs {
		note, err := domain.NewNote(item.in, testNow)
		if err != nil {
			t.Fatalf("NewNote() error = %v", err)
		}
		if err := board.AddNote(note, item.column); err != nil {
			t.Fatalf("AddNote() error = %v", err)
		}
	}
	return board
}

func newTestModel(t *testing.T, opts ...Option) (Model, *fakeService) {
	t.Helper()
	svc := &fakeService{now: testNow}
	return loadReadyModel(t, NewModel(svc, newTestBoard(t), testLocation, opts...)), svc
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

// TestModelLoadAndBoardNavigation verifies column and note movement on the board view.
func TestModelLoadAndBoardNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	if m.status != "Loaded board from "+testLocation.Path {
		t.Fatalf("unexpected startup status %q", m.status)
	}
	if ref, ok := m.currentNote(); !ok || ref.id != "a" {
		t.Fatalf("expected a selected, got %#v %v", ref, ok)
	}

	m = applyMsg(t, m, keyRune('j'))
	if m.boardNav.note != 1 {
		t.Fatalf("expected note=1, got %d", m.boardNav.note)
	}
	m = applyMsg(t, m, keyRune('j'))
	if m.boardNav.note != 1 {
		t.Fatalf("expected note to stay at 1, got %d", m.boardNav.note)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	if m.boardNav.column != 1 || m.boardNav.note != 0 {
		t.Fatalf("expected column=1 note=0, got %#v", m.boardNav)
	}
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('l'))
	if m.boardNav.column != 2 {
		t.Fatalf("expected column to stop at 2, got %d", m.boardNav.column)
	}
	if _, ok := m.currentNote(); ok {
		t.Fatal("expected no note selected in empty column")
	}
	m = applyMsg(t, m, keyRune('h'))
	if m.boardNav.column != 1 {
		t.Fatalf("expected column=1, got %d", m.boardNav.column)
	}
}

// TestModelMoveNoteBetweenColumns verifies wip failures, successful moves, and the edge no-op.
func TestModelMoveNoteBetweenColumns(t *testing.T) {
	m, svc := newTestModel(t)

	m = applyMsg(t, m, keyRune('m'))
	if !strings.HasPrefix(m.status, "Move failed: ") || !strings.Contains(m.status, "wip limit") {
		t.Fatalf("expected wip failure status, got %q", m.status)
	}
	if svc.saves != 0 {
		t.Fatalf("expected no save after failed move, got %d", svc.saves)
	}

	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('>'))
	if m.status != "Moved to Done" {
		t.Fatalf("unexpected move status %q", m.status)
	}
	if m.boardNav.column != 2 || m.boardNav.note != 0 {
		t.Fatalf("expected selection to follow note, got %#v", m.boardNav)
	}
	if got := m.board.Columns[2].NoteIDs; len(got) != 1 || got[0] != "c" {
		t.Fatalf("unexpected done column %#v", got)
	}
	if svc.saves != 1 {
		t.Fatalf("expected one save, got %d", svc.saves)
	}

	m = applyMsg(t, m, keyRune('>'))
	if m.status != "Already in Done" || svc.saves != 1 {
		t.Fatalf("expected edge no-op, got %q saves=%d", m.status, svc.saves)
	}

	m = applyMsg(t, m, keyRune('b'))
	if m.status != "Moved to Doing" || m.boardNav.column != 1 {
		t.Fatalf("expected move back to Doing, got %q column=%d", m.status, m.boardNav.column)
	}

	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('m'))
	if m.status != "No note selected to move" {
		t.Fatalf("unexpected empty-column move status %q", m.status)
	}
}

// TestModelCreateNoteViaForm verifies typing into every field and submitting with ctrl+s.
func TestModelCreateNoteViaForm(t *testing.T) {
	m, svc := newTestModel(t)

	m = applyMsg(t, m, keyRune('n'))
	if _, ok := m.mode.(creatingMode); !ok {
		t.Fatalf("expected creating mode, got %T", m.mode)
	}
	if m.status != "Creating new task (Tab/Shift-Tab move, Ctrl+Enter save, Esc cancel)" {
		t.Fatalf("unexpected create status %q", m.status)
	}

	m = typeText(t, m, "quiz")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "line1")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "line2")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "x, y")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "2026.03.01@08:30")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})

	if m.status != "Created note n1" {
		t.Fatalf("unexpected create status %q", m.status)
	}
	if _, ok := m.mode.(normalMode); !ok {
		t.Fatalf("expected normal mode after submit, got %T", m.mode)
	}
	note, ok := m.board.Note("n1")
	if !ok {
		t.Fatal("expected note n1 on the board")
	}
	if note.Title != "quiz" || note.Body != "line1\nline2" {
		t.Fatalf("unexpected note text %#v", note)
	}
	if len(note.Tags) != 2 || note.Tags[0] != "x" || note.Tags[1] != "y" {
		t.Fatalf("unexpected tags %#v", note.Tags)
	}
	if note.Due == nil || !note.Due.Equal(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due %v", note.Due)
	}
	if ids := m.board.Columns[0].NoteIDs; ids[len(ids)-1] != "n1" || m.boardNav.note != len(ids)-1 {
		t.Fatalf("expected n1 selected at end of To Do, got %#v note=%d", ids, m.boardNav.note)
	}
	if svc.saves != 1 {
		t.Fatalf("expected one save, got %d", svc.saves)
	}
}

// TestModelFormValidationAndCancel verifies submit errors keep the form open and esc closes it.
func TestModelFormValidationAndCancel(t *testing.T) {
	m, svc := newTestModel(t)

	m = applyMsg(t, m, keyRune('n'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "Could not create: title is required" {
		t.Fatalf("unexpected validation status %q", m.status)
	}
	if _, ok := m.mode.(creatingMode); !ok {
		t.Fatalf("expected form to stay open, got %T", m.mode)
	}

	m = typeText(t, m, "Echo")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	m = typeText(t, m, "tomorrow")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModCtrl})
	if !strings.HasPrefix(m.status, "Could not create: invalid date format") {
		t.Fatalf("unexpected due status %q", m.status)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.status != "Canceled" {
		t.Fatalf("unexpected cancel status %q", m.status)
	}
	if _, ok := m.mode.(normalMode); !ok {
		t.Fatalf("expected normal mode, got %T", m.mode)
	}
	if len(m.board.Notes) != 3 || svc.saves != 0 {
		t.Fatalf("expected no change, notes=%d saves=%d", len(m.board.Notes), svc.saves)
	}
}

// TestModelEditNote verifies the edit form is prefilled and rewrites the note.
func TestModelEditNote(t *testing.T) {
	m, svc := newTestModel(t)

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('e'))
	md, ok := m.mode.(editingMode)
	if !ok || m.status != "Editing b" {
		t.Fatalf("expected editing b, got %T %q", m.mode, m.status)
	}
	if md.form.value(fieldTitle) != "Bravo" {
		t.Fatalf("expected prefilled title, got %q", md.form.value(fieldTitle))
	}

	for range len("Bravo") {
		m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyBackspace})
	}
	m = typeText(t, m, "Beta")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModAlt})
	if m.status != "Updated b" {
		t.Fatalf("unexpected edit status %q", m.status)
	}
	note, _ := m.board.Note("b")
	if note.Title != "Beta" || !note.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected edited note %#v", note)
	}
	if svc.saves != 1 {
		t.Fatalf("expected one save, got %d", svc.saves)
	}
}

// TestModelEditVanishedNote verifies submitting an edit for a removed note closes the form.
func TestModelEditVanishedNote(t *testing.T) {
	m, _ := newTestModel(t)

	m = applyMsg(t, m, keyRune('e'))
	if err := m.board.DeleteNote("a"); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "Note a no longer exists" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if _, ok := m.mode.(normalMode); !ok {
		t.Fatalf("expected normal mode, got %T", m.mode)
	}
}

// TestModelDeleteConfirm verifies cancel and confirm paths of the delete prompt.
func TestModelDeleteConfirm(t *testing.T) {
	m, svc := newTestModel(t)

	m = applyMsg(t, m, keyRune('d'))
	if m.status != "Delete a? (y to confirm, n/Esc to cancel)" {
		t.Fatalf("unexpected prompt status %q", m.status)
	}
	if !strings.Contains(plainView(m), `Delete "Alpha"?`) {
		t.Fatal("expected confirm overlay in view")
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.status != "Delete canceled" {
		t.Fatalf("unexpected cancel status %q", m.status)
	}
	if _, ok := m.board.Note("a"); !ok {
		t.Fatal("expected a to survive cancel")
	}

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if m.status != "Deleted b" {
		t.Fatalf("unexpected delete status %q", m.status)
	}
	if _, ok := m.board.Note("b"); ok {
		t.Fatal("expected b deleted")
	}
	if m.boardNav.note != 0 {
		t.Fatalf("expected note index clamped to 0, got %d", m.boardNav.note)
	}
	if svc.saves != 1 {
		t.Fatalf("expected one save, got %d", svc.saves)
	}

	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('d'))
	if m.status != "No note selected to delete" {
		t.Fatalf("unexpected empty delete status %q", m.status)
	}
}

// TestModelSaveFailureKeepsChange verifies a failed save reports and keeps the in-memory edit.
func TestModelSaveFailureKeepsChange(t *testing.T) {
	m, svc := newTestModel(t)
	svc.err = errors.New("disk full")

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "Save failed: disk full" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if _, ok := m.board.Note("a"); ok {
		t.Fatal("expected delete to remain applied in memory")
	}
	if !m.lastSave.Equal(testNow) {
		t.Fatalf("expected last save unchanged, got %v", m.lastSave)
	}
}

// TestModelTimelineNavigation verifies focus cycling, list clamping, and calendar jumps.
func TestModelTimelineNavigation(t *testing.T) {
	m, _ := newTestModel(t)

	m = applyMsg(t, m, keyRune('2'))
	if m.status != "Switched to Timeline view" {
		t.Fatalf("unexpected view status %q", m.status)
	}
	if m.timeline.focus != focusAssigned {
		t.Fatalf("expected assigned focus, got %d", m.timeline.focus)
	}
	if !m.timeline.cursor.Equal(time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected cursor on earliest due day, got %v", m.timeline.cursor)
	}
	if ref, _ := m.currentNote(); ref.id != "c" {
		t.Fatalf("expected c first in assigned list, got %q", ref.id)
	}

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	if m.timeline.assigned != 1 {
		t.Fatalf("expected assigned index clamped to 1, got %d", m.timeline.assigned)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	if m.timeline.focus != focusUnassigned {
		t.Fatalf("expected left to focus unassigned, got %d", m.timeline.focus)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	if m.timeline.focus != focusUnassigned {
		t.Fatalf("expected left on unassigned to do nothing, got %d", m.timeline.focus)
	}
	if ref, _ := m.currentNote(); ref.id != "b" {
		t.Fatalf("expected b in unassigned list, got %q", ref.id)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if m.timeline.focus != focusCalendar {
		t.Fatalf("expected shift+tab to wrap to calendar, got %d", m.timeline.focus)
	}
	if _, ok := m.currentNote(); ok {
		t.Fatal("expected no note selected with calendar focus")
	}
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "Viewing tasks due 2026-02-23" {
		t.Fatalf("unexpected jump status %q", m.status)
	}
	if m.timeline.focus != focusAssigned || m.timeline.assigned != 1 {
		t.Fatalf("expected jump to a, got %#v", m.timeline)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = applyMsg(t, m, keyRune('j'))
	if !m.timeline.cursor.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected cursor one week later, got %v", m.timeline.cursor)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "No tasks due on that day" {
		t.Fatalf("unexpected empty jump status %q", m.status)
	}

	m = applyMsg(t, m, keyRune('2'))
	if m.status != "No tasks due on that day" {
		t.Fatalf("expected same-view switch to keep status, got %q", m.status)
	}
}

// TestModelProjectBounds verifies project selections are re-clamped after deletes.
func TestModelProjectBounds(t *testing.T) {
	m, _ := newTestModel(t)

	m = applyMsg(t, m, keyRune('3'))
	if m.project.focus != focusTags {
		t.Fatalf("expected tags focus, got %d", m.project.focus)
	}
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	if m.project.tag != 2 {
		t.Fatalf("expected tag index clamped to 2, got %d", m.project.tag)
	}
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('j'))
	if ref, ok := m.currentNote(); !ok || ref.id != "c" {
		t.Fatalf("expected c selected under work, got %#v", ref)
	}

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if m.project.note != 0 || m.project.focus != focusTagNotes {
		t.Fatalf("expected note clamped within work, got %#v", m.project)
	}
	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	buckets := projectBuckets(m.board)
	if len(buckets) != 1 || buckets[0].tag != untaggedBucket {
		t.Fatalf("unexpected buckets %#v", buckets)
	}
	if m.project.tag != 0 {
		t.Fatalf("expected tag clamped to 0, got %d", m.project.tag)
	}

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if m.project.focus != focusTags {
		t.Fatalf("expected empty board to force tags focus, got %d", m.project.focus)
	}
	m = applyMsg(t, m, keyRune('l'))
	if m.project.focus != focusTags {
		t.Fatalf("expected notes focus to be refused, got %d", m.project.focus)
	}
	if !strings.Contains(plainView(m), "No tags yet") {
		t.Fatal("expected empty tag list text")
	}
}

// TestModelCopyID verifies note ids are written to the clipboard.
func TestModelCopyID(t *testing.T) {
	var copied string
	prev := clipboardWrite
	t.Cleanup(func() { clipboardWrite = prev })
	clipboardWrite = func(text string) error {
		copied = text
		return nil
	}

	m, _ := newTestModel(t)
	m = applyMsg(t, m, keyRune('y'))
	if copied != "a" || m.status != "Copied a" {
		t.Fatalf("expected a copied, got %q status %q", copied, m.status)
	}

	clipboardWrite = func(string) error { return errors.New("no clipboard") }
	m = applyMsg(t, m, keyRune('y'))
	if m.status != "Copy failed: no clipboard" {
		t.Fatalf("unexpected copy failure status %q", m.status)
	}
}

// plainView renders m without styling so assertions only see text.
func plainView(m Model) string {
	return ansi.Strip(m.render())
}

// TestModelViewRendersEachView verifies board, timeline, and project text.
func TestModelViewRendersEachView(t *testing.T) {
	m, _ := newTestModel(t)

	board := plainView(m)
	for _, want := range []string{"postit", "work", "saved 0s ago", "view board", "To Do [todo] (2)", "Doing [doing] (1 / 1)", "Alpha", "due 2026.02.23@10:00", "#home #work", "Selected"} {
		if !strings.Contains(board, want) {
			t.Fatalf("expected board view to contain %q\n%s", want, board)
		}
	}

	m = applyMsg(t, m, keyRune('2'))
	timeline := plainView(m)
	for _, want := range []string{"Unassigned Tasks (1)", "Assigned Tasks (2)", "[c] Charlie  2026-02-22", "Calendar", "February 2026", "22( 1)"} {
		if !strings.Contains(timeline, want) {
			t.Fatalf("expected timeline view to contain %q\n%s", want, timeline)
		}
	}

	m = applyMsg(t, m, keyRune('3'))
	project := plainView(m)
	for _, want := range []string{"Project Tags", "work (2)", "(untagged) (1)", "Tagged Tasks", "[b] Bravo  (no tags)"} {
		if !strings.Contains(project, want) {
			t.Fatalf("expected project view to contain %q\n%s", want, project)
		}
	}

	m = applyMsg(t, m, keyRune('n'))
	form := plainView(m)
	for _, want := range []string{"New Task", "Due (YYYY.MM.DD@hh:mm)", caretMarker} {
		if !strings.Contains(form, want) {
			t.Fatalf("expected form overlay to contain %q", want)
		}
	}
}

// TestModelViewBeforeResize verifies the placeholder before the first window size.
func TestModelViewBeforeResize(t *testing.T) {
	m := NewModel(&fakeService{now: testNow}, newTestBoard(t), testLocation)
	if got := plainView(m); got != "loading..." {
		t.Fatalf("unexpected pre-ready view %q", got)
	}
}

// TestModelOptions verifies options shape the initial model.
func TestModelOptions(t *testing.T) {
	m, _ := newTestModel(t, WithDefaultView("timeline"), WithHelpExpanded(true), WithTickInterval(time.Second), WithMarkdown(true))
	if m.view != viewTimeline || !m.help.ShowAll || m.tickInterval != time.Second || !m.renderMarkdown {
		t.Fatalf("unexpected options result %#v", m)
	}
	m = applyMsg(t, m, keyRune('?'))
	if m.help.ShowAll {
		t.Fatal("expected ? to collapse help")
	}
}

// TestModelQuitKey verifies q quits from normal mode only.
func TestModelQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}

	m = applyMsg(t, m, keyRune('n'))
	_, cmd = m.Update(keyRune('q'))
	if cmd != nil {
		t.Fatal("expected q to type into the form")
	}
}

// TestFormatElapsed verifies save ages switch units.
func TestFormatElapsed(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Second:     "0s",
		42 * time.Second: "42s",
		3 * time.Minute:  "3m",
		5 * time.Hour:    "5h",
	}
	for in, want := range cases {
		if got := formatElapsed(in); got != want {
			t.Fatalf("formatElapsed(%v) = %q, want %q", in, got, want)
		}
	}
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}
