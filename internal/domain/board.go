package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Board represents board data used by this package.
type Board struct {
	Name    string
	Columns []Column
	Notes   map[string]Note
}

// DefaultColumns returns the column template used for new boards.
func DefaultColumns() []Column {
	return []Column{
		{ID: "todo", Name: "To Do", NoteIDs: []string{}},
		{ID: "doing", Name: "Doing", NoteIDs: []string{}},
		{ID: "waiting", Name: "Waiting", NoteIDs: []string{}},
		{ID: "done", Name: "Done", NoteIDs: []string{}},
	}
}

// NewBoard constructs an empty board with copies of the given columns.
func NewBoard(name string, columns []Column) Board {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}
	cols := make([]Column, 0, len(columns))
	for _, column := range columns {
		column.NoteIDs = []string{}
		cols = append(cols, column)
	}
	return Board{
		Name:    name,
		Columns: cols,
		Notes:   map[string]Note{},
	}
}

// DefaultBoard constructs an empty board with the default columns.
func DefaultBoard(name string) Board {
	return NewBoard(name, DefaultColumns())
}

// ColumnIndex returns the first column whose id matches.
func (b *Board) ColumnIndex(columnID string) (int, bool) {
	for idx := range b.Columns {
		if b.Columns[idx].ID == columnID {
			return idx, true
		}
	}
	return 0, false
}

// NoteColumnIndex returns the first column holding the note id.
func (b *Board) NoteColumnIndex(noteID string) (int, bool) {
	for idx := range b.Columns {
		if b.Columns[idx].Contains(noteID) {
			return idx, true
		}
	}
	return 0, false
}

// Note returns one note by id.
func (b *Board) Note(noteID string) (Note, bool) {
	note, ok := b.Notes[noteID]
	return note, ok
}

// ColumnNotes returns the notes of one column in display order.
func (b *Board) ColumnNotes(idx int) []Note {
	if idx < 0 || idx >= len(b.Columns) {
		return nil
	}
	out := make([]Note, 0, len(b.Columns[idx].NoteIDs))
	for _, id := range b.Columns[idx].NoteIDs {
		if note, ok := b.Notes[id]; ok {
			out = append(out, note)
		}
	}
	return out
}

// AddNote places a new note at the end of a column.
func (b *Board) AddNote(note Note, columnID string) error {
	if strings.TrimSpace(note.ID) == "" {
		return ErrInvalidID
	}
	idx, ok := b.ColumnIndex(columnID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, columnID)
	}
	if _, exists := b.Notes[note.ID]; exists {
		return fmt.Errorf("%w: %s", ErrNoteExists, note.ID)
	}
	if b.Columns[idx].Full() {
		return fmt.Errorf("%w: %s", ErrWIPLimitReached, columnID)
	}
	if b.Notes == nil {
		b.Notes = map[string]Note{}
	}
	b.Notes[note.ID] = note
	b.Columns[idx].NoteIDs = append(b.Columns[idx].NoteIDs, note.ID)
	return nil
}

// MoveNote appends a note to the destination column and removes it from its source.
func (b *Board) MoveNote(noteID, columnID string, now time.Time) error {
	if _, ok := b.Notes[noteID]; !ok {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, noteID)
	}
	dest, ok := b.ColumnIndex(columnID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, columnID)
	}
	src, ok := b.NoteColumnIndex(noteID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoteLocationMissing, noteID)
	}
	if src == dest {
		return nil
	}
	if b.Columns[dest].Full() {
		return fmt.Errorf("%w: %s", ErrWIPLimitReached, columnID)
	}
	b.Columns[src].removeNote(noteID)
	b.Columns[dest].NoteIDs = append(b.Columns[dest].NoteIDs, noteID)
	return b.UpdateNote(noteID, func(*Note) {}, now)
}

// UpdateNote applies mutate to one note and stamps updated_at.
func (b *Board) UpdateNote(noteID string, mutate func(*Note), now time.Time) error {
	note, ok := b.Notes[noteID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, noteID)
	}
	if mutate != nil {
		mutate(&note)
	}
	// Identity is fixed at creation.
	note.ID = noteID
	note.UpdatedAt = now.UTC()
	b.Notes[noteID] = note
	return nil
}

// DeleteNote removes a note from its column and from the note map in one step.
func (b *Board) DeleteNote(noteID string) error {
	if _, ok := b.Notes[noteID]; !ok {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, noteID)
	}
	idx, ok := b.NoteColumnIndex(noteID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoteLocationMissing, noteID)
	}
	b.Columns[idx].removeNote(noteID)
	delete(b.Notes, noteID)
	return nil
}

// CheckIntegrity verifies column placements against the note map.
func (b *Board) CheckIntegrity() error {
	placed := map[string]string{}
	for _, column := range b.Columns {
		for _, id := range column.NoteIDs {
			if _, ok := b.Notes[id]; !ok {
				return fmt.Errorf("%w: %s (column %s)", ErrNoteNotFound, id, column.ID)
			}
			if prev, ok := placed[id]; ok {
				return fmt.Errorf("note %s placed in both %s and %s", id, prev, column.ID)
			}
			placed[id] = column.ID
		}
	}
	return nil
}

// SortedNoteIDs returns note ids in lexical order.
func (b *Board) SortedNoteIDs() []string {
	ids := make([]string, 0, len(b.Notes))
	for id := range b.Notes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
