// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrConflict reports requests rejected by board state, such as a full column.
var ErrConflict = errors.New("conflict")

// NoteView is the transport representation of one note.
type NoteView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Tags      []string   `json:"tags"`
	ColumnID  string     `json:"column_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Due       *time.Time `json:"due,omitempty"`
	DueText   string     `json:"due_text,omitempty"`
}

// ColumnView is the transport representation of one column and its notes.
type ColumnView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	WIPLimit int        `json:"wip_limit,omitempty"`
	Count    int        `json:"count"`
	Notes    []NoteView `json:"notes"`
}

// BoardSnapshot is the full-board bundle returned to HTTP and MCP callers.
type BoardSnapshot struct {
	Name      string       `json:"name"`
	Scope     string       `json:"scope"`
	Path      string       `json:"path"`
	StateHash string       `json:"state_hash"`
	Columns   []ColumnView `json:"columns"`
}

// AddNoteRequest captures input for new notes.
type AddNoteRequest struct {
	Title    string   `json:"title"`
	Body     string   `json:"body,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	ColumnID string   `json:"column_id,omitempty"`
	Due      string   `json:"due,omitempty"`
}

// MoveNoteRequest captures input for moving one note.
type MoveNoteRequest struct {
	ID       string `json:"id"`
	ColumnID string `json:"column_id"`
}

// EditNoteRequest captures a partial note update. Nil fields are left unchanged.
type EditNoteRequest struct {
	ID        string   `json:"id"`
	Title     *string  `json:"title,omitempty"`
	Body      *string  `json:"body,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	ClearTags bool     `json:"clear_tags,omitempty"`
	Due       *string  `json:"due,omitempty"`
	ClearDue  bool     `json:"clear_due,omitempty"`
	ColumnID  *string  `json:"column_id,omitempty"`
}

// NoteService captures board operations exposed by transports.
type NoteService interface {
	GetBoard(context.Context) (BoardSnapshot, error)
	ListNotes(context.Context, string) ([]NoteView, error)
	AddNote(context.Context, AddNoteRequest) (NoteView, error)
	MoveNote(context.Context, MoveNoteRequest) (NoteView, error)
	EditNote(context.Context, EditNoteRequest) (NoteView, error)
	DeleteNote(context.Context, string) error
}
