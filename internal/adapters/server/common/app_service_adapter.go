package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DamynChipman/postit/internal/app"
	"github.com/DamynChipman/postit/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service for one board location.
type AppServiceAdapter struct {
	service *app.Service
	loc     domain.BoardLocation
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service, loc domain.BoardLocation) *AppServiceAdapter {
	return &AppServiceAdapter{service: service, loc: loc}
}

// GetBoard returns the full board with a deterministic state hash.
func (a *AppServiceAdapter) GetBoard(ctx context.Context) (BoardSnapshot, error) {
	if err := a.ready(); err != nil {
		return BoardSnapshot{}, err
	}
	board, err := a.service.OpenBoard(ctx, a.loc)
	if err != nil {
		return BoardSnapshot{}, mapAppError("get board", err)
	}
	out := BoardSnapshot{
		Name:    board.Name,
		Scope:   string(a.loc.Scope),
		Path:    a.loc.Path,
		Columns: make([]ColumnView, 0, len(board.Columns)),
	}
	for idx, column := range board.Columns {
		notes := board.ColumnNotes(idx)
		view := ColumnView{
			ID:       column.ID,
			Name:     column.Name,
			WIPLimit: column.WIPLimit,
			Count:    len(notes),
			Notes:    make([]NoteView, 0, len(notes)),
		}
		for _, note := range notes {
			view.Notes = append(view.Notes, mapNote(note, column.ID))
		}
		out.Columns = append(out.Columns, view)
	}
	hash, err := computeBoardHash(out)
	if err != nil {
		return BoardSnapshot{}, err
	}
	out.StateHash = hash
	return out, nil
}

// ListNotes lists notes in board order, optionally limited to one column.
func (a *AppServiceAdapter) ListNotes(ctx context.Context, columnID string) ([]NoteView, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	columns, err := a.service.ListColumns(ctx, a.loc, strings.TrimSpace(columnID))
	if err != nil {
		return nil, mapAppError("list notes", err)
	}
	out := []NoteView{}
	for _, column := range columns {
		for _, note := range column.Notes {
			out = append(out, mapNote(note, column.Column.ID))
		}
	}
	return out, nil
}

// AddNote creates one note.
func (a *AppServiceAdapter) AddNote(ctx context.Context, in AddNoteRequest) (NoteView, error) {
	if err := a.ready(); err != nil {
		return NoteView{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return NoteView{}, fmt.Errorf("add note: title is required: %w", ErrInvalidRequest)
	}
	note, columnID, err := a.service.AddNote(ctx, a.loc, app.AddNoteInput{
		Title:    in.Title,
		Body:     in.Body,
		Tags:     normalizeTags(in.Tags),
		ColumnID: in.ColumnID,
		Due:      in.Due,
	})
	if err != nil {
		return NoteView{}, mapAppError("add note", err)
	}
	return mapNote(note, columnID), nil
}

// MoveNote moves one note to another column.
func (a *AppServiceAdapter) MoveNote(ctx context.Context, in MoveNoteRequest) (NoteView, error) {
	if err := a.ready(); err != nil {
		return NoteView{}, err
	}
	in.ID = strings.TrimSpace(in.ID)
	in.ColumnID = strings.TrimSpace(in.ColumnID)
	if in.ID == "" || in.ColumnID == "" {
		return NoteView{}, fmt.Errorf("move note: id and column_id are required: %w", ErrInvalidRequest)
	}
	note, err := a.service.MoveNote(ctx, a.loc, in.ID, in.ColumnID)
	if err != nil {
		return NoteView{}, mapAppError("move note", err)
	}
	return mapNote(note, in.ColumnID), nil
}

// EditNote applies a partial update to one note.
func (a *AppServiceAdapter) EditNote(ctx context.Context, in EditNoteRequest) (NoteView, error) {
	if err := a.ready(); err != nil {
		return NoteView{}, err
	}
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return NoteView{}, fmt.Errorf("edit note: id is required: %w", ErrInvalidRequest)
	}
	note, err := a.service.EditNote(ctx, a.loc, app.EditNoteInput{
		ID:        in.ID,
		Title:     in.Title,
		Body:      in.Body,
		Tags:      normalizeTags(in.Tags),
		ClearTags: in.ClearTags,
		Due:       in.Due,
		ClearDue:  in.ClearDue,
		ColumnID:  in.ColumnID,
	})
	if err != nil {
		return NoteView{}, mapAppError("edit note", err)
	}
	_, columnID, err := a.service.GetNote(ctx, a.loc, note.ID)
	if err != nil {
		return NoteView{}, mapAppError("edit note", err)
	}
	return mapNote(note, columnID), nil
}

// DeleteNote removes one note.
func (a *AppServiceAdapter) DeleteNote(ctx context.Context, noteID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	noteID = strings.TrimSpace(noteID)
	if noteID == "" {
		return fmt.Errorf("delete note: id is required: %w", ErrInvalidRequest)
	}
	if err := a.service.DeleteNote(ctx, a.loc, noteID); err != nil {
		return mapAppError("delete note", err)
	}
	return nil
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured")
	}
	return nil
}

func mapNote(note domain.Note, columnID string) NoteView {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	out := NoteView{
		ID:        note.ID,
		Title:     note.Title,
		Body:      note.Body,
		Tags:      tags,
		ColumnID:  columnID,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
		Due:       note.Due,
	}
	if note.Due != nil {
		out.DueText = domain.FormatDue(*note.Due)
	}
	return out
}

// normalizeTags drops blank entries and splits comma or space separated values.
func normalizeTags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		out = append(out, domain.ParseTags(raw)...)
	}
	return out
}

// computeBoardHash computes a deterministic hash over board content.
func computeBoardHash(snapshot BoardSnapshot) (string, error) {
	snapshot.StateHash = ""
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal board snapshot: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrNoteNotFound),
		errors.Is(err, domain.ErrColumnNotFound),
		errors.Is(err, app.ErrBoardNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrWIPLimitReached),
		errors.Is(err, domain.ErrNoteExists),
		errors.Is(err, domain.ErrNoteLocationMissing):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidDue),
		errors.Is(err, domain.ErrInvalidWIPLimit),
		errors.Is(err, domain.ErrNoColumns),
		errors.Is(err, app.ErrInvalidInput):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
