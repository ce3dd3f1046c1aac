package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DamynChipman/postit/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	ColumnTemplates []ColumnTemplate
}

// ColumnTemplate describes one column created on new boards.
type ColumnTemplate struct {
	ID       string
	Name     string
	WIPLimit int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	store     BoardStore
	idGen     IDGenerator
	clock     Clock
	templates []ColumnTemplate
}

// NewService constructs a new value for this package.
func NewService(store BoardStore, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = NewShortID
	}
	if clock == nil {
		clock = time.Now
	}
	templates := sanitizeColumnTemplates(cfg.ColumnTemplates)
	if len(templates) == 0 {
		templates = defaultColumnTemplates()
	}
	return &Service{
		store:     store,
		idGen:     idGen,
		clock:     clock,
		templates: templates,
	}
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time {
	return s.clock()
}

// NewID returns a fresh note id from the configured generator.
func (s *Service) NewID() string {
	return s.idGen()
}

// NewBoard builds an empty board from the configured column template.
func (s *Service) NewBoard(name string) domain.Board {
	columns := make([]domain.Column, 0, len(s.templates))
	for _, tmpl := range s.templates {
		columns = append(columns, domain.Column{ID: tmpl.ID, Name: tmpl.Name, WIPLimit: tmpl.WIPLimit})
	}
	return domain.NewBoard(name, columns)
}

// OpenBoard loads the board at loc, creating and saving the default board when none exists.
func (s *Service) OpenBoard(ctx context.Context, loc domain.BoardLocation) (domain.Board, error) {
	board, err := s.store.LoadBoard(ctx, loc)
	if err == nil {
		return board, nil
	}
	if !errors.Is(err, ErrBoardNotFound) {
		return domain.Board{}, err
	}
	board = s.NewBoard(loc.DefaultBoardName())
	if err := s.store.SaveBoard(ctx, loc, board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// InitBoard creates a board at loc unless one already exists. It reports whether a board was created.
func (s *Service) InitBoard(ctx context.Context, loc domain.BoardLocation, name string) (domain.Board, bool, error) {
	board, err := s.store.LoadBoard(ctx, loc)
	if err == nil {
		return board, false, nil
	}
	if !errors.Is(err, ErrBoardNotFound) {
		return domain.Board{}, false, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = loc.DefaultBoardName()
	}
	board = s.NewBoard(name)
	if err := s.store.SaveBoard(ctx, loc, board); err != nil {
		return domain.Board{}, false, err
	}
	return board, true, nil
}

// SaveBoard persists the full board.
func (s *Service) SaveBoard(ctx context.Context, loc domain.BoardLocation, board domain.Board) error {
	return s.store.SaveBoard(ctx, loc, board)
}

// ColumnNotes pairs one column with its notes in display order.
type ColumnNotes struct {
	Column domain.Column
	Notes  []domain.Note
}

// ListColumns returns columns in board order, optionally filtered to one column id.
func (s *Service) ListColumns(ctx context.Context, loc domain.BoardLocation, columnID string) ([]ColumnNotes, error) {
	board, err := s.OpenBoard(ctx, loc)
	if err != nil {
		return nil, err
	}
	columnID = strings.TrimSpace(columnID)
	out := make([]ColumnNotes, 0, len(board.Columns))
	for idx, column := range board.Columns {
		if columnID != "" && column.ID != columnID {
			continue
		}
		out = append(out, ColumnNotes{Column: column, Notes: board.ColumnNotes(idx)})
	}
	if columnID != "" && len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrColumnNotFound, columnID)
	}
	return out, nil
}

// GetNote returns one note and the id of the column holding it.
func (s *Service) GetNote(ctx context.Context, loc domain.BoardLocation, noteID string) (domain.Note, string, error) {
	board, err := s.OpenBoard(ctx, loc)
	if err != nil {
		return domain.Note{}, "", err
	}
	note, ok := board.Note(noteID)
	if !ok {
		return domain.Note{}, "", fmt.Errorf("%w: %s", domain.ErrNoteNotFound, noteID)
	}
	columnID := ""
	if idx, ok := board.NoteColumnIndex(noteID); ok {
		columnID = board.Columns[idx].ID
	}
	return note, columnID, nil
}

// AddNoteInput holds input values for add note operations.
type AddNoteInput struct {
	Title    string
	Body     string
	Tags     []string
	ColumnID string
	Due      string
}

// AddNote creates a note in the requested column, or the first column when none is given.
func (s *Service) AddNote(ctx context.Context, loc domain.BoardLocation, in AddNoteInput) (domain.Note, string, error) {
	due, err := domain.ParseDue(in.Due)
	if err != nil {
		return domain.Note{}, "", err
	}
	board, err := s.OpenBoard(ctx, loc)
	if err != nil {
		return domain.Note{}, "", err
	}
	columnID := strings.TrimSpace(in.ColumnID)
	if columnID == "" {
		if len(board.Columns) == 0 {
			return domain.Note{}, "", domain.ErrNoColumns
		}
		columnID = board.Columns[0].ID
	}
	note, err := domain.NewNote(domain.NoteInput{
		ID:    s.idGen(),
		Title: in.Title,
		Body:  in.Body,
		Tags:  in.Tags,
		Due:   due,
	}, s.clock())
	if err != nil {
		return domain.Note{}, "", err
	}
	if err := board.AddNote(note, columnID); err != nil {
		return domain.Note{}, "", err
	}
	if err := s.store.SaveBoard(ctx, loc, board); err != nil {
		return domain.Note{}, "", err
	}
	return note, columnID, nil
}

// MoveNote moves a note to another column and saves the board.
func (s *Service) MoveNote(ctx context.Context, loc domain.BoardLocation, noteID, columnID string) (domain.Note, error) {
	board, err := s.OpenBoard(ctx, loc)
	if err != nil {
		return domain.Note{}, err
	}
	if err := board.MoveNote(noteID, columnID, s.clock()); err != nil {
		return domain.Note{}, err
	}
	if err := s.store.SaveBoard(ctx, loc, board); err != nil {
		return domain.Note{}, err
	}
	note, _ := board.Note(noteID)
	return note, nil
}

// EditNoteInput holds input values for edit note operations. Nil pointers leave fields unchanged.
type EditNoteInput struct {
	ID        string
	Title     *string
	Body      *string
	Tags      []string
	ClearTags bool
	Due       *string
	ClearDue  bool
	ColumnID  *string
}

// EditNote patches the supplied fields, optionally moves the note, and saves the board.
func (s *Service) EditNote(ctx context.Context, loc domain.BoardLocation, in EditNoteInput) (domain.Note, error) {
	var due *time.Time
	if in.Due != nil {
		parsed, err := domain.ParseDue(*in.Due)
		if err != nil {
			return domain.Note{}, err
		}
		due = parsed
	}
	var title string
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.Note{}, domain.ErrInvalidTitle
		}
	}

	board, err := s.OpenBoard(ctx, loc)
	if err != nil {
		return domain.Note{}, err
	}
	now := s.clock()
	err = board.UpdateNote(in.ID, func(note *domain.Note) {
		if in.Title != nil {
			note.Title = title
		}
		if in.Body != nil {
			note.Body = domain.NormalizeBody(*in.Body)
		}
		if in.ClearTags {
			note.Tags = nil
		}
		if len(in.Tags) > 0 {
			note.Tags = append([]string(nil), in.Tags...)
		}
		if in.ClearDue {
			note.Due = nil
		}
		if due != nil {
			note.Due = due
		}
	}, now)
	if err != nil {
		return domain.Note{}, err
	}
	if in.ColumnID != nil && strings.TrimSpace(*in.ColumnID) != "" {
		if err := board.MoveNote(in.ID, strings.TrimSpace(*in.ColumnID), now); err != nil {
			return domain.Note{}, err
		}
	}
	if err := s.store.SaveBoard(ctx, loc, board); err != nil {
		return domain.Note{}, err
	}
	note, _ := board.Note(in.ID)
	return note, nil
}

// DeleteNote removes a note and saves the board.
func (s *Service) DeleteNote(ctx context.Context, loc domain.BoardLocation, noteID string) error {
	board, err := s.OpenBoard(ctx, loc)
	if err != nil {
		return err
	}
	if err := board.DeleteNote(noteID); err != nil {
		return err
	}
	return s.store.SaveBoard(ctx, loc, board)
}

func defaultColumnTemplates() []ColumnTemplate {
	columns := domain.DefaultColumns()
	out := make([]ColumnTemplate, 0, len(columns))
	for _, column := range columns {
		out = append(out, ColumnTemplate{ID: column.ID, Name: column.Name, WIPLimit: column.WIPLimit})
	}
	return out
}

// sanitizeColumnTemplates drops unnamed entries, derives missing ids, and skips duplicates.
func sanitizeColumnTemplates(in []ColumnTemplate) []ColumnTemplate {
	if len(in) == 0 {
		return nil
	}
	out := make([]ColumnTemplate, 0, len(in))
	seen := map[string]struct{}{}
	for _, tmpl := range in {
		tmpl.Name = strings.TrimSpace(tmpl.Name)
		tmpl.ID = strings.TrimSpace(strings.ToLower(tmpl.ID))
		if tmpl.Name == "" {
			continue
		}
		if tmpl.ID == "" {
			tmpl.ID = normalizeColumnID(tmpl.Name)
		}
		if _, ok := seen[tmpl.ID]; ok {
			continue
		}
		seen[tmpl.ID] = struct{}{}
		if tmpl.WIPLimit < 0 {
			tmpl.WIPLimit = 0
		}
		out = append(out, tmpl)
	}
	return out
}

// normalizeColumnID derives a column id from a display name.
func normalizeColumnID(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
