// Package yamlfile persists boards as board.yml documents.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DamynChipman/postit/internal/app"
	"github.com/DamynChipman/postit/internal/domain"
	"gopkg.in/yaml.v3"
)

// Store reads and writes one yaml file per board location.
type Store struct{}

// NewStore constructs a new value for this package.
func NewStore() *Store {
	return &Store{}
}

type boardDoc struct {
	Name    string             `yaml:"name"`
	Columns []columnDoc        `yaml:"columns"`
	Notes   map[string]noteDoc `yaml:"notes"`
}

type columnDoc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// WIPLimit 0 and an absent key both load as unlimited. Files that
	// use wip_limit: 0 to close a column are not honored.
	WIPLimit int      `yaml:"wip_limit,omitempty"`
	NoteIDs  []string `yaml:"note_ids"`
}

type noteDoc struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	Body      string     `yaml:"body,omitempty"`
	Tags      []string   `yaml:"tags"`
	CreatedAt time.Time  `yaml:"created_at"`
	UpdatedAt time.Time  `yaml:"updated_at"`
	Due       *time.Time `yaml:"due,omitempty"`
}

// LoadBoard decodes the board file at loc.
func (s *Store) LoadBoard(_ context.Context, loc domain.BoardLocation) (domain.Board, error) {
	path := strings.TrimSpace(loc.Path)
	if path == "" {
		return domain.Board{}, errors.New("board path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Board{}, fmt.Errorf("%w: %s", app.ErrBoardNotFound, path)
		}
		return domain.Board{}, fmt.Errorf("read board: %w", err)
	}

	var doc boardDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return domain.Board{}, fmt.Errorf("decode board %s: %w", path, err)
	}
	return doc.toDomain(), nil
}

// SaveBoard encodes the board and writes it to loc, creating parent directories.
func (s *Store) SaveBoard(_ context.Context, loc domain.BoardLocation, board domain.Board) error {
	path := strings.TrimSpace(loc.Path)
	if path == "" {
		return errors.New("board path is required")
	}
	content, err := yaml.Marshal(fromDomain(board))
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create board dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	return nil
}

func fromDomain(board domain.Board) boardDoc {
	doc := boardDoc{
		Name:    board.Name,
		Columns: make([]columnDoc, 0, len(board.Columns)),
		Notes:   make(map[string]noteDoc, len(board.Notes)),
	}
	for _, column := range board.Columns {
		ids := column.NoteIDs
		if ids == nil {
			ids = []string{}
		}
		doc.Columns = append(doc.Columns, columnDoc{
			ID:       column.ID,
			Name:     column.Name,
			WIPLimit: column.WIPLimit,
			NoteIDs:  ids,
		})
	}
	for id, note := range board.Notes {
		tags := note.Tags
		if tags == nil {
			tags = []string{}
		}
		doc.Notes[id] = noteDoc{
			ID:        note.ID,
			Title:     note.Title,
			Body:      note.Body,
			Tags:      tags,
			CreatedAt: note.CreatedAt.UTC(),
			UpdatedAt: note.UpdatedAt.UTC(),
			Due:       note.Due,
		}
	}
	return doc
}

func (doc boardDoc) toDomain() domain.Board {
	board := domain.Board{
		Name:    doc.Name,
		Columns: make([]domain.Column, 0, len(doc.Columns)),
		Notes:   make(map[string]domain.Note, len(doc.Notes)),
	}
	for _, column := range doc.Columns {
		ids := column.NoteIDs
		if ids == nil {
			ids = []string{}
		}
		board.Columns = append(board.Columns, domain.Column{
			ID:       column.ID,
			Name:     column.Name,
			WIPLimit: column.WIPLimit,
			NoteIDs:  ids,
		})
	}
	for key, note := range doc.Notes {
		id := note.ID
		if id == "" {
			id = key
		}
		var due *time.Time
		if note.Due != nil {
			ts := note.Due.UTC()
			due = &ts
		}
		var tags []string
		if len(note.Tags) > 0 {
			tags = note.Tags
		}
		board.Notes[key] = domain.Note{
			ID:        id,
			Title:     note.Title,
			Body:      domain.NormalizeBody(note.Body),
			Tags:      tags,
			CreatedAt: note.CreatedAt.UTC(),
			UpdatedAt: note.UpdatedAt.UTC(),
			Due:       due,
		}
	}
	return board
}
