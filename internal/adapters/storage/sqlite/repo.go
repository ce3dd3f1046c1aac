package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DamynChipman/postit/internal/app"
	"github.com/DamynChipman/postit/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// unplacedColumn marks note rows that no column references.
const unplacedColumn = -1

// Repository stores whole boards in sqlite, keyed by board file path.
type Repository struct {
	db    *sql.DB
	clock func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db, clock: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// A shared in-memory database lives as long as one connection does.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db, clock: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS boards (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			scope TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			board_path TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			wip_limit INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(board_path, position),
			FOREIGN KEY(board_path) REFERENCES boards(path) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			board_path TEXT NOT NULL,
			id TEXT NOT NULL,
			column_id TEXT NOT NULL DEFAULT '',
			column_position INTEGER NOT NULL DEFAULT -1,
			position INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			due_at TEXT,
			PRIMARY KEY(board_path, id),
			FOREIGN KEY(board_path) REFERENCES boards(path) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_board_column ON notes(board_path, column_position, position);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadBoard rebuilds one board from its rows.
func (r *Repository) LoadBoard(ctx context.Context, loc domain.BoardLocation) (domain.Board, error) {
	path := boardKey(loc)
	var name string
	row := r.db.QueryRowContext(ctx, `SELECT name FROM boards WHERE path = ?`, path)
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, fmt.Errorf("%w: %s", app.ErrBoardNotFound, path)
		}
		return domain.Board{}, fmt.Errorf("load board: %w", err)
	}

	board := domain.Board{Name: name, Columns: []domain.Column{}, Notes: map[string]domain.Note{}}
	colRows, err := r.db.QueryContext(ctx, `
		SELECT id, name, wip_limit
		FROM board_columns
		WHERE board_path = ?
		ORDER BY position ASC
	`, path)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load columns: %w", err)
	}
	defer colRows.Close()
	for colRows.Next() {
		column := domain.Column{NoteIDs: []string{}}
		if err := colRows.Scan(&column.ID, &column.Name, &column.WIPLimit); err != nil {
			return domain.Board{}, fmt.Errorf("scan column: %w", err)
		}
		board.Columns = append(board.Columns, column)
	}
	if err := colRows.Err(); err != nil {
		return domain.Board{}, fmt.Errorf("load columns: %w", err)
	}

	noteRows, err := r.db.QueryContext(ctx, `
		SELECT id, column_position, title, body, tags_json, created_at, updated_at, due_at
		FROM notes
		WHERE board_path = ?
		ORDER BY column_position ASC, position ASC
	`, path)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		note, columnPos, err := scanNote(noteRows)
		if err != nil {
			return domain.Board{}, err
		}
		board.Notes[note.ID] = note
		if columnPos >= 0 && columnPos < len(board.Columns) {
			board.Columns[columnPos].NoteIDs = append(board.Columns[columnPos].NoteIDs, note.ID)
		}
	}
	if err := noteRows.Err(); err != nil {
		return domain.Board{}, fmt.Errorf("load notes: %w", err)
	}
	return board, nil
}

// SaveBoard replaces every row of one board in a single transaction.
func (r *Repository) SaveBoard(ctx context.Context, loc domain.BoardLocation, board domain.Board) (err error) {
	path := boardKey(loc)
	if path == "" {
		return errors.New("board path is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO boards(path, name, scope, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			scope = excluded.scope,
			updated_at = excluded.updated_at
	`, path, board.Name, string(loc.Scope), ts(r.clock()))
	if err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_columns WHERE board_path = ?`, path); err != nil {
		return fmt.Errorf("clear columns: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM notes WHERE board_path = ?`, path); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}

	placed := map[string]struct{}{}
	for colPos, column := range board.Columns {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO board_columns(board_path, position, id, name, wip_limit)
			VALUES(?, ?, ?, ?, ?)
		`, path, colPos, column.ID, column.Name, column.WIPLimit)
		if err != nil {
			return fmt.Errorf("save column %s: %w", column.ID, err)
		}
		for notePos, noteID := range column.NoteIDs {
			note, ok := board.Notes[noteID]
			if !ok {
				continue
			}
			if err = insertNote(ctx, tx, path, note, column.ID, colPos, notePos); err != nil {
				return err
			}
			placed[noteID] = struct{}{}
		}
	}
	for _, noteID := range board.SortedNoteIDs() {
		if _, ok := placed[noteID]; ok {
			continue
		}
		if err = insertNote(ctx, tx, path, board.Notes[noteID], "", unplacedColumn, 0); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// execerContext is the subset of *sql.Tx used by row writers.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(...any) error
}

func insertNote(ctx context.Context, execer execerContext, path string, note domain.Note, columnID string, columnPos, position int) error {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = execer.ExecContext(ctx, `
		INSERT INTO notes(board_path, id, column_id, column_position, position, title, body, tags_json, created_at, updated_at, due_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, path, note.ID, columnID, columnPos, position, note.Title, note.Body, string(tagsJSON), ts(note.CreatedAt), ts(note.UpdatedAt), nullableTS(note.Due))
	if err != nil {
		return fmt.Errorf("save note %s: %w", note.ID, err)
	}
	return nil
}

func scanNote(s scanner) (domain.Note, int, error) {
	var (
		note       domain.Note
		columnPos  int
		tagsRaw    string
		createdRaw string
		updatedRaw string
		dueRaw     sql.NullString
	)
	if err := s.Scan(&note.ID, &columnPos, &note.Title, &note.Body, &tagsRaw, &createdRaw, &updatedRaw, &dueRaw); err != nil {
		return domain.Note{}, 0, fmt.Errorf("scan note: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsRaw), &note.Tags); err != nil {
		return domain.Note{}, 0, fmt.Errorf("decode tags for note %s: %w", note.ID, err)
	}
	if len(note.Tags) == 0 {
		note.Tags = nil
	}
	note.CreatedAt = parseTS(createdRaw)
	note.UpdatedAt = parseTS(updatedRaw)
	note.Due = parseNullTS(dueRaw)
	return note, columnPos, nil
}

func boardKey(loc domain.BoardLocation) string {
	path := strings.TrimSpace(loc.Path)
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
