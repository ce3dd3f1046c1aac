package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
)

// DueLayout is the textual due-date format accepted by forms and the CLI.
const DueLayout = "2006.01.02@15:04"

type Note struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
	Due       *time.Time
}

type NoteInput struct {
	ID    string
	Title string
	Body  string
	Tags  []string
	Due   *time.Time
}

func NewNote(in NoteInput, now time.Time) (Note, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" {
		return Note{}, ErrInvalidID
	}
	if in.Title == "" {
		return Note{}, ErrInvalidTitle
	}

	return Note{
		ID:        in.ID,
		Title:     in.Title,
		Body:      NormalizeBody(in.Body),
		Tags:      slices.Clone(in.Tags),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Due:       normalizeDue(in.Due),
	}, nil
}

// HasBody reports whether the note carries a body.
func (n Note) HasBody() bool {
	return n.Body != ""
}

// NormalizeBody maps blank bodies to the empty value and keeps everything else verbatim.
func NormalizeBody(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return raw
}

// ParseTags splits raw input on whitespace or commas, keeping order and duplicates.
func ParseTags(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ParseDue parses a YYYY.MM.DD@hh:mm value as UTC; blank input means no due date.
func ParseDue(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	ts, err := time.ParseInLocation(DueLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDue, raw)
	}
	return &ts, nil
}

// FormatDue renders a due date in the input layout.
func FormatDue(due time.Time) string {
	return due.UTC().Format(DueLayout)
}

func normalizeDue(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	ts := due.UTC()
	return &ts
}
