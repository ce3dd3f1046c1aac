package domain

import (
	"slices"
	"strings"
)

// Column represents column data used by this package.
type Column struct {
	ID       string
	Name     string
	WIPLimit int
	NoteIDs  []string
}

// NewColumn constructs a new value for this package.
func NewColumn(id, name string, wipLimit int) (Column, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if wipLimit < 0 {
		return Column{}, ErrInvalidWIPLimit
	}
	return Column{
		ID:       id,
		Name:     name,
		WIPLimit: wipLimit,
		NoteIDs:  []string{},
	}, nil
}

// HasLimit reports whether the column caps its note count.
func (c Column) HasLimit() bool {
	return c.WIPLimit > 0
}

// Full reports whether one more note would exceed the wip limit.
func (c Column) Full() bool {
	return c.HasLimit() && len(c.NoteIDs) >= c.WIPLimit
}

// Contains reports whether the note id is placed in this column.
func (c Column) Contains(noteID string) bool {
	return slices.Contains(c.NoteIDs, noteID)
}

func (c *Column) removeNote(noteID string) {
	c.NoteIDs = slices.DeleteFunc(c.NoteIDs, func(id string) bool {
		return id == noteID
	})
}
