package tui

import (
	"strings"
	"time"

	"github.com/DamynChipman/postit/internal/domain"
)

// formField identifies one field of the note form.
type formField int

// fieldTitle and related constants define the fixed focus order.
const (
	fieldTitle formField = iota
	fieldBody
	fieldTags
	fieldDue
	formFieldCount
)

// label returns the form label for the field.
func (f formField) label() string {
	switch f {
	case fieldBody:
		return "Body"
	case fieldTags:
		return "Tags"
	case fieldDue:
		return "Due (YYYY.MM.DD@hh:mm)"
	default:
		return "Title"
	}
}

// noteForm holds the four note fields and the focused field.
type noteForm struct {
	fields [formFieldCount]textField
	focus  formField
}

// noteValues is the parsed result of a submitted form.
type noteValues struct {
	Title string
	Body  string
	Tags  []string
	Due   *time.Time
}

// newNoteForm returns an empty form focused on the title.
func newNoteForm() noteForm {
	return noteForm{focus: fieldTitle}
}

// noteFormFrom returns a form pre-filled from an existing note.
func noteFormFrom(note domain.Note) noteForm {
	form := newNoteForm()
	form.fields[fieldTitle] = newTextField(note.Title)
	form.fields[fieldBody] = newTextField(note.Body)
	form.fields[fieldTags] = newTextField(strings.Join(note.Tags, " "))
	if note.Due != nil {
		form.fields[fieldDue] = newTextField(domain.FormatDue(*note.Due))
	}
	return form
}

func (f *noteForm) nextField() {
	f.focus = (f.focus + 1) % formFieldCount
}

func (f *noteForm) prevField() {
	f.focus = (f.focus + formFieldCount - 1) % formFieldCount
}

// active returns the focused field.
func (f *noteForm) active() *textField {
	return &f.fields[f.focus]
}

// value returns the raw text of one field.
func (f noteForm) value(field formField) string {
	return f.fields[field].Value()
}

// parse validates the form and returns the note values it describes.
func (f noteForm) parse() (noteValues, error) {
	title := strings.TrimSpace(f.value(fieldTitle))
	if title == "" {
		return noteValues{}, domain.ErrInvalidTitle
	}
	due, err := domain.ParseDue(f.value(fieldDue))
	if err != nil {
		return noteValues{}, err
	}
	return noteValues{
		Title: title,
		Body:  domain.NormalizeBody(f.value(fieldBody)),
		Tags:  domain.ParseTags(f.value(fieldTags)),
		Due:   due,
	}, nil
}
