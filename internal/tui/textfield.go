package tui

import (
	"strings"
	"unicode/utf8"
)

// caretMarker is drawn at the cursor of the focused field.
const caretMarker = "▌"

// textField is an editable buffer with a byte cursor that always sits on a rune boundary.
type textField struct {
	value  string
	cursor int
}

// newTextField returns a field holding value with the cursor at the end.
func newTextField(value string) textField {
	return textField{value: value, cursor: len(value)}
}

// Value returns the current buffer.
func (f textField) Value() string {
	return f.value
}

// moveLeft steps the cursor back one rune.
func (f *textField) moveLeft() {
	if f.cursor <= 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(f.value[:f.cursor])
	f.cursor -= size
}

// moveRight steps the cursor forward one rune.
func (f *textField) moveRight() {
	if f.cursor >= len(f.value) {
		return
	}
	_, size := utf8.DecodeRuneInString(f.value[f.cursor:])
	f.cursor += size
}

// moveUp moves to the same rune column on the previous line, clamped to its length.
func (f *textField) moveUp() {
	starts, line, col := f.lineState()
	if line == 0 {
		return
	}
	f.cursor = indexAtColumn(f.value, starts[line-1], col)
}

// moveDown moves to the same rune column on the next line, clamped to its length.
func (f *textField) moveDown() {
	starts, line, col := f.lineState()
	if line+1 >= len(starts) {
		return
	}
	f.cursor = indexAtColumn(f.value, starts[line+1], col)
}

// backspace deletes the rune before the cursor.
func (f *textField) backspace() {
	if f.cursor <= 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(f.value[:f.cursor])
	f.value = f.value[:f.cursor-size] + f.value[f.cursor:]
	f.cursor -= size
}

// insert places r at the cursor and advances past it.
func (f *textField) insert(r rune) {
	if r == utf8.RuneError {
		return
	}
	encoded := string(r)
	f.value = f.value[:f.cursor] + encoded + f.value[f.cursor:]
	f.cursor += len(encoded)
}

// insertText inserts every rune of s in order.
func (f *textField) insertText(s string) {
	for _, r := range s {
		f.insert(r)
	}
}

// withCaret returns the buffer with the caret marker at the cursor, for display only.
func (f textField) withCaret() string {
	return f.value[:f.cursor] + caretMarker + f.value[f.cursor:]
}

// lineState returns line start offsets, the cursor line, and the cursor rune column.
func (f textField) lineState() ([]int, int, int) {
	starts := []int{0}
	for idx, r := range f.value {
		if r == '\n' {
			starts = append(starts, idx+1)
		}
	}
	line := 0
	for idx, start := range starts {
		if start > f.cursor {
			break
		}
		line = idx
	}
	col := utf8.RuneCountInString(f.value[starts[line]:f.cursor])
	return starts, line, col
}

// indexAtColumn returns the byte offset of rune column col on the line starting at start.
func indexAtColumn(text string, start, col int) int {
	line := text[start:]
	if end := strings.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	seen := 0
	for idx := range line {
		if seen == col {
			return start + idx
		}
		seen++
	}
	return start + len(line)
}
