package tui

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/DamynChipman/postit/internal/domain"
)

// untaggedBucket names the project bucket holding notes without tags.
const untaggedBucket = "(untagged)"

// noteRef is a read-only snapshot of one note for display lists.
type noteRef struct {
	id   string
	note domain.Note
}

// tagBucket groups notes sharing one tag.
type tagBucket struct {
	tag   string
	notes []noteRef
}

// compareTitles orders titles case-insensitively.
func compareTitles(a, b domain.Note) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}

// timelineLists partitions notes into unassigned and assigned lists in display order.
func timelineLists(board domain.Board) ([]noteRef, []noteRef) {
	unassigned := []noteRef{}
	assigned := []noteRef{}
	for id, note := range board.Notes {
		if note.Due == nil {
			unassigned = append(unassigned, noteRef{id: id, note: note})
		} else {
			assigned = append(assigned, noteRef{id: id, note: note})
		}
	}
	slices.SortFunc(unassigned, func(a, b noteRef) int {
		return cmp.Or(
			a.note.CreatedAt.Compare(b.note.CreatedAt),
			compareTitles(a.note, b.note),
			strings.Compare(a.id, b.id),
		)
	})
	slices.SortFunc(assigned, func(a, b noteRef) int {
		return cmp.Or(
			a.note.Due.Compare(*b.note.Due),
			compareTitles(a.note, b.note),
			strings.Compare(a.id, b.id),
		)
	})
	return unassigned, assigned
}

// projectBuckets groups notes by tag, buckets sorted by tag and notes by last update.
func projectBuckets(board domain.Board) []tagBucket {
	byTag := map[string][]noteRef{}
	for id, note := range board.Notes {
		if len(note.Tags) == 0 {
			byTag[untaggedBucket] = append(byTag[untaggedBucket], noteRef{id: id, note: note})
			continue
		}
		for _, tag := range note.Tags {
			byTag[tag] = append(byTag[tag], noteRef{id: id, note: note})
		}
	}
	out := make([]tagBucket, 0, len(byTag))
	for tag, notes := range byTag {
		slices.SortFunc(notes, func(a, b noteRef) int {
			return cmp.Or(
				a.note.UpdatedAt.Compare(b.note.UpdatedAt),
				compareTitles(a.note, b.note),
				strings.Compare(a.id, b.id),
			)
		})
		out = append(out, tagBucket{tag: tag, notes: notes})
	}
	slices.SortFunc(out, func(a, b tagBucket) int {
		return strings.Compare(a.tag, b.tag)
	})
	return out
}

// dateOf truncates t to its UTC calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// notesDueOn lists notes due on one calendar day ordered by due time then title.
func notesDueOn(board domain.Board, day time.Time) []noteRef {
	_, assigned := timelineLists(board)
	day = dateOf(day)
	out := []noteRef{}
	for _, ref := range assigned {
		if dateOf(*ref.note.Due).Equal(day) {
			out = append(out, ref)
		}
	}
	return out
}

// dueCounts counts notes per due day.
func dueCounts(board domain.Board) map[time.Time]int {
	counts := map[time.Time]int{}
	for _, note := range board.Notes {
		if note.Due != nil {
			counts[dateOf(*note.Due)]++
		}
	}
	return counts
}

// earliestDueDay returns the first day any note is due, if any.
func earliestDueDay(board domain.Board) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, note := range board.Notes {
		if note.Due == nil {
			continue
		}
		if !found || note.Due.Before(earliest) {
			earliest = *note.Due
			found = true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return dateOf(earliest), true
}
