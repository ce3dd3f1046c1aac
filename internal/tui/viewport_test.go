package tui

import "testing"

// TestAdjustOffsetKeepsSelectionVisible verifies the selection always lands inside the window.
func TestAdjustOffsetKeepsSelectionVisible(t *testing.T) {
	for length := 0; length <= 12; length++ {
		for viewport := 1; viewport <= 6; viewport++ {
			for offset := -2; offset <= length+2; offset++ {
				for selected := 0; selected < length; selected++ {
					got := adjustOffset(selected, offset, viewport, scrollMargin, length)
					if got < 0 || got > max(0, length-viewport) {
						t.Fatalf("adjustOffset(%d, %d, %d, %d) = %d out of range", selected, offset, viewport, length, got)
					}
					if selected < got || selected >= got+viewport {
						t.Fatalf("adjustOffset(%d, %d, %d, %d) = %d hides selection", selected, offset, viewport, length, got)
					}
				}
			}
		}
	}
}

// TestAdjustOffsetCases verifies margin scrolling at both edges.
func TestAdjustOffsetCases(t *testing.T) {
	cases := []struct {
		name                               string
		selected, offset, viewport, length int
		want                               int
	}{
		{name: "empty list", selected: 3, offset: 5, viewport: 4, length: 0, want: 0},
		{name: "fits", selected: 2, offset: 0, viewport: 10, length: 3, want: 0},
		{name: "inside window", selected: 4, offset: 2, viewport: 5, length: 20, want: 2},
		{name: "scroll down keeps margin", selected: 6, offset: 2, viewport: 5, length: 20, want: 3},
		{name: "scroll up keeps margin", selected: 2, offset: 2, viewport: 5, length: 20, want: 1},
		{name: "clamped to tail", selected: 19, offset: 0, viewport: 5, length: 20, want: 15},
		{name: "stale offset past end", selected: 0, offset: 40, viewport: 5, length: 3, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adjustOffset(tc.selected, tc.offset, tc.viewport, scrollMargin, tc.length); got != tc.want {
				t.Fatalf("adjustOffset() = %d, want %d", got, tc.want)
			}
		})
	}
}

// TestVisibleRange verifies the rendered slice bounds.
func TestVisibleRange(t *testing.T) {
	if start, end := visibleRange(3, 4, 5); start != 3 || end != 5 {
		t.Fatalf("visibleRange(3, 4, 5) = %d, %d", start, end)
	}
	if start, end := visibleRange(0, 4, 0); start != 0 || end != 0 {
		t.Fatalf("visibleRange on empty list = %d, %d", start, end)
	}
	if start, end := visibleRange(9, 2, 4); start != 3 || end != 4 {
		t.Fatalf("visibleRange with stale offset = %d, %d", start, end)
	}
}
