package tui

// scrollMargin is the number of rows kept visible around the selection in every list.
const scrollMargin = 1

// adjustOffset returns the first visible row for a list so the selected row stays in view.
func adjustOffset(selected, offset, viewport, margin, length int) int {
	if viewport <= 0 || length <= 0 {
		return 0
	}
	maxOffset := max(0, length-viewport)
	margin = min(max(0, margin), max(0, (viewport-1)/2))
	offset = clamp(offset, 0, maxOffset)
	selected = max(0, selected)
	if selected < offset+margin {
		offset = max(0, selected-margin)
	} else if upper := offset + (viewport - 1) - margin; selected > upper {
		offset = max(0, selected+margin+1-viewport)
	}
	return min(offset, maxOffset)
}

// visibleRange returns the half-open row range shown for one list window.
func visibleRange(offset, viewport, length int) (int, int) {
	if viewport <= 0 || length <= 0 {
		return 0, 0
	}
	start := clamp(offset, 0, length-1)
	return start, min(length, start+viewport)
}
