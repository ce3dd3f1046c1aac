package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/DamynChipman/postit/internal/domain"
	"github.com/charmbracelet/x/ansi"
)

// Layout heights in terminal rows.
const (
	headerHeight  = 2
	statusHeight  = 1
	detailLines   = 5
	detailHeight  = detailLines + 2
	cardHeight    = 5
	calendarWidth = 52
)

var (
	muted = lipgloss.Color("241")
	dim   = lipgloss.Color("239")
	hot   = lipgloss.Color("212")

	columnPalette = []color.Color{
		lipgloss.Color("39"),
		lipgloss.Color("170"),
		lipgloss.Color("214"),
		lipgloss.Color("42"),
		lipgloss.Color("203"),
		lipgloss.Color("141"),
	}
)

const formHint = "Ctrl+Enter to save • Esc to cancel • Tab/Shift-Tab to move • Enter adds newline in Body"

// View renders the full screen for the current state.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes header, active view, footer, and any mode overlay.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	var body string
	switch m.view {
	case viewTimeline:
		body = m.renderTimeline()
	case viewProject:
		body = m.renderProject()
	default:
		body = m.renderBoard()
	}
	body = fitLines(body, m.bodyHeight())

	content := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
	if overlay := m.renderModeOverlay(max(0, m.width-8)); overlay != "" {
		content = overlayOnContent(content, overlay, max(1, m.width), max(1, m.height))
	}
	return content
}

// helpHeight returns the rows taken by the help footer including its rule.
func (m Model) helpHeight() int {
	if !m.help.ShowAll {
		return 2
	}
	rows := 0
	for _, group := range (viewKeyMap{keys: m.keys, view: m.view}).FullHelp() {
		rows = max(rows, len(group))
	}
	return 1 + rows
}

// bodyHeight returns the rows left for the active view.
func (m Model) bodyHeight() int {
	return max(3, m.height-headerHeight-statusHeight-detailHeight-m.helpHeight())
}

// cardsPerColumn returns how many note cards fit in one board column.
func (m Model) cardsPerColumn() int {
	return max(1, (m.bodyHeight()-3)/cardHeight)
}

// listRows returns how many rows fit in one bordered list pane.
func (m Model) listRows() int {
	return max(1, m.bodyHeight()-3)
}

func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	metaStyle := lipgloss.NewStyle().Foreground(muted)
	elapsed := formatElapsed(m.svc.Now().Sub(m.lastSave))
	meta := fmt.Sprintf(" • %s • %s • saved %s ago • view %s", m.loc.Scope, m.loc.Path, elapsed, strings.ToLower(m.view.label()))
	line := titleStyle.Render("postit") + " " + m.board.Name + metaStyle.Render(meta)
	line = ansi.Truncate(line, max(1, m.width), "…")
	rule := lipgloss.NewStyle().Foreground(dim).Render(strings.Repeat("─", max(0, m.width)))
	return line + "\n" + rule
}

// formatElapsed renders a save age as seconds, minutes, or hours.
func formatElapsed(d time.Duration) string {
	d = max(0, d)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	default:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
}

func (m Model) renderBoard() string {
	if len(m.board.Columns) == 0 {
		return lipgloss.NewStyle().Foreground(muted).Render("No columns defined. Add columns to the board file to get started.")
	}
	height := m.bodyHeight()
	colWidth := max(12, m.width/len(m.board.Columns))
	inner := colWidth - 2
	cards := m.cardsPerColumn()

	views := make([]string, 0, len(m.board.Columns))
	for idx, column := range m.board.Columns {
		accent := columnPalette[idx%len(columnPalette)]
		selected := idx == m.boardNav.column
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
		border := dim
		if selected {
			titleStyle = titleStyle.Underline(true)
			border = accent
		}
		lines := []string{titleStyle.Render(ansi.Truncate(columnTitle(column), inner, "…"))}
		notes := m.board.ColumnNotes(idx)
		if len(notes) == 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("(empty)"))
		}
		offset := 0
		if idx < len(m.boardNav.offsets) {
			offset = m.boardNav.offsets[idx]
		}
		start, end := visibleRange(offset, cards, len(notes))
		for i := start; i < end; i++ {
			lines = append(lines, renderCard(notes[i], inner, accent, selected && i == m.boardNav.note))
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(colWidth)
		views = append(views, box.Render(fitLines(strings.Join(lines, "\n"), height-2)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// columnTitle renders "name [id] (count)" with the wip limit when one is set.
func columnTitle(column domain.Column) string {
	if column.HasLimit() {
		return fmt.Sprintf("%s [%s] (%d / %d)", column.Name, column.ID, len(column.NoteIDs), column.WIPLimit)
	}
	return fmt.Sprintf("%s [%s] (%d)", column.Name, column.ID, len(column.NoteIDs))
}

func renderCard(note domain.Note, width int, accent color.Color, selected bool) string {
	inner := max(1, width-2)
	titleStyle := lipgloss.NewStyle().Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(muted)
	style := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(dim).Width(width)
	if selected {
		titleStyle = titleStyle.Foreground(hot)
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(accent)
	}
	due := ""
	if note.Due != nil {
		due = "due " + domain.FormatDue(*note.Due)
	}
	lines := []string{
		titleStyle.Render(truncate(note.Title, inner)),
		metaStyle.Render(truncate(due, inner)),
		metaStyle.Render(truncate(formatTags(note.Tags), inner)),
	}
	return style.Render(strings.Join(lines, "\n"))
}

// formatTags renders tags as "#a #b".
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "#" + strings.Join(tags, " #")
}

// noteRow renders one list row: "[id] title  YYYY-MM-DD  #tags".
func noteRow(ref noteRef, markUntagged bool) string {
	parts := []string{fmt.Sprintf("[%s] %s", ref.id, ref.note.Title)}
	if ref.note.Due != nil {
		parts = append(parts, ref.note.Due.UTC().Format("2006-01-02"))
	}
	switch {
	case len(ref.note.Tags) > 0:
		parts = append(parts, formatTags(ref.note.Tags))
	case markUntagged:
		parts = append(parts, "(no tags)")
	}
	return strings.Join(parts, "  ")
}

// listPane describes one bordered, scrollable list.
type listPane struct {
	title    string
	rows     []string
	selected int
	offset   int
	focused  bool
	empty    string
	width    int
	accent   color.Color
}

func (m Model) renderList(p listPane) string {
	height := m.bodyHeight()
	inner := max(1, p.width-2)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.accent)
	border := dim
	if p.focused {
		titleStyle = titleStyle.Underline(true)
		border = p.accent
	}
	lines := []string{titleStyle.Render(truncate(p.title, inner))}
	if len(p.rows) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render(p.empty))
	}
	start, end := visibleRange(p.offset, m.listRows(), len(p.rows))
	for i := start; i < end; i++ {
		row := "  " + p.rows[i]
		style := lipgloss.NewStyle()
		if i == p.selected {
			style = style.Bold(true)
			if p.focused {
				row = "› " + p.rows[i]
				style = style.Foreground(hot)
			}
		}
		lines = append(lines, style.Render(truncate(row, inner)))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(p.width)
	return box.Render(fitLines(strings.Join(lines, "\n"), height-2))
}

func (m Model) renderTimeline() string {
	unassigned, assigned := timelineLists(m.board)
	calWidth := min(calendarWidth, max(24, m.width/2))
	listWidth := max(12, (m.width-calWidth)/2)
	tl := m.timeline

	rows := func(refs []noteRef) []string {
		out := make([]string, 0, len(refs))
		for _, ref := range refs {
			out = append(out, noteRow(ref, false))
		}
		return out
	}
	left := m.renderList(listPane{
		title:    fmt.Sprintf("Unassigned Tasks (%d)", len(unassigned)),
		rows:     rows(unassigned),
		selected: tl.unassigned,
		offset:   tl.unassignedOffset,
		focused:  tl.focus == focusUnassigned,
		empty:    "No tasks",
		width:    listWidth,
		accent:   columnPalette[0],
	})
	middle := m.renderList(listPane{
		title:    fmt.Sprintf("Assigned Tasks (%d)", len(assigned)),
		rows:     rows(assigned),
		selected: tl.assigned,
		offset:   tl.assignedOffset,
		focused:  tl.focus == focusAssigned,
		empty:    "No tasks",
		width:    listWidth,
		accent:   columnPalette[1],
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, left, middle, m.renderCalendar(calWidth))
}

// renderCalendar renders the cursor's month as a Monday-first grid with per-day due counts.
func (m Model) renderCalendar(width int) string {
	focused := m.timeline.focus == focusCalendar
	accent := columnPalette[2]
	cursor := dateOf(m.timeline.cursor)
	first := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7
	counts := dueCounts(m.board)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	border := dim
	if focused {
		titleStyle = titleStyle.Underline(true)
		border = accent
	}
	cursorStyle := lipgloss.NewStyle().Underline(true)
	if focused {
		cursorStyle = lipgloss.NewStyle().Reverse(true)
	}

	names := []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
	header := make([]string, 0, len(names))
	for _, name := range names {
		header = append(header, fmt.Sprintf("%-6s", name))
	}
	lines := []string{
		titleStyle.Render("Calendar"),
		fmt.Sprintf("%s %d", cursor.Month(), cursor.Year()),
		lipgloss.NewStyle().Foreground(muted).Render(strings.Join(header, " ")),
	}

	cells := make([]string, 0, lead+days)
	for range lead {
		cells = append(cells, strings.Repeat(" ", 6))
	}
	for d := 1; d <= days; d++ {
		day := time.Date(cursor.Year(), cursor.Month(), d, 0, 0, 0, 0, time.UTC)
		cell := fmt.Sprintf("%2d    ", d)
		if n := counts[day]; n > 0 {
			cell = fmt.Sprintf("%2d(%2d)", d, n)
		}
		if day.Equal(cursor) {
			cell = cursorStyle.Render(cell)
		}
		cells = append(cells, cell)
	}
	for start := 0; start < len(cells); start += 7 {
		end := min(start+7, len(cells))
		lines = append(lines, strings.Join(cells[start:end], " "))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width)
	return box.Render(fitLines(strings.Join(lines, "\n"), m.bodyHeight()-2))
}

func (m Model) renderProject() string {
	buckets := projectBuckets(m.board)
	ps := m.project
	tagWidth := max(16, m.width*35/100)
	noteWidth := max(16, m.width-tagWidth)

	tagRows := make([]string, 0, len(buckets))
	for _, bucket := range buckets {
		tagRows = append(tagRows, fmt.Sprintf("%s (%d)", bucket.tag, len(bucket.notes)))
	}
	noteRows := []string{}
	if ps.tag < len(buckets) {
		for _, ref := range buckets[ps.tag].notes {
			noteRows = append(noteRows, noteRow(ref, true))
		}
	}
	tags := m.renderList(listPane{
		title:    "Project Tags",
		rows:     tagRows,
		selected: ps.tag,
		offset:   ps.tagOffset,
		focused:  ps.focus == focusTags,
		empty:    "No tags yet",
		width:    tagWidth,
		accent:   columnPalette[3],
	})
	notes := m.renderList(listPane{
		title:    "Tagged Tasks",
		rows:     noteRows,
		selected: ps.note,
		offset:   ps.noteOffset,
		focused:  ps.focus == focusTagNotes,
		empty:    "No tasks for this tag",
		width:    noteWidth,
		accent:   columnPalette[4],
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, tags, notes)
}

func (m Model) renderFooter() string {
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(truncate(m.status, max(1, m.width)))

	title, lines := m.detailContent()
	detailBody := lipgloss.NewStyle().Bold(true).Foreground(columnPalette[5]).Render(title) + "\n" + fitLines(strings.Join(lines, "\n"), detailLines)
	detail := lipgloss.NewStyle().
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(detailBody)

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(viewKeyMap{keys: m.keys, view: m.view}))
	return lipgloss.JoinVertical(lipgloss.Left, status, detail, helpLine)
}

// detailContent returns the detail pane title and lines for the current focus.
func (m Model) detailContent() (string, []string) {
	if m.view == viewTimeline && m.timeline.focus == focusCalendar {
		day := dateOf(m.timeline.cursor)
		lines := []string{"Due " + day.Format("2006-01-02")}
		due := notesDueOn(m.board, day)
		if len(due) == 0 {
			return "Calendar", append(lines, "No tasks due on this date")
		}
		for _, ref := range due {
			lines = append(lines, fmt.Sprintf("%s: %s", ref.id, ref.note.Title))
		}
		return "Calendar", lines
	}
	if m.view == viewProject && m.project.focus == focusTags {
		buckets := projectBuckets(m.board)
		if len(buckets) == 0 {
			return "Tag", []string{"No tags yet"}
		}
		bucket := buckets[clamp(m.project.tag, 0, len(buckets)-1)]
		return "Tag", []string{bucket.tag, fmt.Sprintf("%d task(s)", len(bucket.notes))}
	}
	ref, ok := m.currentNote()
	if !ok {
		if m.view == viewProject {
			return "Selected", []string{"No task selected"}
		}
		return "Selected", []string{"No note selected"}
	}
	return "Selected", m.noteDetail(ref.note)
}

// noteDetail renders title, due, tags, and body for the detail pane.
func (m Model) noteDetail(note domain.Note) []string {
	width := max(1, m.width-2)
	due := "no due date"
	if note.Due != nil {
		due = "due " + domain.FormatDue(*note.Due)
	}
	tags := formatTags(note.Tags)
	if tags == "" {
		tags = "no tags"
	}
	meta := lipgloss.NewStyle().Foreground(muted)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("221")).Render(truncate(note.Title, width)),
		meta.Render(due + " • " + tags),
	}
	if !note.HasBody() {
		return lines
	}
	body := note.Body
	if m.renderMarkdown && m.markdown != nil {
		body = m.markdown.render(body, width)
	}
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, ansi.Truncate(line, width, "…"))
	}
	return lines
}

// renderModeOverlay renders the form or delete prompt for the active mode.
func (m Model) renderModeOverlay(maxWidth int) string {
	accent := columnPalette[0]
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)

	switch md := m.mode.(type) {
	case creatingMode:
		return m.renderFormOverlay("New Task", md.form, boxStyle.Width(clamp(maxWidth, 40, 96)), titleStyle, hintStyle)
	case editingMode:
		return m.renderFormOverlay("Edit Task", md.form, boxStyle.Width(clamp(maxWidth, 40, 96)), titleStyle, hintStyle)
	case confirmDeleteMode:
		label := md.noteID
		if note, ok := m.board.Note(md.noteID); ok {
			label = note.Title
		}
		warn := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
		lines := []string{
			warn.Render("Confirm Delete"),
			fmt.Sprintf("Delete %q?", label),
			hintStyle.Render("Press y to confirm, n or Esc to cancel"),
		}
		return boxStyle.BorderForeground(lipgloss.Color("203")).Width(clamp(maxWidth, 30, 64)).Render(strings.Join(lines, "\n"))
	default:
		return ""
	}
}

func (m Model) renderFormOverlay(title string, form noteForm, box, titleStyle, hintStyle lipgloss.Style) string {
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	activeLabel := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	lines := []string{titleStyle.Render(title), ""}
	for field := fieldTitle; field < formFieldCount; field++ {
		value := form.fields[field].Value()
		style := labelStyle
		if field == form.focus {
			value = form.fields[field].withCaret()
			style = activeLabel
		}
		lines = append(lines, style.Render(field.label()), value, "")
	}
	lines = append(lines, hintStyle.Render(formHint))
	return box.Render(strings.Join(lines, "\n"))
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on one canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate shortens s to max display cells with a trailing ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return ansi.Truncate(s, max, "…")
}
