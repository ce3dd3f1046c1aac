package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	toggleHelp   key.Binding
	viewBoard    key.Binding
	viewTimeline key.Binding
	viewProject  key.Binding
	moveLeft     key.Binding
	moveRight    key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	newNote      key.Binding
	editNote     key.Binding
	deleteNote   key.Binding
	copyID       key.Binding
	moveForward  key.Binding
	moveBack     key.Binding
	focusNext    key.Binding
	focusPrev    key.Binding
	jumpToDay    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		viewBoard:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "board")),
		viewTimeline: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "timeline")),
		viewProject:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "project")),
		moveLeft:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		moveRight:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		newNote:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		editNote:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		deleteNote:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		copyID:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		moveForward:  key.NewBinding(key.WithKeys("m", ">"), key.WithHelp("m/>", "forward")),
		moveBack:     key.NewBinding(key.WithKeys("b", "<"), key.WithHelp("b/<", "back")),
		focusNext:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		focusPrev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "focus back")),
		jumpToDay:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "jump to day")),
	}
}

// viewKeyMap scopes help output to the active view.
type viewKeyMap struct {
	keys keyMap
	view view
}

// ShortHelp returns the bindings shown in the footer.
func (k viewKeyMap) ShortHelp() []key.Binding {
	keys := k.keys
	switch k.view {
	case viewTimeline:
		return []key.Binding{keys.focusNext, keys.moveLeft, keys.moveRight, keys.moveUp, keys.moveDown, keys.jumpToDay, keys.newNote, keys.editNote, keys.deleteNote, keys.toggleHelp, keys.quit}
	case viewProject:
		return []key.Binding{keys.focusNext, keys.moveLeft, keys.moveRight, keys.moveUp, keys.moveDown, keys.newNote, keys.editNote, keys.deleteNote, keys.toggleHelp, keys.quit}
	default:
		return []key.Binding{keys.moveLeft, keys.moveRight, keys.moveUp, keys.moveDown, keys.moveForward, keys.moveBack, keys.newNote, keys.editNote, keys.deleteNote, keys.toggleHelp, keys.quit}
	}
}

// FullHelp returns grouped bindings for the expanded help.
func (k viewKeyMap) FullHelp() [][]key.Binding {
	keys := k.keys
	views := []key.Binding{keys.viewBoard, keys.viewTimeline, keys.viewProject, keys.toggleHelp, keys.quit}
	notes := []key.Binding{keys.newNote, keys.editNote, keys.deleteNote, keys.copyID}
	switch k.view {
	case viewTimeline:
		return [][]key.Binding{views, {keys.focusNext, keys.focusPrev, keys.moveLeft, keys.moveRight, keys.moveUp, keys.moveDown, keys.jumpToDay}, notes}
	case viewProject:
		return [][]key.Binding{views, {keys.focusNext, keys.moveLeft, keys.moveRight, keys.moveUp, keys.moveDown}, notes}
	default:
		return [][]key.Binding{views, {keys.moveLeft, keys.moveRight, keys.moveUp, keys.moveDown, keys.moveForward, keys.moveBack}, notes}
	}
}
