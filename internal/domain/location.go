package domain

import (
	"path/filepath"
	"strings"
)

// BoardScope distinguishes project-local boards from the global board.
type BoardScope string

// BoardScopeProject and related constants define package defaults.
const (
	BoardScopeProject BoardScope = "project"
	BoardScopeGlobal  BoardScope = "global"
)

// BoardLocation describes where one board is persisted.
type BoardLocation struct {
	Path  string
	Scope BoardScope
}

// DefaultBoardName returns the name given to a board created at this location.
func (l BoardLocation) DefaultBoardName() string {
	if l.Scope != BoardScopeProject {
		return "default"
	}
	// <project>/.postit/board.yml
	projectDir := filepath.Dir(filepath.Dir(strings.TrimSpace(l.Path)))
	name := filepath.Base(projectDir)
	switch name {
	case "", ".", string(filepath.Separator):
		return "project"
	}
	return name
}
