package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DamynChipman/postit/internal/domain"
)

// ProjectDirName and related constants define board discovery markers.
const (
	ProjectDirName = ".postit"
	BoardFileName  = "board.yml"
)

// ProjectBoardPath returns the board file path for a project rooted at dir.
func ProjectBoardPath(dir string) string {
	return filepath.Join(dir, ProjectDirName, BoardFileName)
}

// GlobalBoardPath returns the board file path for the global board in dataDir.
func GlobalBoardPath(dataDir string) string {
	return filepath.Join(dataDir, BoardFileName)
}

// LocateBoard walks from start toward the filesystem root looking for a project
// board directory. When none is found the global board under dataDir is used.
func LocateBoard(start, dataDir string) (domain.BoardLocation, error) {
	start = strings.TrimSpace(start)
	if start == "" {
		return domain.BoardLocation{}, fmt.Errorf("start directory is required")
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return domain.BoardLocation{}, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		info, statErr := os.Stat(filepath.Join(dir, ProjectDirName))
		if statErr == nil && info.IsDir() {
			return domain.BoardLocation{Path: ProjectBoardPath(dir), Scope: domain.BoardScopeProject}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	dataDir = strings.TrimSpace(dataDir)
	if dataDir == "" {
		return domain.BoardLocation{}, fmt.Errorf("data directory is required for the global board")
	}
	return domain.BoardLocation{Path: GlobalBoardPath(dataDir), Scope: domain.BoardScopeGlobal}, nil
}

// ExplicitBoard returns a project-scoped location for a board file chosen by the user.
func ExplicitBoard(path string) (domain.BoardLocation, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.BoardLocation{}, fmt.Errorf("board path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.BoardLocation{}, fmt.Errorf("resolve board path: %w", err)
	}
	return domain.BoardLocation{Path: abs, Scope: domain.BoardScopeProject}, nil
}
