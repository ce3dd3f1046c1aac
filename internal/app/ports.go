package app

import (
	"context"

	"github.com/DamynChipman/postit/internal/domain"
)

// BoardStore loads and saves whole boards keyed by location.
type BoardStore interface {
	LoadBoard(context.Context, domain.BoardLocation) (domain.Board, error)
	SaveBoard(context.Context, domain.BoardLocation, domain.Board) error
}
