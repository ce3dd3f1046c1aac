package app

import "errors"

// ErrBoardNotFound and related errors describe validation and runtime failures.
var (
	ErrBoardNotFound = errors.New("board not found")
	ErrInvalidInput  = errors.New("invalid input")
)
