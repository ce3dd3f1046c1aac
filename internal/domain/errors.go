package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidTitle        = errors.New("title is required")
	ErrInvalidDue          = errors.New("invalid date format (use YYYY.MM.DD@hh:mm)")
	ErrInvalidWIPLimit     = errors.New("invalid wip limit")
	ErrColumnNotFound      = errors.New("column not found")
	ErrNoteNotFound        = errors.New("note not found")
	ErrNoteExists          = errors.New("note already exists")
	ErrNoteLocationMissing = errors.New("note not present in any column")
	ErrWIPLimitReached     = errors.New("wip limit reached for column")
	ErrNoColumns           = errors.New("no columns available to place the note")
)
