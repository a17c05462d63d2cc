package domain

import "errors"

var (
	// ErrNoText is returned when a fetched status carries no text content.
	ErrNoText = errors.New("status has no text content")

	// ErrUnknownWindow is returned when a search window name is outside the
	// supported set.
	ErrUnknownWindow = errors.New("unknown search window")
)
