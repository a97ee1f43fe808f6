// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrUnknownFormat is returned when a source document matches no
	// known template format.
	ErrUnknownFormat = errors.New("unknown template format")
)
