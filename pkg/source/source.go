// Package source supplies the raw capacity cell text of a vault.
package source

import (
	"context"
	"errors"
)

// ErrRowNotFound is returned when no table row matches the vault identifier.
var ErrRowNotFound = errors.New("vault row not found")

// Source fetches the text of the capacity cell for a vault: the last cell of
// the first table row that mentions the vault identifier.
type Source interface {
	// Name returns the source identifier.
	Name() string

	// Fetch returns the raw cell text, or ErrRowNotFound.
	Fetch(ctx context.Context, vault string) (string, error)
}
