package storage

import (
	"context"
	"errors"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
)

// ErrVaultNotFound is returned when a vault is not on the watch list.
var ErrVaultNotFound = errors.New("vault not found")

// Storage defines the persistence layer for the vault watch list.
type Storage interface {
	// AddVault creates or updates a watched vault, keyed by name.
	AddVault(ctx context.Context, vault *model.Vault) error

	// GetVault retrieves a watched vault by name.
	GetVault(ctx context.Context, name string) (*model.Vault, error)

	// ListVaults returns watched vaults ordered by name.
	ListVaults(ctx context.Context, enabledOnly bool) ([]model.Vault, error)

	// SetEnabled toggles whether the scheduler checks a vault.
	SetEnabled(ctx context.Context, name string, enabled bool) error

	// RemoveVault deletes a vault from the watch list.
	RemoveVault(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}
