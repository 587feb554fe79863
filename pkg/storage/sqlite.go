package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode so the server can read while the CLI writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) AddVault(ctx context.Context, vault *model.Vault) error {
	vault.Name = strings.TrimSpace(vault.Name)
	if vault.Name == "" {
		return errors.New("vault name is required")
	}
	if vault.ID == "" {
		vault.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if vault.CreatedAt.IsZero() {
		vault.CreatedAt = now
	}
	vault.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vaults (id, name, label, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   label = excluded.label,
		   enabled = excluded.enabled,
		   updated_at = excluded.updated_at`,
		vault.ID, vault.Name, vault.Label, vault.Enabled, vault.CreatedAt, vault.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("add vault: %w", err)
	}
	return nil
}

func (s *SQLite) GetVault(ctx context.Context, name string) (*model.Vault, error) {
	var v model.Vault
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, label, enabled, created_at, updated_at
		 FROM vaults WHERE name = ?`, name,
	).Scan(&v.ID, &v.Name, &v.Label, &v.Enabled, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vault %q: %w", name, ErrVaultNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vault: %w", err)
	}
	return &v, nil
}

func (s *SQLite) ListVaults(ctx context.Context, enabledOnly bool) ([]model.Vault, error) {
	query := `SELECT id, name, label, enabled, created_at, updated_at FROM vaults`
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	defer rows.Close()

	var vaults []model.Vault
	for rows.Next() {
		var v model.Vault
		if err := rows.Scan(&v.ID, &v.Name, &v.Label, &v.Enabled, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vault row: %w", err)
		}
		vaults = append(vaults, v)
	}
	return vaults, rows.Err()
}

func (s *SQLite) SetEnabled(ctx context.Context, name string, enabled bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE vaults SET enabled = ?, updated_at = ? WHERE name = ?`,
		enabled, time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("update vault: %w", err)
	}
	return expectOneRow(result, name)
}

func (s *SQLite) RemoveVault(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vaults WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove vault: %w", err)
	}
	return expectOneRow(result, name)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func expectOneRow(result sql.Result, name string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("vault %q: %w", name, ErrVaultNotFound)
	}
	return nil
}
