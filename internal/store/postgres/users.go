package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// CreateUser inserts a user with its API key hash and job roles.
func (s *Store) CreateUser(ctx context.Context, tx store.DBTransaction, user *store.User, hashedKey string, roles []string) error {
	exec := s.getExecutor(tx)

	query := `
		INSERT INTO users (id, name, api_key_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := exec.ExecContext(ctx, query, user.ID, user.Name, hashedKey, user.IsAdmin, user.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	roleQuery := `
		INSERT INTO user_roles (user_id, job_role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, role := range roles {
		if _, err := exec.ExecContext(ctx, roleQuery, user.ID, role); err != nil {
			return fmt.Errorf("failed to grant role %s: %w", role, err)
		}
	}
	return nil
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*store.User, error) {
	query := "SELECT id, name, is_admin, created_at FROM users WHERE " + where + " = $1"

	var u store.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns a user by its ID.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*store.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByAPIKeyHash returns the user owning an API key hash.
func (s *Store) GetUserByAPIKeyHash(ctx context.Context, hash string) (*store.User, error) {
	return s.getUser(ctx, "api_key_hash", hash)
}
