package postgres

import (
	"context"
	"fmt"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// RoleHolders returns the users holding a job role.
func (s *Store) RoleHolders(ctx context.Context, jobRoleID string) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM user_roles WHERE job_role_id = $1 ORDER BY user_id`, jobRoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holders of role %s: %w", jobRoleID, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UserRoles returns the job roles held by a user.
func (s *Store) UserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.UserRolesTx(ctx, nil, userID)
}

// UserRolesTx returns the job roles held by a user, read through tx when set.
func (s *Store) UserRolesTx(ctx context.Context, tx store.DBTransaction, userID uuid.UUID) ([]string, error) {
	rows, err := s.getExecutor(tx).QueryContext(ctx, `SELECT job_role_id FROM user_roles WHERE user_id = $1 ORDER BY job_role_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles of user %s: %w", userID, err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
