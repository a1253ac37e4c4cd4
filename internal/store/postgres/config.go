package postgres

import (
	"context"
	"fmt"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// ListFrequencies returns the maintenance frequencies of an asset type.
func (s *Store) ListFrequencies(ctx context.Context, assetTypeID uuid.UUID) ([]store.MaintenanceFrequency, error) {
	query := `
		SELECT asset_type_id, maintenance_type_id, frequency, unit
		FROM maintenance_frequencies
		WHERE asset_type_id = $1
		ORDER BY maintenance_type_id
	`
	rows, err := s.db.QueryContext(ctx, query, assetTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list frequencies for type %s: %w", assetTypeID, err)
	}
	defer rows.Close()

	var freqs []store.MaintenanceFrequency
	for rows.Next() {
		var f store.MaintenanceFrequency
		if err := rows.Scan(&f.AssetTypeID, &f.MaintenanceTypeID, &f.Frequency, &f.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan frequency: %w", err)
		}
		freqs = append(freqs, f)
	}
	return freqs, rows.Err()
}

// ListSequence returns the approval chain of an asset type ordered by sequence number.
func (s *Store) ListSequence(ctx context.Context, assetTypeID uuid.UUID) ([]store.SequenceStep, error) {
	query := `
		SELECT asset_type_id, sequence_no, job_role_id, department_id
		FROM approval_sequences
		WHERE asset_type_id = $1
		ORDER BY sequence_no
	`
	rows, err := s.db.QueryContext(ctx, query, assetTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval sequence for type %s: %w", assetTypeID, err)
	}
	defer rows.Close()

	var steps []store.SequenceStep
	for rows.Next() {
		var st store.SequenceStep
		if err := rows.Scan(&st.AssetTypeID, &st.SequenceNo, &st.JobRoleID, &st.DepartmentID); err != nil {
			return nil, fmt.Errorf("failed to scan sequence step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
