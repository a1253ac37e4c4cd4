package postgres

import (
	"context"
	"fmt"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// ListAssetTypes returns every asset type ordered by name.
func (s *Store) ListAssetTypes(ctx context.Context) ([]store.AssetType, error) {
	query := `
		SELECT id, name, maintenance_required, lead_time_days
		FROM asset_types
		ORDER BY name, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset types: %w", err)
	}
	defer rows.Close()

	var types []store.AssetType
	for rows.Next() {
		var at store.AssetType
		if err := rows.Scan(&at.ID, &at.Name, &at.MaintenanceRequired, &at.LeadTimeDays); err != nil {
			return nil, fmt.Errorf("failed to scan asset type: %w", err)
		}
		types = append(types, at)
	}
	return types, rows.Err()
}

// ListAssetsByType returns the assets of one asset type.
func (s *Store) ListAssetsByType(ctx context.Context, assetTypeID uuid.UUID) ([]store.Asset, error) {
	query := `
		SELECT id, asset_type_id, asset_group_id, name, purchase_date, org_id, branch_id
		FROM assets
		WHERE asset_type_id = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, assetTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets for type %s: %w", assetTypeID, err)
	}
	defer rows.Close()

	var assets []store.Asset
	for rows.Next() {
		var a store.Asset
		if err := rows.Scan(&a.ID, &a.AssetTypeID, &a.AssetGroupID, &a.Name, &a.PurchaseDate, &a.OrgID, &a.BranchID); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
