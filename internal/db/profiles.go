package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/career-compass/internal/types"
)

// -----------------------------------------------------------------------------
// Profile Methods
// -----------------------------------------------------------------------------

// GetProfile returns nil, nil when the account has no profile yet.
func (db *DB) GetProfile(ctx context.Context, accountID uuid.UUID) (*types.UserProfile, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT data FROM profiles WHERE account_id = $1`, accountID,
	).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p types.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	p.ID = accountID.String()
	return &p, nil
}

// CreateProfileIfMissing inserts p unless a profile already exists, then
// returns the stored profile. created reports whether p was written.
func (db *DB) CreateProfileIfMissing(ctx context.Context, accountID uuid.UUID, p *types.UserProfile) (*types.UserProfile, bool, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal profile: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`INSERT INTO profiles (account_id, data) VALUES ($1, $2)
		 ON CONFLICT (account_id) DO NOTHING`,
		accountID, data,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}

	stored, err := db.GetProfile(ctx, accountID)
	if err != nil {
		return nil, false, err
	}
	return stored, result.RowsAffected() == 1, nil
}

// SaveProfile merge-writes p over the stored document: top-level keys in p
// replace stored keys, keys absent from p are kept.
func (db *DB) SaveProfile(ctx context.Context, accountID uuid.UUID, p *types.UserProfile) (*types.UserProfile, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	var merged []byte
	err = db.pool.QueryRow(ctx,
		`INSERT INTO profiles (account_id, data) VALUES ($1, $2)
		 ON CONFLICT (account_id) DO UPDATE SET
		     data = profiles.data || EXCLUDED.data,
		     updated_at = NOW()
		 RETURNING data`,
		accountID, data,
	).Scan(&merged)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	var out types.UserProfile
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	out.ID = accountID.String()
	return &out, nil
}
