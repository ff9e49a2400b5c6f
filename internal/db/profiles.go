package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-forge/internal/types"
)

const profileColumns = `id, user_id, name, resume, updated_at`

func scanProfile(row pgx.Row) (*types.Profile, error) {
	var (
		p          types.Profile
		resumeJSON []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &resumeJSON, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resumeJSON, &p.Resume); err != nil {
		return nil, fmt.Errorf("failed to decode profile resume: %w", err)
	}
	return &p, nil
}

// SaveProfile writes p under last-write-wins: the write is applied only when p.UpdatedAt is
// strictly newer than the stored row. An older or equal write returns ErrStaleWrite and leaves
// the stored profile untouched. A zero ID creates a new profile; a zero UpdatedAt means now.
func (db *DB) SaveProfile(ctx context.Context, p *types.Profile) (*types.Profile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	// postgres keeps microseconds
	p.UpdatedAt = p.UpdatedAt.UTC().Truncate(time.Microsecond)

	resumeJSON, err := json.Marshal(p.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile resume: %w", err)
	}

	saved, err := scanProfile(db.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, user_id, name, resume, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		   SET name = EXCLUDED.name, resume = EXCLUDED.resume, updated_at = EXCLUDED.updated_at
		   WHERE profiles.user_id = EXCLUDED.user_id AND profiles.updated_at < EXCLUDED.updated_at
		 RETURNING `+profileColumns,
		p.ID, p.UserID, p.Name, resumeJSON, p.UpdatedAt,
	))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	// the conflicting row belongs to someone else or is newer
	current, err := db.GetProfile(ctx, p.UserID, p.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	return nil, ErrStaleWrite
}

// GetProfile retrieves one of userID's profiles. It returns nil when absent.
func (db *DB) GetProfile(ctx context.Context, userID string, id uuid.UUID) (*types.Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// ListProfiles returns userID's profiles, most recently updated first.
func (db *DB) ListProfiles(ctx context.Context, userID string) ([]types.Profile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []types.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes one of userID's profiles.
func (db *DB) DeleteProfile(ctx context.Context, userID string, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
