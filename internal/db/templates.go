package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-forge/internal/types"
)

const templateColumns = `id, user_id, name, source, created_at`

func scanTemplate(row pgx.Row) (*types.Template, error) {
	var (
		t      types.Template
		userID *string
	)
	if err := row.Scan(&t.ID, &userID, &t.Name, &t.Source, &t.CreatedAt); err != nil {
		return nil, err
	}
	if userID != nil {
		t.UserID = *userID
	}
	return &t, nil
}

func nullableUser(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

// CreateTemplate stores a template owned by t.UserID, or a built-in one when UserID is empty.
func (db *DB) CreateTemplate(ctx context.Context, t *types.Template) (*types.Template, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	created, err := scanTemplate(db.pool.QueryRow(ctx,
		`INSERT INTO templates (id, user_id, name, source)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+templateColumns,
		t.ID, nullableUser(t.UserID), t.Name, t.Source,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return created, nil
}

// SeedTemplate creates or replaces the built-in template called name.
func (db *DB) SeedTemplate(ctx context.Context, name, source string) (*types.Template, error) {
	seeded, err := scanTemplate(db.pool.QueryRow(ctx,
		`INSERT INTO templates (id, user_id, name, source)
		 VALUES ($1, NULL, $2, $3)
		 ON CONFLICT (name) WHERE user_id IS NULL DO UPDATE SET source = EXCLUDED.source
		 RETURNING `+templateColumns,
		uuid.New(), name, source,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to seed template %s: %w", name, err)
	}
	return seeded, nil
}

// GetTemplate retrieves a template visible to userID: one of theirs or a built-in.
// It returns nil when absent.
func (db *DB) GetTemplate(ctx context.Context, userID string, id uuid.UUID) (*types.Template, error) {
	t, err := scanTemplate(db.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// ListTemplates returns the built-in templates followed by userID's own, each group by name.
func (db *DB) ListTemplates(ctx context.Context, userID string) ([]types.Template, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM templates
		 WHERE user_id IS NULL OR user_id = $1
		 ORDER BY user_id IS NOT NULL, name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []types.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}
