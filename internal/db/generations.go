package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-forge/internal/types"
)

const generationColumns = `id, user_id, profile_id, template_name, template_source, job_description,
	resume, document, pdf_key, status, error, created_at, updated_at`

func scanGeneration(row pgx.Row) (*types.Generation, error) {
	var (
		g          types.Generation
		resumeJSON []byte
	)
	err := row.Scan(&g.ID, &g.UserID, &g.ProfileID, &g.TemplateName, &g.TemplateSource, &g.JobDescription,
		&resumeJSON, &g.Document, &g.PDFKey, &g.Status, &g.Error, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resumeJSON, &g.Resume); err != nil {
		return nil, fmt.Errorf("failed to decode generation resume: %w", err)
	}
	return &g, nil
}

// CreateGeneration inserts g and fills in its ID and timestamps.
func (db *DB) CreateGeneration(ctx context.Context, g *types.Generation) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = types.GenerationPending
	}
	resumeJSON, err := json.Marshal(g.Resume)
	if err != nil {
		return fmt.Errorf("failed to marshal generation resume: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO generations (id, user_id, profile_id, template_name, template_source, job_description,
		                          resume, document, pdf_key, status, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		g.ID, g.UserID, g.ProfileID, g.TemplateName, g.TemplateSource, g.JobDescription,
		resumeJSON, g.Document, g.PDFKey, g.Status, g.Error,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create generation: %w", err)
	}
	return nil
}

// UpdateGeneration stores the outcome fields of g: resume, document, pdf key, status and error.
// The template snapshot is never rewritten.
func (db *DB) UpdateGeneration(ctx context.Context, g *types.Generation) error {
	resumeJSON, err := json.Marshal(g.Resume)
	if err != nil {
		return fmt.Errorf("failed to marshal generation resume: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`UPDATE generations
		 SET resume = $3, document = $4, pdf_key = $5, status = $6, error = $7, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`,
		g.ID, g.UserID, resumeJSON, g.Document, g.PDFKey, g.Status, g.Error,
	).Scan(&g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update generation: %w", err)
	}
	return nil
}

// GetGeneration retrieves one of userID's generations. It returns nil when absent.
func (db *DB) GetGeneration(ctx context.Context, userID string, id uuid.UUID) (*types.Generation, error) {
	g, err := scanGeneration(db.pool.QueryRow(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	return g, nil
}

// ListGenerations returns userID's most recent generations, newest first.
func (db *DB) ListGenerations(ctx context.Context, userID string, limit int) ([]types.Generation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+generationColumns+` FROM generations
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, listLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	generations := []types.Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		generations = append(generations, *g)
	}
	return generations, rows.Err()
}

// DeleteGeneration removes one of userID's generations and returns its PDF object key so the
// caller can remove the stored file.
func (db *DB) DeleteGeneration(ctx context.Context, userID string, id uuid.UUID) (string, error) {
	var pdfKey string
	err := db.pool.QueryRow(ctx,
		`DELETE FROM generations WHERE id = $1 AND user_id = $2 RETURNING pdf_key`,
		id, userID,
	).Scan(&pdfKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to delete generation: %w", err)
	}
	return pdfKey, nil
}
