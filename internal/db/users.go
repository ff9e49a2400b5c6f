package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-forge/internal/types"
)

const userColumns = `id, email, stripe_customer_id, plan_key, generations_used, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	if err := row.Scan(&u.ID, &u.Email, &u.StripeCustomerID, &u.PlanKey, &u.GenerationsUsed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by identity provider id. It returns nil when the user does not exist.
func (db *DB) GetUser(ctx context.Context, id string) (*types.User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// FindOrCreateUser inserts user unless a row with the same id exists, and returns the stored row.
// created reports whether this call inserted it.
func (db *DB) FindOrCreateUser(ctx context.Context, user *types.User) (stored *types.User, created bool, err error) {
	plan := user.PlanKey
	if plan == "" {
		plan = types.PlanFree
	}

	stored, err = scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, stripe_customer_id, plan_key)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING `+userColumns,
		user.ID, user.Email, user.StripeCustomerID, plan,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	stored, err = db.GetUser(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("user %s vanished after insert conflict", user.ID)
	}
	return stored, false, nil
}

// IncrementGenerations adds one to the user's generation counter.
func (db *DB) IncrementGenerations(ctx context.Context, userID string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE users SET generations_used = generations_used + 1, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment generations: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
