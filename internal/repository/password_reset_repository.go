package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hondealz/internal/models"
)

type PasswordResetRepository interface {
	// CreateUnlessRecent inserts the token unless another token for the
	// same user was created after `since`. The guard and the insert run as
	// one statement so two concurrent requests cannot both pass the check;
	// the loser gets ErrResetCooldown.
	CreateUnlessRecent(ctx context.Context, token *models.PasswordResetToken, since time.Time) error
	GetByID(ctx context.Context, id string) (*models.PasswordResetToken, error)
	// GetLatestForUser returns the user's token with the greatest
	// expires_at. Creation time and expiry move together (fixed TTL), but
	// expires_at is the ordering the rest of the workflow keys on.
	GetLatestForUser(ctx context.Context, userID int64) (*models.PasswordResetToken, error)
	// CompleteReset updates the password hash and deletes every reset
	// token of the user in a single transaction.
	CompleteReset(ctx context.Context, userID int64, passwordHash string) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) CreateUnlessRecent(ctx context.Context, token *models.PasswordResetToken, since time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, expires_at, created_at)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM password_reset_tokens
			WHERE user_id = $2 AND created_at > $5
		)
	`

	res, err := r.db.ExecContext(ctx, query, token.ID, token.UserID, token.ExpiresAt, token.CreatedAt, since)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrResetCooldown
	}
	return nil
}

func (r *passwordResetRepository) GetByID(ctx context.Context, id string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM password_reset_tokens
		WHERE id = $1
	`

	var t models.PasswordResetToken
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *passwordResetRepository) GetLatestForUser(ctx context.Context, userID int64) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM password_reset_tokens
		WHERE user_id = $1
		ORDER BY expires_at DESC
		LIMIT 1
	`

	var t models.PasswordResetToken
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *passwordResetRepository) CompleteReset(ctx context.Context, userID int64, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}

	// All tokens go, not just the one used. A stale link from an older
	// email must not survive a successful reset.
	if _, err := tx.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
		return err
	}

	return tx.Commit()
}
