package repository

import (
	"context"
	"database/sql"
	"errors"

	"hondealz/internal/models"
)

type MotorImageRepository interface {
	Create(ctx context.Context, image *models.MotorImage) error
	GetByID(ctx context.Context, id int64, userID int64) (*models.MotorImage, error)
	ListByUser(ctx context.Context, userID int64) ([]models.MotorImage, error)
	Delete(ctx context.Context, id int64, userID int64) error
}

type motorImageRepository struct {
	db *sql.DB
}

func NewMotorImageRepository(db *sql.DB) MotorImageRepository {
	return &motorImageRepository{db: db}
}

func (r *motorImageRepository) Create(ctx context.Context, image *models.MotorImage) error {
	query := `
		INSERT INTO motor_images (user_id, filename, model_prediction)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, image.UserID, image.Filename, image.ModelPrediction).
		Scan(&image.ID, &image.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *motorImageRepository) GetByID(ctx context.Context, id int64, userID int64) (*models.MotorImage, error) {
	query := `
		SELECT id, user_id, filename, model_prediction, created_at
		FROM motor_images
		WHERE id = $1 AND user_id = $2
	`

	var img models.MotorImage
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&img.ID, &img.UserID, &img.Filename, &img.ModelPrediction, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMotorImageNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (r *motorImageRepository) ListByUser(ctx context.Context, userID int64) ([]models.MotorImage, error) {
	query := `
		SELECT id, user_id, filename, model_prediction, created_at
		FROM motor_images
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.MotorImage
	for rows.Next() {
		var img models.MotorImage
		if err := rows.Scan(&img.ID, &img.UserID, &img.Filename, &img.ModelPrediction, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

func (r *motorImageRepository) Delete(ctx context.Context, id int64, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM motor_images WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMotorImageNotFound
	}
	return nil
}
