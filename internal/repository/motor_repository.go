package repository

import (
	"context"
	"database/sql"
	"errors"

	"hondealz/internal/models"
)

type MotorRepository interface {
	Create(ctx context.Context, motor *models.Motor) error
	GetByID(ctx context.Context, id int64, userID int64) (*models.Motor, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Motor, error)
	Update(ctx context.Context, id int64, userID int64, req *models.UpdateMotorRequest) error
	Delete(ctx context.Context, id int64, userID int64) error
}

type motorRepository struct {
	db *sql.DB
}

func NewMotorRepository(db *sql.DB) MotorRepository {
	return &motorRepository{db: db}
}

func (r *motorRepository) Create(ctx context.Context, motor *models.Motor) error {
	query := `
		INSERT INTO motors (user_id, motor_image_id, model, year, mileage, province, engine_size,
			predicted_price, min_price, max_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	return r.db.QueryRowContext(ctx, query,
		motor.UserID, motor.MotorImageID, motor.Model, motor.Year, motor.Mileage,
		motor.Province, motor.EngineSize, motor.PredictedPrice, motor.MinPrice, motor.MaxPrice,
	).Scan(&motor.ID, &motor.CreatedAt)
}

func (r *motorRepository) GetByID(ctx context.Context, id int64, userID int64) (*models.Motor, error) {
	query := `
		SELECT id, user_id, motor_image_id, model, year, mileage, province, engine_size,
			predicted_price, min_price, max_price, created_at
		FROM motors
		WHERE id = $1 AND user_id = $2
	`

	var m models.Motor
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&m.ID, &m.UserID, &m.MotorImageID, &m.Model, &m.Year, &m.Mileage, &m.Province,
		&m.EngineSize, &m.PredictedPrice, &m.MinPrice, &m.MaxPrice, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMotorNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *motorRepository) ListByUser(ctx context.Context, userID int64) ([]models.Motor, error) {
	query := `
		SELECT id, user_id, motor_image_id, model, year, mileage, province, engine_size,
			predicted_price, min_price, max_price, created_at
		FROM motors
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var motors []models.Motor
	for rows.Next() {
		var m models.Motor
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.MotorImageID, &m.Model, &m.Year, &m.Mileage, &m.Province,
			&m.EngineSize, &m.PredictedPrice, &m.MinPrice, &m.MaxPrice, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		motors = append(motors, m)
	}

	return motors, rows.Err()
}

func (r *motorRepository) Update(ctx context.Context, id int64, userID int64, req *models.UpdateMotorRequest) error {
	query := `
		UPDATE motors
		SET model = COALESCE($1, model),
			year = COALESCE($2, year),
			mileage = COALESCE($3, mileage),
			province = COALESCE($4, province),
			engine_size = COALESCE($5, engine_size)
		WHERE id = $6 AND user_id = $7
		RETURNING id
	`

	var outID int64
	err := r.db.QueryRowContext(ctx, query, req.Model, req.Year, req.Mileage, req.Province, req.EngineSize, id, userID).Scan(&outID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMotorNotFound
		}
		return err
	}
	return nil
}

func (r *motorRepository) Delete(ctx context.Context, id int64, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM motors WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMotorNotFound
	}
	return nil
}
