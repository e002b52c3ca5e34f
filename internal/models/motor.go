package models

import "time"

// Motor is one saved price estimate, owned by the user who requested it.
type Motor struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	MotorImageID   *int64    `json:"motor_image_id,omitempty"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	Mileage        int       `json:"mileage"`
	Province       string    `json:"province"`
	EngineSize     int       `json:"engine_size"`
	PredictedPrice int64     `json:"predicted_price"`
	MinPrice       int64     `json:"min_price"`
	MaxPrice       int64     `json:"max_price"`
	CreatedAt      time.Time `json:"created_at"`
}

type PricePredictRequest struct {
	Model        string `json:"model" validate:"required"`
	Year         int    `json:"year" validate:"required,gte=1990"`
	Mileage      int    `json:"mileage" validate:"gte=0"`
	Province     string `json:"province" validate:"required"`
	EngineSize   int    `json:"engine_size" validate:"required,gt=0"`
	MotorImageID *int64 `json:"motor_image_id,omitempty"`
}

type UpdateMotorRequest struct {
	Model      *string `json:"model,omitempty"`
	Year       *int    `json:"year,omitempty" validate:"omitempty,gte=1990"`
	Mileage    *int    `json:"mileage,omitempty" validate:"omitempty,gte=0"`
	Province   *string `json:"province,omitempty"`
	EngineSize *int    `json:"engine_size,omitempty" validate:"omitempty,gt=0"`
}
