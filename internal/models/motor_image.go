package models

import "time"

// MotorImage is an uploaded motorcycle photo together with the label the
// image-recognition model assigned to it.
type MotorImage struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Filename        string    `json:"-"`
	URL             string    `json:"url,omitempty"`
	ModelPrediction string    `json:"model_prediction"`
	Confidence      float64   `json:"confidence,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
