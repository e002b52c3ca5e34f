package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	UserName     string    `json:"username,omitempty"`
	Name         string    `json:"name,omitempty"`
	PhotoFile    *string   `json:"-"`
	PhotoURL     *string   `json:"photo_profile,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	UserName string `json:"username" validate:"required,max=30"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Expire      int64  `json:"expire"`
}

type RegisterResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	Expire      int64  `json:"expire"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	UserName *string `json:"username,omitempty" validate:"omitempty,max=30"`
	Name     *string `json:"name,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
