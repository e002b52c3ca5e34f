package repository

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrMotorNotFound      = errors.New("motor not found")
	ErrMotorImageNotFound = errors.New("motor image not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert
	// or update (email, username, photo filename).
	ErrDuplicate = errors.New("duplicate value")
	// ErrResetCooldown is returned when a reset token was created for the
	// same user inside the cooldown window, including the case where a
	// concurrent request won the race.
	ErrResetCooldown = errors.New("reset recently requested")
)
