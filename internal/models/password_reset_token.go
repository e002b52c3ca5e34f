package models

import "time"

// PasswordResetToken is a single-use, time-boxed credential. The random id
// itself is the secret mailed to the user. There is no stored "used" flag:
// consuming a token deletes every token of the owner.
type PasswordResetToken struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
