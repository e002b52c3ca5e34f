package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"hondealz/internal/auth"
	"hondealz/internal/models"
	"hondealz/internal/repository"
)

var (
	// ErrResetCooldown: a reset was requested again before the per-account
	// cooldown elapsed. Distinct from the token's own TTL.
	ErrResetCooldown = errors.New("password reset requested too recently")
	// ErrResetTokenNotFound covers unknown, expired and superseded tokens
	// alike so a caller cannot probe which check failed.
	ErrResetTokenNotFound = errors.New("reset token not found")
	// ErrPasswordMatchesEmail rejects the one password the account must
	// never have: its own email.
	ErrPasswordMatchesEmail = errors.New("new password must not equal account email")
	ErrUserNotFound         = errors.New("user not found")
)

// PasswordResetService owns the reset-token lifecycle: issue with cooldown,
// resolve for display, consume exactly once. Token state is never stored as
// a flag; it is computed from row presence and expiry at read time.
type PasswordResetService struct {
	users  repository.UserRepository
	resets repository.PasswordResetRepository
	hasher auth.PasswordHasher
	mailer EmailSender

	frontendURL string
	tokenTTL    time.Duration
	cooldown    time.Duration
	now         func() time.Time
}

func NewPasswordResetService(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
	hasher auth.PasswordHasher,
	mailer EmailSender,
	frontendURL string,
	tokenTTL, cooldown time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		users:       users,
		resets:      resets,
		hasher:      hasher,
		mailer:      mailer,
		frontendURL: frontendURL,
		tokenTTL:    tokenTTL,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// Request issues a fresh reset token for the account behind email, unless
// one was already issued inside the cooldown window. The email send is best
// effort; a failed send never fails the request.
func (s *PasswordResetService) Request(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	now := s.now().UTC()
	token := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}

	if err := s.resets.CreateUnlessRecent(ctx, token, now.Add(-s.cooldown)); err != nil {
		if errors.Is(err, repository.ErrResetCooldown) {
			return nil, ErrResetCooldown
		}
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/password-reset/%s", s.frontendURL, token.ID)
	body := "Someone requested a password reset for your HonDealz account.\n\n" +
		"Open the link below to choose a new password:\n\n" + resetLink +
		"\n\nIf this wasn't you, ignore this email."
	if err := s.mailer.Send(user.Email, "Reset Password HonDealz App", body); err != nil {
		log.Printf("Failed to send reset email to user %d: %v", user.ID, err)
	}

	return token, nil
}

// Resolve returns the owning user if tokenID exists, is unexpired and is
// the account's most recent token by expiry. An older link that was
// superseded by a newer request resolves to not-found even before it
// expires.
func (s *PasswordResetService) Resolve(ctx context.Context, tokenID string) (*models.User, error) {
	token, err := s.liveToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	latest, err := s.resets.GetLatestForUser(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("look up latest reset token: %w", err)
	}
	if latest.ID != token.ID {
		return nil, ErrResetTokenNotFound
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}

// Consume sets a new password for the token's owner and deletes every
// outstanding reset token of that account in one transaction, so neither a
// replayed link nor a second token issued in between survives the reset.
func (s *PasswordResetService) Consume(ctx context.Context, tokenID string, newPassword string) error {
	token, err := s.liveToken(ctx, tokenID)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrResetTokenNotFound
		}
		return fmt.Errorf("look up user: %w", err)
	}

	if newPassword == user.Email {
		return ErrPasswordMatchesEmail
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.resets.CompleteReset(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("complete reset: %w", err)
	}
	return nil
}

// liveToken fetches a token and applies the expiry check. Expired tokens
// are inert rows; nothing purges them here.
func (s *PasswordResetService) liveToken(ctx context.Context, tokenID string) (*models.PasswordResetToken, error) {
	token, err := s.resets.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("look up reset token: %w", err)
	}
	if s.now().UTC().After(token.ExpiresAt) {
		return nil, ErrResetTokenNotFound
	}
	return token, nil
}
