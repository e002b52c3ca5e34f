package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"hondealz/internal/auth"
	"hondealz/internal/repository"
)

type mailerSpy struct {
	to      string
	subject string
	body    string
	sent    int
}

func (m *mailerSpy) Send(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sent++
	return nil
}

func newResetService(db *sql.DB, mailer EmailSender, now time.Time) *PasswordResetService {
	svc := NewPasswordResetService(
		repository.NewUserRepository(db),
		repository.NewPasswordResetRepository(db),
		auth.NewPasswordHasher(bcrypt.MinCost),
		mailer,
		"https://app.hondealz.example",
		1440*time.Minute,
		10*time.Minute,
	)
	svc.now = func() time.Time { return now }
	return svc
}

func expectUserByEmail(mock sqlmock.Sqlmock, email string, id int64, created time.Time) {
	mock.ExpectQuery(`SELECT id, email, user_name, name, photo_file, password_hash, created_at\s+FROM users\s+WHERE LOWER\(email\)`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "user_name", "name", "photo_file", "password_hash", "created_at"}).
			AddRow(id, email, "rider", "Rider", nil, "hash", created))
}

func expectUserByID(mock sqlmock.Sqlmock, id int64, email string, created time.Time) {
	mock.ExpectQuery(`SELECT id, email, user_name, name, photo_file, password_hash, created_at\s+FROM users\s+WHERE id =`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "user_name", "name", "photo_file", "password_hash", "created_at"}).
			AddRow(id, email, "rider", "Rider", nil, "hash", created))
}

func expectTokenByID(mock sqlmock.Sqlmock, id string, userID int64, expires, created time.Time) {
	mock.ExpectQuery(`SELECT id, user_id, expires_at, created_at\s+FROM password_reset_tokens\s+WHERE id =`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow(id, userID, expires, created))
}

func expectLatestToken(mock sqlmock.Sqlmock, userID int64, id string, expires, created time.Time) {
	mock.ExpectQuery(`SELECT id, user_id, expires_at, created_at\s+FROM password_reset_tokens\s+WHERE user_id =`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow(id, userID, expires, created))
}

func TestRequestIssuesTokenAndSendsEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mailer := &mailerSpy{}
	svc := newResetService(db, mailer, now)

	expectUserByEmail(mock, "a@b.com", 7, now.Add(-time.Hour))
	mock.ExpectExec("INSERT INTO password_reset_tokens").
		WithArgs(sqlmock.AnyArg(), int64(7), now.Add(1440*time.Minute), now, now.Add(-10*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, err := svc.Request(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if token.ID == "" || token.UserID != 7 {
		t.Fatalf("unexpected token %+v", token)
	}
	if want := now.Add(1440 * time.Minute); !token.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, token.ExpiresAt)
	}
	if mailer.sent != 1 || mailer.to != "a@b.com" {
		t.Fatalf("expected one reset email to a@b.com, got %+v", mailer)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRequestWithinCooldownFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mailer := &mailerSpy{}
	svc := newResetService(db, mailer, now)

	expectUserByEmail(mock, "a@b.com", 7, now.Add(-time.Hour))
	// The conditional insert finds a token created inside the window and
	// inserts nothing. Same outcome whether the earlier token came from
	// five minutes ago or from a concurrent request.
	mock.ExpectExec("INSERT INTO password_reset_tokens").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := svc.Request(context.Background(), "a@b.com"); !errors.Is(err, ErrResetCooldown) {
		t.Fatalf("expected ErrResetCooldown, got %v", err)
	}
	if mailer.sent != 0 {
		t.Fatal("no email must be sent on cooldown")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRequestAfterCooldownIssuesDifferentToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mailer := &mailerSpy{}
	svc := newResetService(db, mailer, start)

	expectUserByEmail(mock, "a@b.com", 7, start.Add(-time.Hour))
	mock.ExpectExec("INSERT INTO password_reset_tokens").WillReturnResult(sqlmock.NewResult(0, 1))

	first, err := svc.Request(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("first Request: %v", err)
	}

	// 11 minutes later the cooldown has elapsed even though the first
	// token is still far from its own expiry.
	svc.now = func() time.Time { return start.Add(11 * time.Minute) }
	expectUserByEmail(mock, "a@b.com", 7, start.Add(-time.Hour))
	mock.ExpectExec("INSERT INTO password_reset_tokens").WillReturnResult(sqlmock.NewResult(0, 1))

	second, err := svc.Request(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("second Request: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected a fresh token id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRequestUnknownEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	mock.ExpectQuery(`FROM users\s+WHERE LOWER\(email\)`).
		WithArgs("ghost@b.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := svc.Request(context.Background(), "ghost@b.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveReturnsOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	expectTokenByID(mock, "tok-1", 7, now.Add(time.Hour), now.Add(-time.Minute))
	expectLatestToken(mock, 7, "tok-1", now.Add(time.Hour), now.Add(-time.Minute))
	expectUserByID(mock, 7, "a@b.com", now.Add(-time.Hour))

	u, err := svc.Resolve(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if u.ID != 7 || u.Email != "a@b.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveSupersededTokenNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	// tok-1 is still unexpired, but a newer tok-2 exists for the same
	// account. The stale link must not resolve.
	expectTokenByID(mock, "tok-1", 7, now.Add(time.Hour), now.Add(-20*time.Minute))
	expectLatestToken(mock, 7, "tok-2", now.Add(2*time.Hour), now.Add(-time.Minute))

	if _, err := svc.Resolve(context.Background(), "tok-1"); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveExpiredTokenNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	expectTokenByID(mock, "tok-old", 7, now.Add(-time.Second), now.Add(-25*time.Hour))

	if _, err := svc.Resolve(context.Background(), "tok-old"); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveUnknownTokenNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	mock.ExpectQuery(`FROM password_reset_tokens\s+WHERE id =`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := svc.Resolve(context.Background(), "nope"); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConsumeUpdatesPasswordAndDeletesAllTokens(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	expectTokenByID(mock, "tok-2", 7, now.Add(time.Hour), now.Add(-time.Minute))
	expectUserByID(mock, 7, "a@b.com", now.Add(-time.Hour))

	// Password update and token purge share one transaction.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM password_reset_tokens").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := svc.Consume(context.Background(), "tok-2", "Abcd1234"); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConsumeRejectsPasswordEqualToEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	expectTokenByID(mock, "tok-2", 7, now.Add(time.Hour), now.Add(-time.Minute))
	expectUserByID(mock, 7, "a@b.com", now.Add(-time.Hour))

	if err := svc.Consume(context.Background(), "tok-2", "a@b.com"); !errors.Is(err, ErrPasswordMatchesEmail) {
		t.Fatalf("expected ErrPasswordMatchesEmail, got %v", err)
	}

	// No transaction was opened, nothing was mutated.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConsumeUnknownTokenNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newResetService(db, &mailerSpy{}, now)

	mock.ExpectQuery(`FROM password_reset_tokens\s+WHERE id =`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	if err := svc.Consume(context.Background(), "gone", "Abcd1234"); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
