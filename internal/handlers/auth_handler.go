package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"hondealz/internal/auth"
	"hondealz/internal/config"
	"hondealz/internal/models"
	"hondealz/internal/repository"
	"hondealz/internal/services"
)

type AuthHandler struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	hasher auth.PasswordHasher
	reset  *services.PasswordResetService
	cfg    *config.Config
	v      *validator.Validate
}

func NewAuthHandler(db *sql.DB, cfg *config.Config, mailer services.EmailSender) *AuthHandler {
	users := repository.NewUserRepository(db)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	return &AuthHandler{
		users:  users,
		tokens: auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL),
		hasher: hasher,
		reset: services.NewPasswordResetService(
			users,
			repository.NewPasswordResetRepository(db),
			hasher,
			mailer,
			cfg.FrontendURL,
			cfg.ResetTokenTTL,
			cfg.ResetCooldown,
		),
		cfg: cfg,
		v:   validator.New(),
	}
}

// @Tags Auth
// @Summary Register a new account
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Register request"
// @Success 201 {object} models.RegisterResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "register_failed", "Failed to create user")
		return
	}

	u := &models.User{
		Email:        req.Email,
		UserName:     req.UserName,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeJSONError(w, http.StatusConflict, "already_registered", "Email or username already in use")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "register_failed", "Failed to create user")
		return
	}

	token, expire, err := h.tokens.IssueAccessToken(u.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "register_failed", "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		User:        u,
		AccessToken: token,
		Expire:      expire,
	})
}

// @Tags Auth
// @Summary Log in with email and password
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}
	if !h.hasher.Verify(req.Password, u.PasswordHash) {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}

	token, expire, err := h.tokens.IssueAccessToken(u.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "login_failed", "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: token, Expire: expire})
}

// @Tags Auth
// @Summary Request a password reset email
// @Accept json
// @Produce json
// @Param body body models.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	token, err := h.reset.Request(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "Account not found")
		case errors.Is(err, services.ErrResetCooldown):
			writeJSONError(w, http.StatusTooManyRequests, "reset_cooldown", "A reset email was sent recently, try again later")
		default:
			writeJSONError(w, http.StatusInternalServerError, "reset_failed", "Failed to request password reset")
		}
		return
	}

	resp := map[string]any{"ok": true}
	if h.cfg.AuthReturnResetToken {
		resp["token"] = token.ID
		resp["expires_at"] = token.ExpiresAt.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Tags Auth
// @Summary Resolve a password reset token
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/auth/password-reset/{token} [get]
func (h *AuthHandler) ResolveResetToken(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "token")
	if tokenID == "" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Reset token not found")
		return
	}

	u, err := h.reset.Resolve(r.Context(), tokenID)
	if err != nil {
		if errors.Is(err, services.ErrResetTokenNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Reset token not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "reset_failed", "Failed to resolve reset token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"email": u.Email})
}

// @Tags Auth
// @Summary Complete a password reset
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param body body models.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/auth/password-reset/{token} [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "token")
	if tokenID == "" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Reset token not found")
		return
	}

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.reset.Consume(r.Context(), tokenID, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrResetTokenNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "Reset token not found")
		case errors.Is(err, services.ErrPasswordMatchesEmail):
			writeJSONError(w, http.StatusUnprocessableEntity, "weak_password", "New password must not equal your email")
		default:
			writeJSONError(w, http.StatusInternalServerError, "reset_failed", "Failed to reset password")
		}
		return
	}

	writeJSONMessage(w, http.StatusOK, "Password reset successful")
}
