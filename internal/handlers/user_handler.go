package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"hondealz/internal/auth"
	"hondealz/internal/middleware"
	"hondealz/internal/models"
	"hondealz/internal/repository"
	"hondealz/internal/storage"
)

const maxPhotoSize = 5 << 20 // 5MB

type UserHandler struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	photos *storage.PhotoStore
	v      *validator.Validate
}

func NewUserHandler(users repository.UserRepository, hasher auth.PasswordHasher, photos *storage.PhotoStore) *UserHandler {
	return &UserHandler{
		users:  users,
		hasher: hasher,
		photos: photos,
		v:      validator.New(),
	}
}

func (h *UserHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return nil, false
	}
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSONError(w, http.StatusNotFound, "user_not_found", "User not found")
			return nil, false
		}
		writeJSONError(w, http.StatusInternalServerError, "get_user_failed", "Failed to get user")
		return nil, false
	}
	if u.PhotoFile != nil {
		url := h.photos.PublicURL(*u.PhotoFile)
		u.PhotoURL = &url
	}
	return u, true
}

// @Tags Account
// @Summary Get the authenticated user's profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Tags Account
// @Summary Update the authenticated user's profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.UpdateUserRequest true "Update request"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.users.UpdateProfile(r.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			writeJSONError(w, http.StatusNotFound, "user_not_found", "User not found")
		case errors.Is(err, repository.ErrDuplicate):
			writeJSONError(w, http.StatusConflict, "already_registered", "Email or username already in use")
		default:
			writeJSONError(w, http.StatusInternalServerError, "update_failed", "Failed to update user")
		}
		return
	}

	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Tags Account
// @Summary Change password using the current one
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.ChangePasswordRequest true "Change password request"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/users/me/password [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if !h.hasher.Verify(req.OldPassword, u.PasswordHash) {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Old password is incorrect")
		return
	}
	if req.NewPassword == u.Email {
		writeJSONError(w, http.StatusUnprocessableEntity, "weak_password", "New password must not equal your email")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "change_failed", "Failed to change password")
		return
	}
	if err := h.users.UpdatePasswordHash(r.Context(), u.ID, hash); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "change_failed", "Failed to change password")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Password changed")
}

// @Tags Account
// @Summary Upload or replace the profile photo
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Photo file"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/users/me/photo [put]
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		writeJSONError(w, http.StatusBadRequest, "validation_error", "Only JPEG, PNG or WebP images are accepted")
		return
	}

	filename := storage.RandomObjectName(contentType)
	if err := h.photos.Upload(r.Context(), filename, file, contentType); err != nil {
		log.Printf("Failed to upload photo for user %d: %v", u.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "upload_failed", "Failed to upload photo")
		return
	}

	if err := h.users.UpdatePhotoFile(r.Context(), u.ID, &filename); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "upload_failed", "Failed to save photo")
		return
	}

	// Old object is orphaned once the row points at the new one.
	if u.PhotoFile != nil {
		if err := h.photos.Delete(r.Context(), *u.PhotoFile); err != nil {
			log.Printf("Failed to delete old photo %s: %v", *u.PhotoFile, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"photo_profile": h.photos.PublicURL(filename)})
}

// @Tags Account
// @Summary Remove the profile photo
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/users/me/photo [delete]
func (h *UserHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if u.PhotoFile == nil {
		writeJSONError(w, http.StatusNotFound, "photo_not_found", "No profile photo set")
		return
	}

	if err := h.users.UpdatePhotoFile(r.Context(), u.ID, nil); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "delete_failed", "Failed to remove photo")
		return
	}
	if err := h.photos.Delete(r.Context(), *u.PhotoFile); err != nil {
		log.Printf("Failed to delete photo %s: %v", *u.PhotoFile, err)
	}

	writeJSONMessage(w, http.StatusOK, "Photo removed")
}

// @Tags Account
// @Summary Delete the authenticated user's account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/users/me [delete]
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), u.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSONError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete user")
		return
	}
	if u.PhotoFile != nil {
		if err := h.photos.Delete(r.Context(), *u.PhotoFile); err != nil {
			log.Printf("Failed to delete photo %s: %v", *u.PhotoFile, err)
		}
	}

	writeJSONMessage(w, http.StatusOK, "Account deleted")
}
