package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"hondealz/internal/middleware"
	"hondealz/internal/models"
	"hondealz/internal/repository"
	"hondealz/internal/storage"
)

// MotorHandler serves the per-user prediction history. Ownership comes from
// the JWT subject; a user can never address another user's rows.
type MotorHandler struct {
	motors repository.MotorRepository
	images repository.MotorImageRepository
	photos *storage.PhotoStore
	v      *validator.Validate
}

func NewMotorHandler(motors repository.MotorRepository, images repository.MotorImageRepository, photos *storage.PhotoStore) *MotorHandler {
	return &MotorHandler{
		motors: motors,
		images: images,
		photos: photos,
		v:      validator.New(),
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// @Tags Motors
// @Summary List the authenticated user's price estimates
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Motor
// @Router /api/v1/motors [get]
func (h *MotorHandler) ListMotors(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}

	motors, err := h.motors.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "list_failed", "Failed to list motors")
		return
	}
	if motors == nil {
		motors = []models.Motor{}
	}
	writeJSON(w, http.StatusOK, motors)
}

// @Tags Motors
// @Summary Get one price estimate
// @Security BearerAuth
// @Produce json
// @Param id path int true "Motor ID"
// @Success 200 {object} models.Motor
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/motors/{id} [get]
func (h *MotorHandler) GetMotor(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Motor ID must be an integer")
		return
	}

	motor, err := h.motors.GetByID(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMotorNotFound) {
			writeJSONError(w, http.StatusNotFound, "motor_not_found", "Motor not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "get_failed", "Failed to get motor")
		return
	}
	writeJSON(w, http.StatusOK, motor)
}

// @Tags Motors
// @Summary Update a price estimate's descriptive fields
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Motor ID"
// @Param body body models.UpdateMotorRequest true "Update request"
// @Success 200 {object} models.Motor
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/motors/{id} [put]
func (h *MotorHandler) UpdateMotor(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Motor ID must be an integer")
		return
	}

	var req models.UpdateMotorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.motors.Update(r.Context(), id, userID, &req); err != nil {
		if errors.Is(err, repository.ErrMotorNotFound) {
			writeJSONError(w, http.StatusNotFound, "motor_not_found", "Motor not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "update_failed", "Failed to update motor")
		return
	}

	motor, err := h.motors.GetByID(r.Context(), id, userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "get_failed", "Failed to get motor")
		return
	}
	writeJSON(w, http.StatusOK, motor)
}

// @Tags Motors
// @Summary Delete a price estimate
// @Security BearerAuth
// @Produce json
// @Param id path int true "Motor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/motors/{id} [delete]
func (h *MotorHandler) DeleteMotor(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Motor ID must be an integer")
		return
	}

	if err := h.motors.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrMotorNotFound) {
			writeJSONError(w, http.StatusNotFound, "motor_not_found", "Motor not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete motor")
		return
	}
	writeJSONMessage(w, http.StatusOK, "Motor deleted")
}

// @Tags Motors
// @Summary List the authenticated user's recognized images
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.MotorImage
// @Router /api/v1/motor-images [get]
func (h *MotorHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}

	images, err := h.images.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "list_failed", "Failed to list images")
		return
	}
	if images == nil {
		images = []models.MotorImage{}
	}
	for i := range images {
		images[i].URL = h.photos.PublicURL(images[i].Filename)
	}
	writeJSON(w, http.StatusOK, images)
}

// @Tags Motors
// @Summary Delete a recognized image
// @Security BearerAuth
// @Produce json
// @Param id path int true "Motor image ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/motor-images/{id} [delete]
func (h *MotorHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Image ID must be an integer")
		return
	}

	img, err := h.images.GetByID(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMotorImageNotFound) {
			writeJSONError(w, http.StatusNotFound, "image_not_found", "Image not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "get_failed", "Failed to get image")
		return
	}

	if err := h.images.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrMotorImageNotFound) {
			writeJSONError(w, http.StatusNotFound, "image_not_found", "Image not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete image")
		return
	}
	if err := h.photos.Delete(r.Context(), img.Filename); err != nil {
		log.Printf("Failed to delete image object %s: %v", img.Filename, err)
	}

	writeJSONMessage(w, http.StatusOK, "Image deleted")
}
