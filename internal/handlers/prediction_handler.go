package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"hondealz/internal/middleware"
	"hondealz/internal/models"
	"hondealz/internal/repository"
	"hondealz/internal/services"
	"hondealz/internal/storage"
)

const maxImageSize = 10 << 20 // 10MB

// PredictionHandler is the pass-through to the external model-serving API.
// Every successful prediction is recorded against the requesting user.
type PredictionHandler struct {
	motors    repository.MotorRepository
	images    repository.MotorImageRepository
	predictor *services.PredictorClient
	photos    *storage.PhotoStore
	v         *validator.Validate
}

func NewPredictionHandler(
	motors repository.MotorRepository,
	images repository.MotorImageRepository,
	predictor *services.PredictorClient,
	photos *storage.PhotoStore,
) *PredictionHandler {
	return &PredictionHandler{
		motors:    motors,
		images:    images,
		predictor: predictor,
		photos:    photos,
		v:         validator.New(),
	}
}

// @Tags Predictions
// @Summary Recognize the motorcycle model on a photo
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Motorcycle photo"
// @Success 201 {object} models.MotorImage
// @Failure 400 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/predictions/image [post]
func (h *PredictionHandler) RecognizeImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
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

	// The image body is needed twice: once for the model, once for S3.
	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read file")
		return
	}

	prediction, err := h.predictor.RecognizeImage(r.Context(), header.Filename, bytes.NewReader(data))
	if err != nil {
		log.Printf("Image recognition failed for user %d: %v", userID, err)
		writeJSONError(w, http.StatusBadGateway, "prediction_failed", "Image recognition is unavailable")
		return
	}

	filename := storage.RandomObjectName(contentType)
	if err := h.photos.Upload(r.Context(), filename, bytes.NewReader(data), contentType); err != nil {
		log.Printf("Failed to upload motor image for user %d: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "upload_failed", "Failed to store image")
		return
	}

	img := &models.MotorImage{
		UserID:          userID,
		Filename:        filename,
		ModelPrediction: prediction.Model,
	}
	if err := h.images.Create(r.Context(), img); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "save_failed", "Failed to save prediction")
		return
	}

	img.URL = h.photos.PublicURL(filename)
	img.Confidence = prediction.Confidence
	writeJSON(w, http.StatusCreated, img)
}

// @Tags Predictions
// @Summary Estimate the second-hand price of a motorcycle
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.PricePredictRequest true "Motor features"
// @Success 201 {object} models.Motor
// @Failure 400 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/predictions/price [post]
func (h *PredictionHandler) EstimatePrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing authentication")
		return
	}

	var req models.PricePredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if req.MotorImageID != nil {
		if _, err := h.images.GetByID(r.Context(), *req.MotorImageID, userID); err != nil {
			if errors.Is(err, repository.ErrMotorImageNotFound) {
				writeJSONError(w, http.StatusBadRequest, "validation_error", "motor_image_id not found")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "save_failed", "Failed to validate image")
			return
		}
	}

	estimate, err := h.predictor.EstimatePrice(r.Context(), &req)
	if err != nil {
		log.Printf("Price estimation failed for user %d: %v", userID, err)
		writeJSONError(w, http.StatusBadGateway, "prediction_failed", "Price estimation is unavailable")
		return
	}

	motor := &models.Motor{
		UserID:         userID,
		MotorImageID:   req.MotorImageID,
		Model:          req.Model,
		Year:           req.Year,
		Mileage:        req.Mileage,
		Province:       req.Province,
		EngineSize:     req.EngineSize,
		PredictedPrice: estimate.PredictedPrice,
		MinPrice:       estimate.MinPrice,
		MaxPrice:       estimate.MaxPrice,
	}
	if err := h.motors.Create(r.Context(), motor); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "save_failed", "Failed to save prediction")
		return
	}

	writeJSON(w, http.StatusCreated, motor)
}
