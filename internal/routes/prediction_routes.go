package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"hondealz/internal/auth"
	"hondealz/internal/config"
	"hondealz/internal/handlers"
	"hondealz/internal/middleware"
	"hondealz/internal/repository"
	"hondealz/internal/services"
	"hondealz/internal/storage"
)

func RegisterPredictionRoutes(router chi.Router, db *sql.DB, cfg *config.Config, s3Config *config.S3Config, tokens *auth.TokenService) {
	predictionHandler := handlers.NewPredictionHandler(
		repository.NewMotorRepository(db),
		repository.NewMotorImageRepository(db),
		services.NewPredictorClient(cfg.PredictorBaseURL, cfg.PredictorAPIKey),
		storage.NewPhotoStore(s3Config),
	)

	router.Route("/predictions", func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))
		r.Post("/image", predictionHandler.RecognizeImage)
		r.Post("/price", predictionHandler.EstimatePrice)
	})
}
