package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"hondealz/internal/auth"
	"hondealz/internal/config"
	"hondealz/internal/handlers"
	"hondealz/internal/middleware"
	"hondealz/internal/repository"
	"hondealz/internal/storage"
)

func RegisterMotorRoutes(router chi.Router, db *sql.DB, s3Config *config.S3Config, tokens *auth.TokenService) {
	motorHandler := handlers.NewMotorHandler(
		repository.NewMotorRepository(db),
		repository.NewMotorImageRepository(db),
		storage.NewPhotoStore(s3Config),
	)

	router.Route("/motors", func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))
		r.Get("/", motorHandler.ListMotors)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", motorHandler.GetMotor)
			r.Put("/", motorHandler.UpdateMotor)
			r.Delete("/", motorHandler.DeleteMotor)
		})
	})

	router.Route("/motor-images", func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))
		r.Get("/", motorHandler.ListImages)
		r.Delete("/{id}", motorHandler.DeleteImage)
	})
}
