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

func RegisterUserRoutes(router chi.Router, db *sql.DB, cfg *config.Config, s3Config *config.S3Config, tokens *auth.TokenService) {
	userHandler := handlers.NewUserHandler(
		repository.NewUserRepository(db),
		auth.NewPasswordHasher(cfg.BcryptCost),
		storage.NewPhotoStore(s3Config),
	)

	router.Route("/users/me", func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))
		r.Get("/", userHandler.Me)
		r.Put("/", userHandler.UpdateMe)
		r.Delete("/", userHandler.DeleteMe)
		r.Put("/password", userHandler.ChangePassword)
		r.Put("/photo", userHandler.UploadPhoto)
		r.Delete("/photo", userHandler.DeletePhoto)
	})
}
