package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cinespot/internal/config"
	"cinespot/internal/database"
	"cinespot/internal/domain/auth"
	"cinespot/internal/domain/location"
	"cinespot/internal/domain/movie"
	"cinespot/internal/domain/upload"
	"cinespot/internal/middleware"
	jwtsvc "cinespot/internal/pkg/jwt"
	"cinespot/internal/search"
	"cinespot/internal/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&location.Location{}, &auth.Admin{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatal("failed to create upload directory:", err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var indexer location.Indexer
	if cfg.MeiliHost != "" {
		sc := search.NewClient(cfg.MeiliHost, cfg.MeiliAPIKey)
		if err := sc.InitIndex(); err != nil {
			log.Println("WARNING: Meilisearch unavailable, using store search:", err)
		} else {
			indexer = sc
		}
	}

	uploadSvc := upload.NewService(cfg.UploadDir, "/uploads")

	locationRepo := location.NewRepository(db)
	locationSvc := location.NewService(locationRepo, uploadSvc, indexer, cfg.PublicBaseURL)
	locationHandler := location.NewHandler(locationSvc)

	// Catch up the index with records written while it was unavailable
	// (or seeded directly into the store).
	if err := locationSvc.SyncIndex(context.Background()); err != nil {
		log.Println("WARNING: search index sync failed:", err)
	}

	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, j)
	authHandler := auth.NewHandler(authSvc)

	if err := authSvc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("failed to bootstrap admin:", err)
	}

	movieClient := movie.NewClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey)
	movieHandler := movie.NewHandler(movieClient)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.SetHTMLTemplate(web.Templates())
	web.RegisterRoutes(r, web.NewHandler())

	// Uploaded images are served read-only from the upload root.
	r.Static("/uploads", cfg.UploadDir)

	v1 := r.Group("/api/v1")
	{
		auth.RegisterRoutes(v1, authHandler)
		movie.RegisterRoutes(v1, movieHandler)

		protected := v1.Group("/")
		protected.Use(middleware.RequireAdmin(j))

		location.RegisterRoutes(v1, protected, locationHandler)
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
