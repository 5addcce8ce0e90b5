package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"cinespot/internal/config"
	"cinespot/internal/database"
	"cinespot/internal/domain/auth"
	"cinespot/internal/domain/location"
	"cinespot/internal/search"
)

func strPtr(s string) *string { return &s }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&location.Location{}, &auth.Admin{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM locations")
	db.Exec("DELETE FROM admins")

	log.Println("Creating admin...")
	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err := db.Create(&auth.Admin{
		Email:        "admin@cinespot.local",
		PasswordHash: string(adminHash),
	}).Error; err != nil {
		log.Fatal("failed to create admin:", err)
	}

	log.Println("Creating locations...")
	locations := []location.Location{
		{
			ID:          uuid.New().String(),
			Name:        "Glenfinnan Viaduct",
			Description: "Curved railway viaduct crossed by the Hogwarts Express in the flying car scene.",
			Movie:       strPtr("Harry Potter and the Chamber of Secrets"),
			Latitude:    56.8762,
			Longitude:   -5.4312,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Timberline Lodge",
			Description: "Mountain hotel whose exterior stood in for the Overlook in the opening aerial shots.",
			Movie:       strPtr("The Shining"),
			Latitude:    45.3311,
			Longitude:   -121.7110,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Skellig Michael",
			Description: "Remote island monastery used as Luke Skywalker's refuge, steep stone staircase and beehive huts.",
			Movie:       strPtr("Star Wars: The Force Awakens"),
			Latitude:    51.7706,
			Longitude:   -10.5405,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Hotel Sidi Driss",
			Description: "Underground troglodyte hotel that served as the Lars homestead interior on Tatooine.",
			Movie:       strPtr("Star Wars: A New Hope"),
			Latitude:    33.5445,
			Longitude:   9.9708,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Katz's Delicatessen",
			Description: "Lower East Side deli, site of the famous faked-it lunch counter scene featuring a waterfall of laughter.",
			Movie:       strPtr("When Harry Met Sally"),
			Latitude:    40.7223,
			Longitude:   -73.9874,
		},
	}

	for i := range locations {
		if err := db.Create(&locations[i]).Error; err != nil {
			log.Fatal("failed to create location:", err)
		}
	}

	// The seeder writes straight to the store, so the external index
	// has to be pushed explicitly.
	if cfg.MeiliHost != "" {
		sc := search.NewClient(cfg.MeiliHost, cfg.MeiliAPIKey)
		if err := sc.InitIndex(); err != nil {
			log.Println("WARNING: Meilisearch unavailable, seeded records not indexed:", err)
		} else if err := sc.Reindex(context.Background(), locations); err != nil {
			log.Println("WARNING: failed to index seeded records:", err)
		}
	}

	log.Printf("Seed complete: %d locations, 1 admin (admin@cinespot.local / admin123)", len(locations))
}
