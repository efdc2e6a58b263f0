package main

import (
	"log"

	"github.com/recoveryconnect/match-backend/internal/config"
	"github.com/recoveryconnect/match-backend/internal/db"
)

// Standalone seeder: wipes the database and loads the demo dataset.
func main() {
	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedDemoData(database); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Demo data seeded.")
}
