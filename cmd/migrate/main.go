package main

import (
	"log"

	"chart-coach-be/internal/config"
	"chart-coach-be/internal/model"
	"chart-coach-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Running AutoMigrate (%s) for chat_sessions and chat_messages...", cfg.Database.Driver)

	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("Migration completed successfully.")
}
