package main

import (
	"log"
	"os"

	"ai-search-be/internal/model"
	"ai-search-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	driver := os.Getenv("DB_DRIVER")
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.Open(driver, dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Running AutoMigrate for %d tables (driver=%s)...", len(model.All()), db.Dialector.Name())
	if err := model.Migrate(db); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	if database.IsPostgres(db) {
		// conversation listing is newest first
		if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations (created_at DESC);`).Error; err != nil {
			log.Printf("Warn: Failed to create index: %v. Continuing...", err)
		}
	}

	log.Println("Migration completed")
}
