package main

import (
	"log"
	"os"

	"crimson-crm-be/pkg/database"
	"crimson-crm-be/pkg/kvstore"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Key-value table backing hidden citations and the feedback log
	log.Println("Migrating kv_entries...")
	if err := kvstore.NewGormStore(db).Migrate(); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	var count int64
	if err := db.Model(&kvstore.Entry{}).Count(&count).Error; err != nil {
		log.Printf("Warn: Failed to count entries: %v", err)
	}
	log.Printf("✅ Migration complete (%d entries)", count)
}
