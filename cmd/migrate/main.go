package main

import (
	"log"

	"github.com/atelierfoods/supply_backend/config"
	"github.com/atelierfoods/supply_backend/models"
)

// migrate runs AutoMigrate against the configured database.
//
//	go run ./cmd/migrate
func main() {
	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
	log.Println("migration complete")
}
