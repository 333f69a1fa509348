package main

import (
	"fmt"
	"log"

	"github.com/localnerve/datapackage-registry/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Prints the DDL gorm generates for the registry tables.
func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)

		var indexes []string
		db.Raw("SELECT sql FROM sqlite_master WHERE type='index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
		for _, index := range indexes {
			fmt.Println(index)
		}
	}
}
