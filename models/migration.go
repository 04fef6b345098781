package models

import (
	"log"

	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) {
	err := db.AutoMigrate(
		&User{},
		&Budget{}, &Category{}, &Item{},
		&Salary{},
		&Transaction{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
