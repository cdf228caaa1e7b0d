package utils

import (
	"fmt"
	"log"

	"lostfound/backend/config"
	"lostfound/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the Postgres connection and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	seedCategories(db)
	return db, nil
}

// Migrate creates or updates the schema for every entity, including the
// unique indexes the moderation rules rely on.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Item{},
		&models.ItemReport{},
		&models.Comment{},
		&models.CommentReport{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func seedCategories(db *gorm.DB) {
	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return
	}

	categories := []models.Category{
		{Name: "Electronics", Color: "#2563eb"},
		{Name: "Documents", Color: "#d97706"},
		{Name: "Keys", Color: "#64748b"},
		{Name: "Clothing", Color: "#16a34a"},
		{Name: "Pets", Color: "#db2777"},
		{Name: "Other", Color: "#9333ea"},
	}

	for _, category := range categories {
		if err := db.Create(&category).Error; err != nil {
			log.Printf("Failed to seed category %s: %v", category.Name, err)
		}
	}
}
