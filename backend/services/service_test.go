package services

import (
	"testing"

	"lostfound/backend/config"
	"lostfound/backend/models"
	"lostfound/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:              "testsecret",
		CommentReportThreshold: 3,
		ItemReportThreshold:    3,
		DefaultPageSize:        20,
	}
}

func principalFor(email, name string) *utils.Principal {
	return &utils.Principal{
		Email:    email,
		Name:     name,
		Verified: true,
	}
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()

	user := &models.User{
		FullName:   name,
		Email:      email,
		Password:   "placeholder",
		IsVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Color: "#123456"}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedItem(t *testing.T, db *gorm.DB, reporter *models.User, category *models.Category, status models.ItemStatus) *models.Item {
	t.Helper()

	item := &models.Item{
		Name:       "Black umbrella",
		Type:       models.TypeLost,
		Status:     status,
		Latitude:   52.52,
		Longitude:  13.405,
		CategoryID: category.ID,
		ReporterID: reporter.ID,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
