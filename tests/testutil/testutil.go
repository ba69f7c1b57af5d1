package testutil

import (
	"os"
	"testing"

	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// EnsureTestEnvironment sets GO_ENV=test when it is unset and fails when it
// names any other environment. Use this in TestMain.
func EnsureTestEnvironment() bool {
	switch os.Getenv("GO_ENV") {
	case "":
		return os.Setenv("GO_ENV", "test") == nil
	case "test":
		return true
	default:
		return false
	}
}

// NewTestDB opens a private in-memory sqlite database with the schema
// migrated and installs it with config.SetDB.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	// one connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	original := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(original)
		sqlDB.Close()
	})
	return db
}

// SeedOrder stores an order for the tests to generate
func SeedOrder(t *testing.T, db *gorm.DB, orderNumber string, cfg models.ChatbotConfig, company models.CompanyInfo) models.Order {
	t.Helper()

	order := models.NewOrder(orderNumber, cfg, company)
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order %s: %v", orderNumber, err)
	}
	return order
}
