package services_test

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/angkor-pos/internal/models"
)

// newTestDB opens an in-memory SQLite database private to the calling test
// and migrates the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	migrations := []interface{}{
		&models.User{},
		&models.Table{},
		&models.Customer{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	}
	for _, migration := range migrations {
		if err := db.AutoMigrate(migration); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
	}
	return db
}
