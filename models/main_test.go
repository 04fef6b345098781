package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. MaxOpenConns is
// pinned to 1 so every session sees the same in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}, &Budget{}, &Category{}, &Item{}, &Salary{}, &Transaction{}))
	return db
}

// testMailer runs in disabled mode (no SMTP_HOST in tests): sends are
// logged and dropped.
func testMailer() *config.Mailer {
	return config.NewMailer(config.GetLogger())
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role UserRole) *User {
	t.Helper()

	hashed, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := &User{
		Name:            name,
		Email:           name + "@example.com",
		Password:        string(hashed),
		Role:            role,
		IsEmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func lenient(s string) utils.LenientDecimal {
	return utils.LenientDecimal{Decimal: utils.ParseDecimalLenient(s)}
}
