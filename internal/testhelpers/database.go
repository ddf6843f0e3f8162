// Package testhelpers provides fixtures shared by package tests.
package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ogonki/streak-api/internal/infrastructure/database/entities"
)

// NewDB opens a private in-memory SQLite database with the service schema.
// The database disappears when the test finishes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// SeedUser inserts a user row. An empty username stores NULL.
func SeedUser(t *testing.T, db *gorm.DB, telegramID int64, username string) {
	t.Helper()

	row := entities.User{TelegramID: telegramID}
	if username != "" {
		row.Username = &username
	}
	require.NoError(t, db.Create(&row).Error)
}

// SeedStreak inserts a streak row for an already ordered pair.
func SeedStreak(t *testing.T, db *gorm.DB, low, high int64, status string, count int) int64 {
	t.Helper()

	row := entities.Streak{
		User1ID:     low,
		User2ID:     high,
		Status:      status,
		StreakCount: count,
	}
	require.NoError(t, db.Create(&row).Error)
	return row.ID
}

// SeedUnread inserts an unread message addressed to toUserID.
func SeedUnread(t *testing.T, db *gorm.DB, streakID, fromUserID, toUserID int64) {
	t.Helper()

	row := entities.Message{
		StreakID:   streakID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Text:       "hi",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(&row).Error)
}

// CountStreaks returns the number of streak rows.
func CountStreaks(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&entities.Streak{}).Count(&n).Error)
	return n
}
