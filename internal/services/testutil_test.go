package services

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cnc-voile/cantine-service/internal/cache"
	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
	"github.com/cnc-voile/cantine-service/internal/repositories/postgres"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Reservation{}, &models.ExtraReservation{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestRepo(t *testing.T, db *gorm.DB) repositories.Repository {
	t.Helper()

	return postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:           db,
		SettingsPath: filepath.Join(t.TempDir(), "settings.json"),
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noCache() *cache.CacheManager {
	return cache.NewCacheManager(nil)
}

func mustCreateUser(t *testing.T, db *gorm.DB, username, name string, status models.UserStatus, shortID string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Name:         name,
		Status:       status,
		PasswordHash: string(hash),
	}
	if shortID != "" {
		user.ShortID = &shortID
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}

	return user
}

func mustCreateReservation(t *testing.T, db *gorm.DB, userID uint, date string, benevole bool) *models.Reservation {
	t.Helper()

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad date %s: %v", date, err)
	}

	r := &models.Reservation{
		UserID:   userID,
		Date:     datatypes.Date(day),
		Benevole: benevole,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	return r
}

func countReservations(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.Reservation{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count reservations: %v", err)
	}
	return n
}
