package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/models"
)

// DateRange bounds a reservation or extra-meal query. Either side may be
// nil for an open range; bounds are inclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// UserRepository manages staff accounts.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// UsernameExists reports whether another user (id != excludeID)
	// already holds the username.
	UsernameExists(ctx context.Context, tx *gorm.DB, username string, excludeID uint) (bool, error)

	// UsedShortIDs returns every short id currently assigned.
	UsedShortIDs(ctx context.Context, tx *gorm.DB) ([]string, error)
}

// ReservationRepository manages per-user per-date meal bookings.
type ReservationRepository interface {
	// Upsert inserts the reservation or, when one already exists for the
	// same (user, date), overwrites its volunteer flag. Atomic with
	// respect to the uniqueness constraint.
	Upsert(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	UpdateBenevole(ctx context.Context, tx *gorm.DB, id uint, benevole bool) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uint) error

	// DeleteByUserAndDate removes a user's booking for a date and reports
	// how many rows were deleted. Absence is not an error.
	DeleteByUserAndDate(ctx context.Context, tx *gorm.DB, userID uint, date time.Time) (int64, error)

	ListForUserRange(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) ([]*models.Reservation, error)

	// ListForRange returns reservations inside the range with their users
	// preloaded, ordered by date then user name.
	ListForRange(ctx context.Context, tx *gorm.DB, r DateRange) ([]*models.Reservation, error)
}

// ExtraRepository manages aggregate meal counts not tied to a user.
type ExtraRepository interface {
	// Upsert overwrites the count for the extra's (date, category) pair,
	// creating the row when absent.
	Upsert(ctx context.Context, tx *gorm.DB, extra *models.ExtraReservation) error

	GetByDate(ctx context.Context, tx *gorm.DB, date time.Time) ([]*models.ExtraReservation, error)
	ListForRange(ctx context.Context, tx *gorm.DB, r DateRange) ([]*models.ExtraReservation, error)
}

// SettingsRepository manages the service settings document. It lives in
// a flat side-store, not the relational database, so it takes no
// transaction handle.
type SettingsRepository interface {
	// Load returns the stored document with defaults filled in for
	// missing keys. A missing store yields pure defaults.
	Load(ctx context.Context) (models.SettingsDocument, error)

	// Save merges the provided keys over the stored document and
	// persists the result. Last write wins.
	Save(ctx context.Context, doc models.SettingsDocument) error
}
