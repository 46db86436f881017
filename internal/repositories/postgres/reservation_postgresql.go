package postgres

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
)

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationPostgreSQL(db *gorm.DB) repositories.ReservationRepository {
	return &reservationRepository{db: db}
}

// Upsert relies on the (user_id, date) unique index so concurrent calls
// cannot create duplicate rows. An existing row only gets its volunteer
// flag replaced, with updated_at refreshed.
func (r *reservationRepository) Upsert(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	db := r.getDB(tx)

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"benevole":   reservation.Benevole,
				"updated_at": time.Now(),
			}),
		}).
		Create(reservation).Error
	if err != nil {
		return r.handleDBError(err, "upsert reservation")
	}

	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	db := r.getDB(tx)
	var reservation models.Reservation

	if err := db.WithContext(ctx).Preload("User").First(&reservation, id).Error; err != nil {
		return nil, r.handleDBError(err, "get reservation by id")
	}

	return &reservation, nil
}

func (r *reservationRepository) UpdateBenevole(ctx context.Context, tx *gorm.DB, id uint, benevole bool) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("benevole", benevole)
	if result.Error != nil {
		return r.handleDBError(result.Error, "update reservation status")
	}
	if result.RowsAffected == 0 {
		return r.handleDBError(gorm.ErrRecordNotFound, "update reservation status")
	}

	return nil
}

func (r *reservationRepository) DeleteByID(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.Reservation{}, id)
	if result.Error != nil {
		return r.handleDBError(result.Error, "delete reservation")
	}
	if result.RowsAffected == 0 {
		return r.handleDBError(gorm.ErrRecordNotFound, "delete reservation")
	}

	return nil
}

func (r *reservationRepository) DeleteByUserAndDate(ctx context.Context, tx *gorm.DB, userID uint, date time.Time) (int64, error) {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, datatypes.Date(date)).
		Delete(&models.Reservation{})
	if result.Error != nil {
		return 0, r.handleDBError(result.Error, "delete reservation by user and date")
	}

	return result.RowsAffected, nil
}

func (r *reservationRepository) ListForUserRange(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) ([]*models.Reservation, error) {
	db := r.getDB(tx)
	var reservations []*models.Reservation

	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, datatypes.Date(from), datatypes.Date(to)).
		Order("date ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, r.handleDBError(err, "list reservations for user")
	}

	return reservations, nil
}

func (r *reservationRepository) ListForRange(ctx context.Context, tx *gorm.DB, rng repositories.DateRange) ([]*models.Reservation, error) {
	db := r.getDB(tx)
	var reservations []*models.Reservation

	query := db.WithContext(ctx).
		Model(&models.Reservation{}).
		Joins("User").
		Order("reservations.date ASC, \"User\".name ASC")
	query = applyDateRange(query, "reservations.date", rng)

	if err := query.Find(&reservations).Error; err != nil {
		return nil, r.handleDBError(err, "list reservations")
	}

	return reservations, nil
}

func (r *reservationRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *reservationRepository) handleDBError(err error, operation string) error {
	return handleDBError(err, operation)
}

// applyDateRange adds inclusive bounds for whichever sides are set.
func applyDateRange(query *gorm.DB, column string, rng repositories.DateRange) *gorm.DB {
	if rng.From != nil {
		query = query.Where(column+" >= ?", datatypes.Date(*rng.From))
	}
	if rng.To != nil {
		query = query.Where(column+" <= ?", datatypes.Date(*rng.To))
	}
	return query
}
