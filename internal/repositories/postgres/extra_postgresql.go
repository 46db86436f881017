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

type extraRepository struct {
	db *gorm.DB
}

func NewExtraPostgreSQL(db *gorm.DB) repositories.ExtraRepository {
	return &extraRepository{db: db}
}

// Upsert overwrites the count for the (date, category) pair. The unique
// index makes concurrent writes converge on a single row.
func (r *extraRepository) Upsert(ctx context.Context, tx *gorm.DB, extra *models.ExtraReservation) error {
	db := r.getDB(tx)

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "category"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": extra.Count}),
		}).
		Create(extra).Error
	if err != nil {
		return r.handleDBError(err, "upsert extra reservation")
	}

	return nil
}

func (r *extraRepository) GetByDate(ctx context.Context, tx *gorm.DB, date time.Time) ([]*models.ExtraReservation, error) {
	db := r.getDB(tx)
	var extras []*models.ExtraReservation

	err := db.WithContext(ctx).
		Where("date = ?", datatypes.Date(date)).
		Order("category ASC").
		Find(&extras).Error
	if err != nil {
		return nil, r.handleDBError(err, "get extra reservations by date")
	}

	return extras, nil
}

func (r *extraRepository) ListForRange(ctx context.Context, tx *gorm.DB, rng repositories.DateRange) ([]*models.ExtraReservation, error) {
	db := r.getDB(tx)
	var extras []*models.ExtraReservation

	query := db.WithContext(ctx).Model(&models.ExtraReservation{}).Order("date ASC, category ASC")
	query = applyDateRange(query, "date", rng)

	if err := query.Find(&extras).Error; err != nil {
		return nil, r.handleDBError(err, "list extra reservations")
	}

	return extras, nil
}

func (r *extraRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *extraRepository) handleDBError(err error, operation string) error {
	return handleDBError(err, operation)
}
