package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/cache"
	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
	"github.com/cnc-voile/cantine-service/internal/validator"
)

// ===== SERVICE INTERFACE =====

type ExtraService interface {
	// Get returns the counts recorded for a date. Categories never set
	// are absent from the result.
	Get(ctx context.Context, date time.Time) (map[string]int, error)

	// Set overwrites the counts for a date. One invalid entry fails the
	// whole batch before anything is written.
	Set(ctx context.Context, actorID uint, req *SetExtrasRequest) error
}

// ===== SERVICE IMPLEMENTATION =====

type extraService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewExtraService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, cacheManager *cache.CacheManager) ExtraService {
	return &extraService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		cache:     cacheManager,
	}
}

func (s *extraService) Get(ctx context.Context, date time.Time) (map[string]int, error) {
	extras, err := s.repo.Extra().GetByDate(ctx, nil, date)
	if err != nil {
		return nil, err
	}

	result := make(map[string]int, len(extras))
	for _, e := range extras {
		result[string(e.Category)] = e.Count
	}

	return result, nil
}

func (s *extraService) Set(ctx context.Context, actorID uint, req *SetExtrasRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	// Reject the whole batch before writing anything.
	for category, count := range req.Extras {
		if !models.IsValidExtraCategory(category) {
			return fmt.Errorf("%w: unknown extra category %q", ErrValidationFailed, category)
		}
		if count < 0 {
			return fmt.Errorf("%w: count for %q must not be negative", ErrValidationFailed, category)
		}
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for category, count := range req.Extras {
			extra := &models.ExtraReservation{
				Date:     datatypes.Date(date),
				Category: models.ExtraCategory(category),
				Count:    count,
			}
			if err := txRepo.Extra().Upsert(ctx, nil, extra); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateReservationCaches(ctx, s.cache)
	s.logger.Info("extra reservations updated", "date", req.Date, "actor_id", actorID)

	return nil
}
