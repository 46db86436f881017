package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
	"github.com/cnc-voile/cantine-service/internal/validator"
)

// ===== SERVICE INTERFACE =====

type SettingsService interface {
	Get(ctx context.Context) (models.SettingsDocument, error)
	Update(ctx context.Context, req *UpdateSettingsRequest) (models.SettingsDocument, error)
}

// ===== SERVICE IMPLEMENTATION =====

type settingsService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSettingsService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) SettingsService {
	return &settingsService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *settingsService) Get(ctx context.Context) (models.SettingsDocument, error) {
	return s.repo.Settings().Load(ctx)
}

// Update merges the provided keys over the stored document and returns
// the merged result.
func (s *settingsService) Update(ctx context.Context, req *UpdateSettingsRequest) (models.SettingsDocument, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	patch := models.SettingsDocument{}
	if req.DeadlineTime != nil {
		patch[models.SettingDeadlineTime] = *req.DeadlineTime
	}

	if len(patch) > 0 {
		if err := s.repo.Settings().Save(ctx, patch); err != nil {
			return nil, err
		}
	}

	doc, err := s.repo.Settings().Load(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("settings updated", "keys", len(patch))
	return doc, nil
}
