package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/cache"
	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
)

// ===== SERVICE INTERFACE =====

type StatsService interface {
	// Aggregate computes reservation statistics over an optionally
	// bounded date range.
	Aggregate(ctx context.Context, from, to *time.Time) (*models.ReservationStats, error)

	// ExportRows returns the detailed reservation listing consumed by
	// the file renderers, sorted by date.
	ExportRows(ctx context.Context, from, to *time.Time) ([]models.ExportRow, error)
}

// ===== SERVICE IMPLEMENTATION =====

type statsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewStatsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager) StatsService {
	return &statsService{
		repo:   repo,
		db:     db,
		logger: logger,
		cache:  cacheManager,
	}
}

func (s *statsService) Aggregate(ctx context.Context, from, to *time.Time) (*models.ReservationStats, error) {
	cacheKey := rangeCacheKey(from, to)

	var stats models.ReservationStats
	err := s.cache.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.aggregate(ctx, from, to)
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *statsService) aggregate(ctx context.Context, from, to *time.Time) (*models.ReservationStats, error) {
	rng := repositories.DateRange{From: from, To: to}

	reservations, err := s.repo.Reservation().ListForRange(ctx, nil, rng)
	if err != nil {
		return nil, err
	}

	extras, err := s.repo.Extra().ListForRange(ctx, nil, rng)
	if err != nil {
		return nil, err
	}

	stats := &models.ReservationStats{
		TotalMeals: len(reservations),
		ByStatus:   make(map[string]int),
		ByUser:     make(map[string]*models.UserBreakdown),
		Extras:     make(map[string]int),
	}

	for _, r := range reservations {
		user := r.User
		stats.ByStatus[string(r.EffectiveStatus(&user))]++

		breakdown, ok := stats.ByUser[user.Name]
		if !ok {
			breakdown = &models.UserBreakdown{ShortID: user.ShortIDValue()}
			stats.ByUser[user.Name] = breakdown
		}

		breakdown.Total++
		// A booking counts in exactly one bucket. Volunteer takes
		// priority over bar; sailing covers instructors not flagged as
		// volunteers.
		switch {
		case r.Benevole || user.Status == models.StatusBenevole:
			breakdown.Benevole++
		case user.Status == models.StatusMoniteur || user.Status == models.StatusAideMoniteur:
			breakdown.Voile++
		case user.Status == models.StatusBar:
			breakdown.Bar++
		}
	}

	for _, e := range extras {
		stats.Extras[string(e.Category)] += e.Count
		stats.TotalMeals += e.Count

		stats.ByStatus[string(e.Category)] += e.Count
		// Volunteer extras also fold into the general volunteer bucket,
		// on top of their own category entry.
		if e.Category == models.ExtraBenevole {
			stats.ByStatus[string(models.StatusBenevole)] += e.Count
		}
	}

	return stats, nil
}

func (s *statsService) ExportRows(ctx context.Context, from, to *time.Time) ([]models.ExportRow, error) {
	rng := repositories.DateRange{From: from, To: to}

	reservations, err := s.repo.Reservation().ListForRange(ctx, nil, rng)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ExportRow, 0, len(reservations))
	for _, r := range reservations {
		user := r.User
		rows = append(rows, models.ExportRow{
			ID:       r.ID,
			Date:     time.Time(r.Date).Format("02/01/2006"),
			Name:     user.Name,
			Status:   string(r.EffectiveStatus(&user)),
			ShortID:  user.ShortIDValue(),
			Benevole: r.Benevole,
		})
	}

	return rows, nil
}

func rangeCacheKey(from, to *time.Time) string {
	f, t := "open", "open"
	if from != nil {
		f = from.Format("2006-01-02")
	}
	if to != nil {
		t = to.Format("2006-01-02")
	}
	return fmt.Sprintf("range:%s:%s", f, t)
}
