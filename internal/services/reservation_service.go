package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/cache"
	"github.com/cnc-voile/cantine-service/internal/events"
	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
	"github.com/cnc-voile/cantine-service/internal/validator"
)

// ===== RESPONSE DTOs =====

// UserWeekResponse is a user's own reservations for one week, keyed by
// YYYY-MM-DD date.
type UserWeekResponse struct {
	Reservations map[string]models.UserDayEntry `json:"reservations"`
	UserStatus   string                         `json:"user_status"`
}

// WeekResponse is every reservation of a week, keyed by date and ordered
// by user name inside each day.
type WeekResponse struct {
	Reservations map[string][]models.WeekEntry `json:"reservations"`
}

// ===== SERVICE INTERFACE =====

type ReservationService interface {
	// Self-service operations, past dates rejected
	Toggle(ctx context.Context, userID uint, req *ToggleReservationRequest) error
	UpdateOwnStatus(ctx context.Context, userID uint, req *UpdateOwnStatusRequest) error
	ListForUserWeek(ctx context.Context, userID uint, weekStart time.Time) (*UserWeekResponse, error)

	// Weekly overview for planning
	ListForWeek(ctx context.Context, weekStart time.Time) (*WeekResponse, error)

	// Manager operations, no past-date restriction
	CreateOrUpdate(ctx context.Context, actorID uint, req *CreateReservationRequest) error
	SetStatus(ctx context.Context, actorID uint, reservationID uint, benevole bool) error
	Delete(ctx context.Context, actorID uint, reservationID uint) error
}

// ===== SERVICE IMPLEMENTATION =====

type reservationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     *cache.CacheManager

	// injectable clock
	now func() time.Time
}

func NewReservationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, cacheManager *cache.CacheManager) ReservationService {
	return &reservationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
		cache:     cacheManager,
		now:       time.Now,
	}
}

func (s *reservationService) Toggle(ctx context.Context, userID uint, req *ToggleReservationRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	if date.Before(s.today()) {
		return ErrPastDate
	}

	if !req.Reserved {
		deleted, err := s.repo.Reservation().DeleteByUserAndDate(ctx, nil, userID, date)
		if err != nil {
			return err
		}
		if deleted == 0 {
			// Nothing was booked, so nothing changed.
			return nil
		}

		s.publishEvent(ctx, events.NewEvent(events.EventReservationDeleted, events.ReservationEventData{
			UserID:   userID,
			Date:     req.Date,
			Benevole: req.Benevole,
			ActorID:  userID,
		}))
		cache.InvalidateReservationCaches(ctx, s.cache)
		return nil
	}

	reservation := &models.Reservation{
		UserID:   userID,
		Date:     datatypes.Date(date),
		Benevole: req.Benevole,
	}
	if err := s.repo.Reservation().Upsert(ctx, nil, reservation); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReservationCreated, events.ReservationEventData{
		ReservationID: reservation.ID,
		UserID:        userID,
		Date:          req.Date,
		Benevole:      req.Benevole,
		ActorID:       userID,
	}))
	cache.InvalidateReservationCaches(ctx, s.cache)

	return nil
}

// UpdateOwnStatus flips the volunteer flag on the caller's reservation
// for a date. Upsert semantics, so flagging a day without a booking
// creates one.
func (s *reservationService) UpdateOwnStatus(ctx context.Context, userID uint, req *UpdateOwnStatusRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	if date.Before(s.today()) {
		return ErrPastDate
	}

	reservation := &models.Reservation{
		UserID:   userID,
		Date:     datatypes.Date(date),
		Benevole: req.Benevole,
	}
	if err := s.repo.Reservation().Upsert(ctx, nil, reservation); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReservationStatusChanged, events.ReservationEventData{
		ReservationID: reservation.ID,
		UserID:        userID,
		Date:          req.Date,
		Benevole:      req.Benevole,
		ActorID:       userID,
	}))
	cache.InvalidateReservationCaches(ctx, s.cache)

	return nil
}

func (s *reservationService) ListForUserWeek(ctx context.Context, userID uint, weekStart time.Time) (*UserWeekResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	weekEnd := weekStart.AddDate(0, 0, 6)
	reservations, err := s.repo.Reservation().ListForUserRange(ctx, nil, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	resp := &UserWeekResponse{
		Reservations: make(map[string]models.UserDayEntry, len(reservations)),
		UserStatus:   string(user.Status),
	}
	for _, r := range reservations {
		resp.Reservations[r.DateString()] = models.UserDayEntry{
			Reserved: true,
			Benevole: r.Benevole,
		}
	}

	return resp, nil
}

func (s *reservationService) ListForWeek(ctx context.Context, weekStart time.Time) (*WeekResponse, error) {
	cacheKey := weekStart.Format("2006-01-02")

	var resp WeekResponse
	err := s.cache.Week.CacheOrExecute(ctx, cacheKey, &resp, cache.WeekCacheConfig.TTL, func() (interface{}, error) {
		return s.buildWeek(ctx, weekStart)
	})
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (s *reservationService) buildWeek(ctx context.Context, weekStart time.Time) (*WeekResponse, error) {
	weekEnd := weekStart.AddDate(0, 0, 6)
	rng := repositories.DateRange{From: &weekStart, To: &weekEnd}

	reservations, err := s.repo.Reservation().ListForRange(ctx, nil, rng)
	if err != nil {
		return nil, err
	}

	resp := &WeekResponse{Reservations: make(map[string][]models.WeekEntry)}
	for _, r := range reservations {
		entry := models.WeekEntry{
			ReservationID: r.ID,
			UserID:        r.UserID,
			ShortID:       r.User.ShortIDValue(),
			UserName:      r.User.Name,
			Status:        string(r.EffectiveStatus(&r.User)),
			UserStatus:    string(r.User.Status),
			Benevole:      r.Benevole,
		}
		day := r.DateString()
		resp.Reservations[day] = append(resp.Reservations[day], entry)
	}

	return resp, nil
}

func (s *reservationService) CreateOrUpdate(ctx context.Context, actorID uint, req *CreateReservationRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	if _, err := s.repo.User().GetByID(ctx, nil, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, req.UserID)
		}
		return err
	}

	reservation := &models.Reservation{
		UserID:   req.UserID,
		Date:     datatypes.Date(date),
		Benevole: req.Benevole,
	}
	if err := s.repo.Reservation().Upsert(ctx, nil, reservation); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReservationCreated, events.ReservationEventData{
		ReservationID: reservation.ID,
		UserID:        req.UserID,
		Date:          req.Date,
		Benevole:      req.Benevole,
		ActorID:       actorID,
	}))
	cache.InvalidateReservationCaches(ctx, s.cache)

	return nil
}

func (s *reservationService) SetStatus(ctx context.Context, actorID uint, reservationID uint, benevole bool) error {
	reservation, err := s.repo.Reservation().GetByID(ctx, nil, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return err
	}

	if err := s.repo.Reservation().UpdateBenevole(ctx, nil, reservationID, benevole); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReservationStatusChanged, events.ReservationEventData{
		ReservationID: reservationID,
		UserID:        reservation.UserID,
		Date:          reservation.DateString(),
		Benevole:      benevole,
		ActorID:       actorID,
	}))
	cache.InvalidateReservationCaches(ctx, s.cache)

	return nil
}

func (s *reservationService) Delete(ctx context.Context, actorID uint, reservationID uint) error {
	reservation, err := s.repo.Reservation().GetByID(ctx, nil, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return err
	}

	if err := s.repo.Reservation().DeleteByID(ctx, nil, reservationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
		}
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventReservationDeleted, events.ReservationEventData{
		ReservationID: reservationID,
		UserID:        reservation.UserID,
		Date:          reservation.DateString(),
		Benevole:      reservation.Benevole,
		ActorID:       actorID,
	}))
	cache.InvalidateReservationCaches(ctx, s.cache)

	return nil
}

// publishEvent is best effort. A broker outage never fails the booking.
func (s *reservationService) publishEvent(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.TopicReservations, event); err != nil {
		s.logger.Error("failed to publish event", "type", event.Type, "error", err)
	}
}

func (s *reservationService) today() time.Time {
	return truncateToDay(s.now())
}

// ===== SHARED HELPERS =====

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

// parseFrenchDate reads the DD/MM/YYYY format used by the reporting
// endpoints.
func parseFrenchDate(value string) (time.Time, error) {
	date, err := time.Parse("02/01/2006", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD/MM/YYYY", value)
	}
	return date, nil
}

// truncateToDay returns midnight UTC of t's calendar day. Request dates
// parse to midnight UTC, so anchoring "today" in UTC as well makes the
// comparison a calendar-day one regardless of the server's zone.
func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
