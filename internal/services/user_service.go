package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/cache"
	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
	"github.com/cnc-voile/cantine-service/internal/validator"
)

// ===== RESPONSE DTOs =====

// ProfileResponse is a user's own account view with meal totals.
type ProfileResponse struct {
	User          models.UserPayload `json:"user"`
	TotalMeals    int                `json:"total_meals"`
	UpcomingMeals int                `json:"upcoming_meals"`
	RecentDates   []string           `json:"recent_dates"`
}

// ===== SERVICE INTERFACE =====

type UserService interface {
	// Authenticate verifies credentials and returns the matching user.
	Authenticate(ctx context.Context, req *LoginRequest) (*models.User, error)

	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context) ([]models.UserPayload, error)

	// Create adds an account and assigns the first free short id, both
	// inside one transaction.
	Create(ctx context.Context, req *AddUserRequest) (*models.User, error)

	Update(ctx context.Context, id uint, req *UpdateUserRequest) (*models.User, error)

	// Delete removes an account and its reservations. A user cannot
	// delete themselves.
	Delete(ctx context.Context, actorID uint, id uint) error

	GetProfile(ctx context.Context, userID uint) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error
}

// ===== SERVICE IMPLEMENTATION =====

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, cacheManager *cache.CacheManager) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		cache:     cacheManager,
	}
}

func (s *userService) Authenticate(ctx context.Context, req *LoginRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.UserPayload, error) {
	var payloads []models.UserPayload
	err := s.cache.User.CacheOrExecute(ctx, "list", &payloads, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		users, err := s.repo.User().List(ctx, nil)
		if err != nil {
			return nil, err
		}

		out := make([]models.UserPayload, 0, len(users))
		for _, u := range users {
			out = append(out, u.ToPayload())
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return payloads, nil
}

func (s *userService) Create(ctx context.Context, req *AddUserRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Status:       models.UserStatus(req.Status),
		IsAdmin:      req.IsAdmin,
		PasswordHash: string(hash),
	}

	// Short id allocation and the insert share one transaction so two
	// concurrent creates cannot claim the same slot.
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.User().UsernameExists(ctx, nil, req.Username, 0)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: username %q already taken", ErrConflict, req.Username)
		}

		used, err := txRepo.User().UsedShortIDs(ctx, nil)
		if err != nil {
			return err
		}

		shortID, err := firstFreeShortID(used)
		if err != nil {
			return err
		}
		user.ShortID = &shortID

		return txRepo.User().Create(ctx, nil, user)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUserCaches(ctx, s.cache)
	s.logger.Info("user created", "user_id", user.ID, "short_id", user.ShortIDValue())

	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.repo.User().UsernameExists(ctx, nil, *req.Username, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: username %q already taken", ErrConflict, *req.Username)
		}
		user.Username = *req.Username
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Status != nil {
		user.Status = models.UserStatus(*req.Status)
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, err
	}

	cache.InvalidateUserCaches(ctx, s.cache)

	return user, nil
}

func (s *userService) Delete(ctx context.Context, actorID uint, id uint) error {
	if actorID == id {
		return ErrSelfDelete
	}

	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return err
	}

	cache.InvalidateUserCaches(ctx, s.cache)
	s.logger.Info("user deleted", "user_id", id, "actor_id", actorID)

	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.repo.User().UsernameExists(ctx, nil, *req.Username, userID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: username %q already taken", ErrConflict, *req.Username)
		}
		user.Username = *req.Username
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, err
	}

	cache.InvalidateUserCaches(ctx, s.cache)

	return user, nil
}

// GetProfile returns the user's account details together with their
// meal history summary.
func (s *userService) GetProfile(ctx context.Context, userID uint) (*ProfileResponse, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.Reservation().ListForUserRange(ctx, nil, userID,
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}

	resp := &ProfileResponse{
		User:       user.ToPayload(),
		TotalMeals: len(all),
	}

	today := truncateToDay(time.Now())
	for _, r := range all {
		if !time.Time(r.Date).Before(today) {
			resp.UpcomingMeals++
		}
	}

	// Rows come back date ascending; the last five are the most recent.
	start := len(all) - 5
	if start < 0 {
		start = 0
	}
	for i := len(all) - 1; i >= start; i-- {
		resp.RecentDates = append(resp.RecentDates, all[i].DateString())
	}

	return resp, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.repo.User().Update(ctx, nil, user)
}
