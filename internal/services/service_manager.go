package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/cache"
	"github.com/cnc-voile/cantine-service/internal/events"
	"github.com/cnc-voile/cantine-service/internal/repositories"
	"github.com/cnc-voile/cantine-service/internal/validator"
)

// ServiceManagerConfig holds cross-service dependencies.
type ServiceManagerConfig struct {
	EventPublisher events.EventPublisher
	CacheManager   *cache.CacheManager
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	reservationService ReservationService
	statsService       StatsService
	exportService      ExportService
	extraService       ExtraService
	settingsService    SettingsService
	userService        UserService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: v,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with in-process
// eventing and no cache backend.
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ServiceManager {
	config := ServiceManagerConfig{
		EventPublisher: events.NewGoChannelEventPublisher(logger),
		CacheManager:   cache.NewCacheManager(nil),
	}

	return NewServiceManager(db, repo, logger, v, config)
}

// Initialize sets up all services.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.config.CacheManager == nil {
		sm.config.CacheManager = cache.NewCacheManager(nil)
	}

	sm.reservationService = NewReservationService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.EventPublisher, sm.config.CacheManager)
	sm.statsService = NewStatsService(sm.repo, sm.db, sm.logger, sm.config.CacheManager)
	sm.exportService = NewExportService(sm.statsService, sm.logger)
	sm.extraService = NewExtraService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.CacheManager)
	sm.settingsService = NewSettingsService(sm.repo, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.CacheManager)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) Reservation() ReservationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.reservationService
}

func (sm *serviceManager) Stats() StatsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.statsService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.exportService
}

func (sm *serviceManager) Extra() ExtraService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.extraService
}

func (sm *serviceManager) Settings() SettingsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.settingsService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.userService
}

// HealthCheck verifies the manager and its backing store are usable.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.EventPublisher != nil {
		if err := sm.config.EventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
