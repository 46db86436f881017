package repositories

import "context"

// Repository aggregates all store interfaces behind one access point.
type Repository interface {
	User() UserRepository
	Reservation() ReservationRepository
	Extra() ExtraRepository
	Settings() SettingsRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
