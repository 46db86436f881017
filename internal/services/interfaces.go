package services

import (
	"context"

	"github.com/cnc-voile/cantine-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Use validator request types
type LoginRequest = validator.LoginRequest
type ToggleReservationRequest = validator.ToggleReservationRequest
type UpdateOwnStatusRequest = validator.UpdateOwnStatusRequest
type CreateReservationRequest = validator.CreateReservationRequest
type UpdateReservationStatusRequest = validator.UpdateReservationStatusRequest
type SetExtrasRequest = validator.SetExtrasRequest
type UpdateSettingsRequest = validator.UpdateSettingsRequest
type AddUserRequest = validator.AddUserRequest
type UpdateUserRequest = validator.UpdateUserRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type ChangePasswordRequest = validator.ChangePasswordRequest

// ===== SERVICE MANAGER =====

// ServiceManager provides access to all services and manages their
// lifecycle.
type ServiceManager interface {
	Reservation() ReservationService
	Stats() StatsService
	Export() ExportService
	Extra() ExtraService
	Settings() SettingsService
	User() UserService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
