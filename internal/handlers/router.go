package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cnc-voile/cantine-service/internal/repositories"
	"github.com/cnc-voile/cantine-service/internal/services"
	"github.com/cnc-voile/cantine-service/internal/utils"
)

type HandlerManager struct {
	reservationHandler *ReservationHandler
	managerHandler     *ManagerHandler
	userHandler        *UserHandler
	authMiddleware     *AuthMiddleware
}

// AuthConfig carries what the handlers need to issue and verify tokens.
type AuthConfig struct {
	JWTSecret     string
	TokenLifetime time.Duration
	ManagerRoles  []string
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	authConfig AuthConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	tokens := NewTokenManager(authConfig.JWTSecret, authConfig.TokenLifetime)
	authMiddleware := NewAuthMiddleware(tokens, userRepo, authConfig.ManagerRoles)

	return &HandlerManager{
		reservationHandler: NewReservationHandler(serviceManager.Reservation(), logger),
		managerHandler:     NewManagerHandler(serviceManager.Stats(), serviceManager.Export(), serviceManager.Extra(), serviceManager.Settings(), logger),
		userHandler:        NewUserHandler(serviceManager.User(), tokens, logger),
		authMiddleware:     authMiddleware,
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.POST("/api/login", hm.userHandler.Login)

	requireManager := hm.authMiddleware.RequireManager()

	// Self-service routes
	api := router.Group("/api")
	api.Use(hm.authMiddleware.RequireAuth())
	{
		api.GET("/user-reservations", hm.reservationHandler.GetUserReservations)
		api.POST("/toggle-reservation", hm.reservationHandler.ToggleReservation)
		api.POST("/update-reservation-status", hm.reservationHandler.UpdateOwnStatus)
		api.GET("/week-reservations", hm.reservationHandler.GetWeekReservations)
		api.GET("/get-settings", hm.managerHandler.GetSettings)

		api.GET("/profile", hm.userHandler.GetProfile)
		api.POST("/profile/update", hm.userHandler.UpdateProfile)
		api.POST("/profile/password", hm.userHandler.ChangePassword)

		// Manager-classed operations kept under /api for compatibility
		// with the historical clients
		api.POST("/update_reservation_status/:id", requireManager, hm.reservationHandler.UpdateReservationStatus)
		api.DELETE("/delete_reservation/:id", requireManager, hm.reservationHandler.DeleteReservation)
	}

	// Manager routes
	manager := router.Group("/manager/api")
	manager.Use(hm.authMiddleware.RequireAuth(), requireManager)
	{
		manager.POST("/create_reservation", hm.reservationHandler.CreateReservation)
		manager.GET("/reservation-stats", hm.managerHandler.GetStats)
		manager.GET("/export_reservations", hm.managerHandler.ExportReservations)

		manager.GET("/extra_reservations", hm.managerHandler.GetExtras)
		manager.POST("/extra_reservations", hm.managerHandler.SetExtras)

		manager.GET("/settings", hm.managerHandler.GetSettings)
		manager.POST("/settings/update", hm.managerHandler.UpdateSettings)

		users := manager.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.POST("/add", hm.userHandler.AddUser)
			users.POST("/update/:id", hm.userHandler.UpdateUser)
			users.DELETE("/delete/:id", hm.userHandler.DeleteUser)
		}
	}
}
