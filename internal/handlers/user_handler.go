package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cnc-voile/cantine-service/internal/services"
	"github.com/cnc-voile/cantine-service/internal/utils"
)

// UserHandler serves authentication, profile self-service and account
// management.
type UserHandler struct {
	BaseHandler
	service services.UserService
	tokens  *TokenManager
}

func NewUserHandler(service services.UserService, tokens *TokenManager, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		tokens:      tokens,
	}
}

// Login verifies credentials and returns a bearer token.
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User logged in", "user_id", user.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user.ToPayload(),
	})
}

// GetProfile returns the caller's account with meal totals.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}

// UpdateProfile edits the caller's own account details.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.ToPayload(),
	})
}

// ChangePassword rotates the caller's password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "password updated")
}

// ===== ACCOUNT MANAGEMENT (manager-classed) =====

// ListUsers returns every account.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}

// AddUser creates an account.
func (h *UserHandler) AddUser(c *gin.Context) {
	var req services.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	h.LogRequest(c, "Creating user", "username", req.Username)

	user, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user.ToPayload(),
	})
}

// UpdateUser modifies an account.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.ToPayload(),
	})
}

// DeleteUser removes an account and its reservations.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, _ := GetUserIDFromContext(c)

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting user", "actor_id", actorID, "user_id", id)

	if err := h.service.Delete(c.Request.Context(), actorID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "")
}
