package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/repositories"
)

// Claims carries the authenticated identity inside the bearer token.
// Authorization decisions always re-read the stored user; the claims
// only locate it.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies bearer tokens.
type TokenManager struct {
	secretKey     []byte
	tokenLifetime time.Duration
}

func NewTokenManager(secret string, lifetime time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secret),
		tokenLifetime: lifetime,
	}
}

// GenerateToken signs a token for the user.
func (m *TokenManager) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ParseToken verifies the signature and expiry and returns the claims.
func (m *TokenManager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// AuthMiddleware authenticates requests with a bearer token and loads
// the stored user into the request context.
type AuthMiddleware struct {
	tokens       *TokenManager
	userRepo     repositories.UserRepository
	managerRoles []string
}

func NewAuthMiddleware(tokens *TokenManager, userRepo repositories.UserRepository, managerRoles []string) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:       tokens,
		userRepo:     userRepo,
		managerRoles: managerRoles,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := am.tokens.ParseToken(tokenParts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		// Role and admin flag come from the store, not the token, so
		// revoking access takes effect immediately.
		user, err := am.userRepo.GetByID(c.Request.Context(), nil, claims.UserID)
		if err != nil {
			abortUnauthorized(c, "unknown user")
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)

		c.Next()
	}
}

// RequireManager gates manager-classed operations. It runs after
// RequireAuth and has no side effects on rejection.
func (am *AuthMiddleware) RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}

		if !user.IsManager(am.managerRoles) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Error:   "manager access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error:   message,
	})
	c.Abort()
}
