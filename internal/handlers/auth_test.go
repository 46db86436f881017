package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cnc-voile/cantine-service/internal/models"
)

// stubUserRepo serves a fixed set of users keyed by id.
type stubUserRepo struct {
	users map[uint]*models.User
}

func (s *stubUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}
func (s *stubUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUserRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	return nil, nil
}
func (s *stubUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error { return nil }
func (s *stubUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error           { return nil }
func (s *stubUserRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string, excludeID uint) (bool, error) {
	return false, nil
}
func (s *stubUserRepo) UsedShortIDs(ctx context.Context, tx *gorm.DB) ([]string, error) {
	return nil, nil
}

func TestTokenManager(t *testing.T) {
	user := &models.User{ID: 7, Username: "alice"}

	t.Run("generate then parse round trips", func(t *testing.T) {
		tm := NewTokenManager("test-secret", time.Hour)

		token, err := tm.GenerateToken(user)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		claims, err := tm.ParseToken(token)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if claims.UserID != 7 || claims.Username != "alice" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		tm := NewTokenManager("test-secret", time.Hour)
		other := NewTokenManager("other-secret", time.Hour)

		token, err := tm.GenerateToken(user)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if _, err := other.ParseToken(token); err == nil {
			t.Error("a token signed with another secret must not parse")
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		tm := NewTokenManager("test-secret", -time.Minute)

		token, err := tm.GenerateToken(user)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if _, err := tm.ParseToken(token); err == nil {
			t.Error("an expired token must not parse")
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		tm := NewTokenManager("test-secret", time.Hour)

		if _, err := tm.ParseToken("not.a.token"); err == nil {
			t.Error("garbage must not parse")
		}
	})
}

func newAuthTestRouter(t *testing.T, users map[uint]*models.User) (*gin.Engine, *TokenManager, *int) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	tokens := NewTokenManager("test-secret", time.Hour)
	auth := NewAuthMiddleware(tokens, &stubUserRepo{users: users}, []string{string(models.StatusBar)})

	mutations := 0
	router := gin.New()
	group := router.Group("/manager/api")
	group.Use(auth.RequireAuth(), auth.RequireManager())
	group.POST("/create_reservation", func(c *gin.Context) {
		mutations++
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
	})

	return router, tokens, &mutations
}

func TestAuthMiddleware(t *testing.T) {
	member := &models.User{ID: 1, Username: "alice", Status: models.StatusMoniteur}
	manager := &models.User{ID: 2, Username: "boss", Status: models.StatusBar}
	admin := &models.User{ID: 3, Username: "root", Status: models.StatusMoniteur, IsAdmin: true}
	users := map[uint]*models.User{1: member, 2: manager, 3: admin}

	request := func(t *testing.T, router *gin.Engine, token string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/manager/api/create_reservation", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("missing token", func(t *testing.T) {
		router, _, mutations := newAuthTestRouter(t, users)

		w := request(t, router, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if *mutations != 0 {
			t.Error("the handler must not run without authentication")
		}
	})

	t.Run("non-manager is forbidden and nothing runs", func(t *testing.T) {
		router, tokens, mutations := newAuthTestRouter(t, users)
		token, err := tokens.GenerateToken(member)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		w := request(t, router, token)
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
		if *mutations != 0 {
			t.Error("a rejected request must not reach the handler")
		}

		var body models.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Success {
			t.Error("expected success=false in the rejection envelope")
		}
		if body.Error == "" {
			t.Error("expected an error message in the rejection envelope")
		}
	})

	t.Run("manager role passes", func(t *testing.T) {
		router, tokens, mutations := newAuthTestRouter(t, users)
		token, err := tokens.GenerateToken(manager)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		w := request(t, router, token)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if *mutations != 1 {
			t.Errorf("expected the handler to run once, got %d", *mutations)
		}
	})

	t.Run("admin passes regardless of status", func(t *testing.T) {
		router, tokens, _ := newAuthTestRouter(t, users)
		token, err := tokens.GenerateToken(admin)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		w := request(t, router, token)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("deleted user is rejected despite a valid token", func(t *testing.T) {
		router, tokens, mutations := newAuthTestRouter(t, users)
		ghost := &models.User{ID: 99, Username: "ghost", Status: models.StatusBar}
		token, err := tokens.GenerateToken(ghost)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		w := request(t, router, token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if *mutations != 0 {
			t.Error("the handler must not run for an unknown user")
		}
	})
}
