package security

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"assetdb/internal/rate_limiter"
	"assetdb/pkg/models"
	"assetdb/pkg/roles"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetUserByCjID(ctx context.Context, cjID string) (*models.User, error) {
	args := m.Called(cjID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func testUser(t *testing.T, secLevel int) *models.User {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	return &models.User{ID: 7, CjID: "kim01", Name: "김철수", SecLevel: secLevel, PasswordHash: hash}
}

func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuthenticator("test-secret", time.Hour)

	tests := []struct {
		name           string
		payload        string
		setupMock      func(m *MockUserLookup)
		expectedStatus int
	}{
		{
			name:    "valid credentials",
			payload: `{"cj_id":"kim01","password":"secret1"}`,
			setupMock: func(m *MockUserLookup) {
				m.On("GetUserByCjID", "kim01").Return(testUser(t, 100), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "wrong password",
			payload: `{"cj_id":"kim01","password":"nope"}`,
			setupMock: func(m *MockUserLookup) {
				m.On("GetUserByCjID", "kim01").Return(testUser(t, 1), nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "temporary user without password",
			payload: `{"cj_id":"TEMP_x","password":"anything"}`,
			setupMock: func(m *MockUserLookup) {
				m.On("GetUserByCjID", "TEMP_x").Return(&models.User{CjID: "TEMP_x", IsTemporary: true}, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "unknown user",
			payload: `{"cj_id":"ghost","password":"secret1"}`,
			setupMock: func(m *MockUserLookup) {
				m.On("GetUserByCjID", "ghost").Return(nil, errors.New("not found"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing fields",
			payload:        `{"cj_id":"kim01"}`,
			setupMock:      func(m *MockUserLookup) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(MockUserLookup)
			tt.setupMock(lookup)
			limiter := rate_limiter.NewRateLimiter(10, time.Minute)
			defer limiter.Stop()
			handler := NewLoginHandler(lookup, auth, limiter, zap.NewNop())

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString(tt.payload))
			c.Request.Header.Set("Content-Type", "application/json")

			handler.Login(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			lookup.AssertExpectations(t)
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)

	attempt := func(router *gin.Engine, forwardedFor string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"cj_id":"kim01","password":"bad"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.Header.Set("X-Real-IP", forwardedFor)
		router.ServeHTTP(w, req)
		return w
	}

	newRouter := func(t *testing.T, trusted []string) *gin.Engine {
		lookup := new(MockUserLookup)
		lookup.On("GetUserByCjID", "kim01").Return(testUser(t, 1), nil)
		limiter := rate_limiter.NewRateLimiter(2, time.Minute)
		t.Cleanup(limiter.Stop)
		handler := NewLoginHandler(lookup, NewAuthenticator("s", time.Hour), limiter, zap.NewNop())

		router := gin.New()
		require.NoError(t, router.SetTrustedProxies(trusted))
		router.POST("/login", handler.Login)
		return router
	}

	t.Run("rotating forwarded header does not reset the limit", func(t *testing.T) {
		router := newRouter(t, nil)

		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			last = attempt(router, fmt.Sprintf("203.0.113.%d", i+1))
		}

		assert.Equal(t, http.StatusTooManyRequests, last.Code)
		assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("trusted proxy forwards distinct clients", func(t *testing.T) {
		// httptest requests arrive from 192.0.2.1
		router := newRouter(t, []string{"192.0.2.1"})

		for i := 0; i < 3; i++ {
			w := attempt(router, fmt.Sprintf("203.0.113.%d", i+1))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		}
		assert.Equal(t, http.StatusUnauthorized, attempt(router, "203.0.113.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, attempt(router, "203.0.113.1").Code)
	})
}

func TestGenerateJWTClaims(t *testing.T) {
	auth := NewAuthenticator("test-secret", time.Hour)
	token, err := auth.GenerateJWT(&models.User{CjID: "kim01", Name: "김철수", SecLevel: 1})
	require.NoError(t, err)

	claims, err := auth.parse(token)
	require.NoError(t, err)
	assert.Equal(t, "kim01", claims["cj_id"])
	assert.Equal(t, "김철수", claims["name"])
	assert.Equal(t, float64(1), claims["sec_level"])
	assert.NotContains(t, claims, "userID")
}

func TestJWTMiddlewareAndAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuthenticator("test-secret", time.Hour)

	adminToken, err := auth.GenerateJWT(&models.User{CjID: "admin", SecLevel: 100})
	require.NoError(t, err)
	userToken, err := auth.GenerateJWT(&models.User{CjID: "kim01", SecLevel: 1})
	require.NoError(t, err)
	forged, err := NewAuthenticator("other", time.Hour).GenerateJWT(&models.User{CjID: "admin", SecLevel: 100})
	require.NoError(t, err)
	noHolder, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": "kim01",
		"role":   "user",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("", auth.JWTMiddleware())
	group.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetUserIDFromContext(c)})
	})
	group.POST("/import", Authorize(roles.Admin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name           string
		method         string
		path           string
		header         string
		expectedStatus int
	}{
		{"no header", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"forged token", http.MethodGet, "/me", "Bearer " + forged, http.StatusUnauthorized},
		{"token without cj_id", http.MethodGet, "/me", "Bearer " + noHolder, http.StatusUnauthorized},
		{"valid token", http.MethodGet, "/me", "Bearer " + userToken, http.StatusOK},
		{"user on admin route", http.MethodPost, "/import", "Bearer " + userToken, http.StatusForbidden},
		{"admin on admin route", http.MethodPost, "/import", "Bearer " + adminToken, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	router.ServeHTTP(w, req)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "kim01", body["user"])
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, isPrivateIP("10.1.2.3"))
	assert.True(t, isPrivateIP("192.168.0.10"))
	assert.True(t, isPrivateIP("127.0.0.1"))
	assert.True(t, isPrivateIP("::1"))
	assert.False(t, isPrivateIP("203.0.113.5"))
	assert.False(t, isPrivateIP("not-an-ip"))
}
