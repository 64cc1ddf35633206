package googlesheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context) (*Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Result), args.Error(1)
}

func (m *MockRunner) Status(ctx context.Context) AuthStatus {
	args := m.Called(ctx)
	return args.Get(0).(AuthStatus)
}

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) AutoBackupEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettings) SetAutoBackup(ctx context.Context, enabled bool) error {
	args := m.Called(ctx, enabled)
	return args.Error(0)
}

func setupRouter(runner Runner, settings BackupSettings, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("role", role)
		c.Next()
	})
	NewBackupHandler(runner, settings, zap.NewNop()).RegisterRoutes(router.Group("/api"))
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBackupConfig(t *testing.T) {
	settings := new(MockSettings)
	settings.On("AutoBackupEnabled", mock.Anything).Return(false, nil)
	settings.On("SetAutoBackup", mock.Anything, true).Return(nil)
	router := setupRouter(new(MockRunner), settings, "admin")

	w := perform(router, http.MethodGet, "/api/backup/config", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"auto_backup_enabled":false`)

	w = perform(router, http.MethodPost, "/api/backup/config", `{"enabled":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "설정이 저장되었습니다.")

	w = perform(router, http.MethodPost, "/api/backup/config", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	settings.AssertExpectations(t)
}

func TestBackupConfigRequiresAdmin(t *testing.T) {
	router := setupRouter(new(MockRunner), new(MockSettings), "user")

	w := perform(router, http.MethodPost, "/api/backup/config", `{"enabled":false}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBackupStatus(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Status", mock.Anything).Return(AuthStatus{Valid: true, Message: "인증 상태 정상"})
	router := setupRouter(runner, new(MockSettings), "user")

	w := perform(router, http.MethodGet, "/api/backup/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"message":"인증 상태 정상"}`, w.Body.String())
}

func TestManualBackup(t *testing.T) {
	tests := []struct {
		name         string
		result       *Result
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "success",
			result:       &Result{Name: "ASDB_20240101_000000"},
			expectedCode: http.StatusOK,
			expectedBody: "ASDB_20240101_000000",
		},
		{
			name:         "expired token",
			err:          &AuthError{Code: CodeAuthExpired, Message: "만료"},
			expectedCode: http.StatusUnauthorized,
			expectedBody: CodeAuthExpired,
		},
		{
			name:         "drive failure",
			err:          errors.New("quota"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: "백업 중 오류가 발생했습니다.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockRunner)
			runner.On("Run", mock.Anything).Return(tt.result, tt.err)
			router := setupRouter(runner, new(MockSettings), "admin")

			w := perform(router, http.MethodPost, "/api/backup/manual", "")
			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestScheduledBackup(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		settings := new(MockSettings)
		settings.On("AutoBackupEnabled", mock.Anything).Return(false, nil)
		runner := new(MockRunner)

		err := NewScheduledBackup(runner, settings, zap.NewNop()).Run(context.Background())
		assert.NoError(t, err)
		runner.AssertNotCalled(t, "Run", mock.Anything)
	})

	t.Run("enabled", func(t *testing.T) {
		settings := new(MockSettings)
		settings.On("AutoBackupEnabled", mock.Anything).Return(true, nil)
		runner := new(MockRunner)
		runner.On("Run", mock.Anything).Return(&Result{}, nil)

		err := NewScheduledBackup(runner, settings, zap.NewNop()).Run(context.Background())
		assert.NoError(t, err)
		runner.AssertExpectations(t)
	})
}
