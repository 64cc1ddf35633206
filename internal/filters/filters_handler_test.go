package filters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockFilterStore struct {
	mock.Mock
}

func (m *MockFilterStore) List(ctx context.Context, page string) ([]models.SavedFilter, error) {
	args := m.Called(page)
	return args.Get(0).([]models.SavedFilter), args.Error(1)
}

func (m *MockFilterStore) Get(ctx context.Context, id int) (*models.SavedFilter, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedFilter), args.Error(1)
}

func (m *MockFilterStore) Create(ctx context.Context, req models.SavedFilterRequest) (*models.SavedFilter, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedFilter), args.Error(1)
}

func (m *MockFilterStore) Patch(ctx context.Context, id int, patch models.SavedFilterPatch) error {
	return m.Called(id, patch).Error(0)
}

func (m *MockFilterStore) Reorder(ctx context.Context, orders []models.FilterOrder) error {
	return m.Called(orders).Error(0)
}

func (m *MockFilterStore) Delete(ctx context.Context, id int) error {
	return m.Called(id).Error(0)
}

func setupRouter() (*gin.Engine, *MockFilterStore) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := new(MockFilterStore)
	NewHandler(store, zap.NewNop()).RegisterRoutes(router.Group("/api"))
	return router, store
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetFilters(t *testing.T) {
	router, store := setupRouter()
	store.On("List", "assets").Return([]models.SavedFilter{{ID: 1, Name: "가용재고"}}, nil)

	w := perform(router, http.MethodGet, "/api/filters?page=assets", "")

	assert.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestCreateFilter(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantData       string
		expectedStatus int
	}{
		{"object", `{"name":"노트북","page_context":"assets","filter_data":{"searchQuery":"category:노트북"}}`, `{"searchQuery":"category:노트북"}`, http.StatusOK},
		{"encoded string", `{"name":"노트북","page_context":"assets","filter_data":"{\"searchQuery\":\"x\"}"}`, `{"searchQuery":"x"}`, http.StatusOK},
		{"missing page", `{"name":"노트북","filter_data":{}}`, "", http.StatusBadRequest},
		{"null data", `{"name":"노트북","page_context":"assets","filter_data":null}`, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, store := setupRouter()
			if tt.wantData != "" {
				store.On("Create", mock.MatchedBy(func(req models.SavedFilterRequest) bool {
					return string(req.FilterData) == tt.wantData
				})).Return(&models.SavedFilter{ID: 5, Name: "노트북"}, nil)
			}

			w := perform(router, http.MethodPost, "/api/filters", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			store.AssertExpectations(t)
		})
	}
}

func TestPatchFilter(t *testing.T) {
	t.Run("empty patch", func(t *testing.T) {
		router, store := setupRouter()

		w := perform(router, http.MethodPatch, "/api/filters/3", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything)
	})

	t.Run("missing filter", func(t *testing.T) {
		router, store := setupRouter()
		store.On("Patch", 3, mock.Anything).Return(custom_error.ErrNotFound)

		w := perform(router, http.MethodPatch, "/api/filters/3", `{"sort_order":2}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReorderFilters(t *testing.T) {
	router, store := setupRouter()
	orders := []models.FilterOrder{{ID: 3, SortOrder: 0}, {ID: 4, SortOrder: 1}}
	store.On("Reorder", orders).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{"orders": orders})
	w := perform(router, http.MethodPut, "/api/filters/reorder", string(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodPut, "/api/filters/reorder", `{"orders":"x"}`).Code)
	store.AssertExpectations(t)
}

func TestDeleteFilter(t *testing.T) {
	t.Run("protected default", func(t *testing.T) {
		router, store := setupRouter()
		store.On("Get", 1).Return(&models.SavedFilter{ID: 1, FilterData: json.RawMessage(`{"searchQuery":"가용재고","is_protected":true}`)}, nil)

		w := perform(router, http.MethodDelete, "/api/filters/1", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		store.AssertNotCalled(t, "Delete", 1)
	})

	t.Run("user filter", func(t *testing.T) {
		router, store := setupRouter()
		store.On("Get", 8).Return(&models.SavedFilter{ID: 8, FilterData: json.RawMessage(`{"searchQuery":"state:rent"}`)}, nil)
		store.On("Delete", 8).Return(nil)

		w := perform(router, http.MethodDelete, "/api/filters/8", "")

		assert.Equal(t, http.StatusOK, w.Code)
		store.AssertExpectations(t)
	})
}
