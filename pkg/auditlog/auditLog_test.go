package auditlog

import (
	"context"
	"errors"
	"testing"

	"assetdb/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) PersistLog(ctx context.Context, entry models.AuditLog, data interface{}) error {
	args := m.Called(entry, data)
	return args.Error(0)
}

func TestLog(t *testing.T) {
	persister := new(MockPersister)
	asset := &models.Asset{ID: 12, AssetNumber: "NB-001"}
	data := map[string]interface{}{"asset_number": "NB-001"}

	persister.On("PersistLog", models.AuditLog{
		ResourceID:   12,
		ResourceType: "asset",
		Action:       "update",
		Actor:        "admin",
	}, data).Return(nil)

	NewAuditLog(persister, zap.NewNop()).Log("update", "admin", data, asset)

	persister.AssertExpectations(t)
}

func TestLogFailureIsOnlyLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	persister := new(MockPersister)
	persister.On("PersistLog", mock.Anything, mock.Anything).Return(errors.New("db down"))

	NewAuditLog(persister, zap.New(core)).Log("delete", "", nil, &models.User{ID: 3})

	assert.Equal(t, 1, logs.FilterMessage("unable to create audit log entry").Len())
}
