package custom_error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWrapDBError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique     bool
		foreignKey bool
	}{
		{"unique violation", &pq.Error{Code: "23505", Constraint: "assets_asset_number_key"}, true, false},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true, false},
		{"foreign key violation", &pq.Error{Code: "23503"}, false, true},
		{"other pq error", &pq.Error{Code: "42P01"}, false, false},
		{"plain error", errors.New("connection reset"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapDBError("insert asset", tt.err)
			assert.Error(t, wrapped)
			assert.Equal(t, tt.unique, IsUniqueViolation(wrapped))
			assert.Equal(t, tt.foreignKey, IsForeignKeyViolation(wrapped))
		})
	}
}

func TestWrapDBErrorNil(t *testing.T) {
	assert.NoError(t, WrapDBError("noop", nil))
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("trade 2: %w", NewValidationError("state is %q", "rent"))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), `state is "rent"`)
	assert.False(t, IsValidation(ErrNotFound))
}
