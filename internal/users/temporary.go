package users

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxTemporaryIDAttempts = 5

var errTemporaryIDExhausted = errors.New("임시 ID 생성 실패. 다시 시도해주세요.")

// NewTemporaryID returns TEMP_<base36 millis>_<4 random>, upper case.
func NewTemporaryID() string {
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return strings.ToUpper("TEMP_" + stamp + "_" + random)
}
