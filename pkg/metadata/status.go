package metadata

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusWait        Status = "wait"
	StatusUseable     Status = "useable"
	StatusRent        Status = "rent"
	StatusRepair      Status = "repair"
	StatusTermination Status = "termination"
	StatusProcessTer  Status = "process-ter"
	StatusHold        Status = "hold"
)

func NewStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusWait, StatusUseable, StatusRent, StatusRepair, StatusTermination, StatusProcessTer, StatusHold:
		return true
	default:
		return false
	}
}

// IsHold is case insensitive, legacy rows store "HOLD".
func IsHold(state string) bool {
	return strings.EqualFold(strings.TrimSpace(state), string(StatusHold))
}

func (s Status) String() string {
	return string(s)
}
