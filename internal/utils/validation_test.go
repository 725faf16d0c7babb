package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func TestIsValidWallClock(t *testing.T) {
	assert.True(t, IsValidWallClock("09:00"))
	assert.True(t, IsValidWallClock("23:59"))
	assert.True(t, IsValidWallClock("00:00"))

	assert.False(t, IsValidWallClock("9:00")) // 必须补零
	assert.False(t, IsValidWallClock("24:00"))
	assert.False(t, IsValidWallClock("09:60"))
	assert.False(t, IsValidWallClock("09:00:00"))
	assert.False(t, IsValidWallClock(""))
}

func TestValidateShiftTimes(t *testing.T) {
	shift := &domain.RosterShift{StartTime: "09:00", EndTime: "17:00"}
	assert.NoError(t, ValidateShiftTimes(shift))

	shift = &domain.RosterShift{StartTime: "17:00", EndTime: "09:00"}
	assert.Error(t, ValidateShiftTimes(shift))

	shift = &domain.RosterShift{StartTime: "09:00", EndTime: "09:00"}
	assert.Error(t, ValidateShiftTimes(shift))

	shift = &domain.RosterShift{StartTime: "9:00", EndTime: "17:00"}
	assert.Error(t, ValidateShiftTimes(shift))
}

func TestValidateShiftWithinRoster(t *testing.T) {
	weekStart := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	roster := &domain.Roster{StartDate: weekStart, EndDate: weekStart.AddDate(0, 0, 6)}

	shift := &domain.RosterShift{Date: weekStart.AddDate(0, 0, 3)}
	assert.NoError(t, ValidateShiftWithinRoster(shift, roster))

	shift = &domain.RosterShift{Date: weekStart.AddDate(0, 0, -1)}
	assert.Error(t, ValidateShiftWithinRoster(shift, roster))

	shift = &domain.RosterShift{Date: weekStart.AddDate(0, 0, 7)}
	assert.Error(t, ValidateShiftWithinRoster(shift, roster))
}
