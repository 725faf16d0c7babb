package utils

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// IsValidWallClock 检查字符串是否是 "15:04" 格式的本地时间
func IsValidWallClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}

func ValidateShiftTimes(shift *domain.RosterShift) error {
	if !IsValidWallClock(shift.StartTime) {
		return fmt.Errorf("班次开始时间 %q 格式错误", shift.StartTime)
	}
	if !IsValidWallClock(shift.EndTime) {
		return fmt.Errorf("班次结束时间 %q 格式错误", shift.EndTime)
	}
	// 时间是补零后的 "15:04" 格式，可以直接按字典序比较
	if shift.EndTime <= shift.StartTime {
		return fmt.Errorf("班次结束时间 %s 必须晚于开始时间 %s", shift.EndTime, shift.StartTime)
	}
	return nil
}

// ValidateShiftWithinRoster 检查班次日期是否落在排班表覆盖的一周内
func ValidateShiftWithinRoster(shift *domain.RosterShift, roster *domain.Roster) error {
	if shift.Date.Before(roster.StartDate) || shift.Date.After(roster.EndDate) {
		return fmt.Errorf("班次日期 %s 不在排班表覆盖的日期范围内", shift.Date.Format("2006-01-02"))
	}
	return nil
}
