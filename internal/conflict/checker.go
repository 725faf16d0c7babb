// Package conflict 对候选班次做排班冲突检测。
// 检测按优先级进行：请假 > 重复排班 > 可用时间，命中高优先级规则后不再继续检查。
// 检测只是提示性的，内部出错时按无冲突处理而不是阻塞排班
package conflict

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
)

type Verdict struct {
	HasConflict bool                 `json:"hasConflict"`
	Type        *domain.ConflictType `json:"conflictType"`
	Details     string               `json:"details"`
}

func conflictVerdict(t domain.ConflictType, details string) *Verdict {
	return &Verdict{HasConflict: true, Type: &t, Details: details}
}

var noConflict = &Verdict{}

type Checker struct {
	repo *repository.Repository
}

func NewChecker(repo *repository.Repository) *Checker {
	return &Checker{repo: repo}
}

// Check 检测某个员工在指定日期和时间段排班是否有冲突。
// excludeShiftID 不为空时对应班次不参与重复排班扫描，用于编辑班次时排除自身
func (c *Checker) Check(staffID int64, date time.Time, startTime, endTime string, excludeShiftID *int64) *Verdict {
	verdict, err := c.check(staffID, date, startTime, endTime, excludeShiftID)
	if err != nil {
		// 检测失败时按无冲突处理，不能因为检测本身出错而阻塞排班
		slog.Error("冲突检测失败", "staffID", staffID, "date", date.Format("2006-01-02"), "error", err)
		return noConflict
	}
	return verdict
}

func (c *Checker) check(staffID int64, date time.Time, startTime, endTime string, excludeShiftID *int64) (*Verdict, error) {
	// 1. 已批准的请假（日期为闭区间）
	timeOff, err := c.repo.GetApprovedTimeOffCovering(staffID, date)
	if err != nil {
		return nil, err
	}
	if timeOff != nil {
		details := fmt.Sprintf("该员工在 %s 至 %s 有已批准的请假",
			timeOff.StartDate.Format("2006-01-02"), timeOff.EndDate.Format("2006-01-02"))
		return conflictVerdict(domain.ConflictTimeOff, details), nil
	}

	// 2. 同一天其他班次的时间段重叠
	shifts, err := c.repo.GetShiftsForStaffOnDate(staffID, date, excludeShiftID)
	if err != nil {
		return nil, err
	}
	for _, shift := range shifts {
		if Overlaps(startTime, endTime, shift.StartTime, shift.EndTime) {
			details := fmt.Sprintf("与当天 %s-%s 的班次时间重叠", shift.StartTime, shift.EndTime)
			return conflictVerdict(domain.ConflictDoubleBooked, details), nil
		}
	}

	// 3. 员工申报的可用时间。没有申报记录时不视为冲突
	availability, err := c.repo.GetAvailability(staffID, DayOfWeek(date))
	if err != nil {
		return nil, err
	}
	if availability != nil {
		if !availability.IsAvailable {
			return conflictVerdict(domain.ConflictAvailability, "该员工申报了这一天不可排班"), nil
		}
		if !availability.IsAllDay && !WithinWindow(startTime, endTime, availability.StartTime, availability.EndTime) {
			details := fmt.Sprintf("班次时间 %s-%s 超出申报的可用时间 %s-%s",
				startTime, endTime, availability.StartTime, availability.EndTime)
			return conflictVerdict(domain.ConflictAvailability, details), nil
		}
	}

	return noConflict, nil
}

// Overlaps 判断两个半开区间 [aStart, aEnd) 和 [bStart, bEnd) 是否重叠。
// 时间是 "15:04" 格式的本地时间字符串，补零后字典序比较与时间先后一致。
// 一个班次 17:00 结束、另一个 17:00 开始不算重叠
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// WithinWindow 判断班次时间段是否完全落在申报的可用时间窗口内
func WithinWindow(start, end, windowStart, windowEnd string) bool {
	return start >= windowStart && end <= windowEnd
}

// DayOfWeek 返回 1 到 7，1 表示周一
func DayOfWeek(date time.Time) int32 {
	weekday := int32(date.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}
