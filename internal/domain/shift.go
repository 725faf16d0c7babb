package domain

import "time"

type ConflictType string

const (
	ConflictTimeOff      ConflictType = "TIME_OFF"
	ConflictDoubleBooked ConflictType = "DOUBLE_BOOKED"
	ConflictAvailability ConflictType = "AVAILABILITY"
)

// RosterShift 班次的开始和结束时间都是场馆本地时间，格式为 "15:04"，不做时区换算
type RosterShift struct {
	ID           int64         `json:"id"`
	RosterID     int64         `json:"rosterID"`
	StaffID      *int64        `json:"staffID"` // 为空表示这个班次还没有安排员工
	Date         time.Time     `json:"date"`
	StartTime    string        `json:"startTime"`
	EndTime      string        `json:"endTime"`
	BreakMinutes int32         `json:"breakMinutes"`
	Position     string        `json:"position"`
	Notes        string        `json:"notes"`
	OriginalName string        `json:"originalName"` // 从排班文件中提取出来的原始姓名，自动匹配有歧义时用于审计
	HasConflict  bool          `json:"hasConflict"`
	ConflictType *ConflictType `json:"conflictType"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// ShiftSnapshotItem 是历史快照中一条反规范化的班次记录，
// 不需要再关联其他表即可完整还原班次集合
type ShiftSnapshotItem struct {
	ShiftID      int64  `json:"shiftID"`
	StaffID      *int64 `json:"staffID"`
	StaffName    string `json:"staffName"`
	Date         string `json:"date"` // "2006-01-02"
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	BreakMinutes int32  `json:"breakMinutes"`
	Position     string `json:"position"`
	Notes        string `json:"notes"`
}
