package domain

import "time"

type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "PENDING"
	TimeOffApproved TimeOffStatus = "APPROVED"
	TimeOffRejected TimeOffStatus = "REJECTED"
)

// TimeOffRequest 由请假模块维护，本服务只读
type TimeOffRequest struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"userID"`
	StartDate time.Time     `json:"startDate"`
	EndDate   time.Time     `json:"endDate"` // 闭区间
	Status    TimeOffStatus `json:"status"`
	Reason    string        `json:"reason"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Availability 是员工申报的某个星期几的可用时间，同样由外部模块维护
type Availability struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userID"`
	DayOfWeek   int32  `json:"dayOfWeek"` // 1 表示周一，7 表示周日
	IsAvailable bool   `json:"isAvailable"`
	IsAllDay    bool   `json:"isAllDay"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}
