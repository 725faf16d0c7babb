package domain

import "time"

// CandidateShift 是提取服务产出的候选班次，staffID 为空表示姓名没有匹配到用户
type CandidateShift struct {
	StaffName       string  `json:"staffName"`
	StaffID         *int64  `json:"staffID"`
	Date            string  `json:"date"` // "2006-01-02"
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Position        string  `json:"position"`
	Notes           string  `json:"notes"`
	MatchConfidence float64 `json:"matchConfidence"`
}

// ExtractionSession 暂存一次提取的结果，在用户确认之前保存在 redis 中
type ExtractionSession struct {
	ID             string           `json:"id"`
	VenueID        int64            `json:"venueID"`
	WeekStart      string           `json:"weekStart"` // "2006-01-02"，周一
	Candidates     []CandidateShift `json:"candidates"`
	UnmatchedNames []string         `json:"unmatchedNames"`
	CreatedBy      int64            `json:"createdBy"`
	CreatedAt      time.Time        `json:"createdAt"`
}
