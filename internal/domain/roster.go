package domain

import "time"

type RosterStatus string

const (
	RosterStatusDraft     RosterStatus = "DRAFT"
	RosterStatusApproved  RosterStatus = "APPROVED"
	RosterStatusPublished RosterStatus = "PUBLISHED"
	RosterStatusArchived  RosterStatus = "ARCHIVED"

	// RosterStatusPendingReview 是旧版系统遗留的状态，仅在定稿接口中作为 DRAFT 的别名被接受，
	// 数据库中不会存在这个状态
	RosterStatusPendingReview RosterStatus = "PENDING_REVIEW"
)

type Roster struct {
	ID            int64        `json:"id"`
	VenueID       int64        `json:"venueID"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	StartDate     time.Time    `json:"startDate"`
	EndDate       time.Time    `json:"endDate"`
	Status        RosterStatus `json:"status"`
	ChainID       *string      `json:"chainID"`
	VersionNumber int32        `json:"versionNumber"`
	IsActive      bool         `json:"isActive"`
	ParentID      *int64       `json:"parentID"`
	CreatedBy     int64        `json:"createdBy"`
	PublishedBy   *int64       `json:"publishedBy"`
	PublishedAt   *time.Time   `json:"publishedAt"`
	CreatedAt     time.Time    `json:"createdAt"`
	Revision      int32        `json:"revision"` // 编辑计数器，同时作为乐观锁版本号
}

// ChainSummary 是某条版本链的概览信息
type ChainSummary struct {
	ChainID              string `json:"chainID"`
	VenueID              int64  `json:"venueID"`
	VersionCount         int32  `json:"versionCount"`
	PublishedCount       int32  `json:"publishedCount"`
	ActiveVersionNumber  *int32 `json:"activeVersionNumber"`
	ActiveRosterID       *int64 `json:"activeRosterID"`
	HasDraftInFlight     bool   `json:"hasDraftInFlight"`
	LatestVersionNumber  int32  `json:"latestVersionNumber"`
}

// UnmatchedStaff 记录从排班文件中提取出来但无法自动匹配到用户的姓名
type UnmatchedStaff struct {
	ID              int64     `json:"id"`
	RosterID        int64     `json:"rosterID"`
	OriginalName    string    `json:"originalName"`
	SuggestedUserID *int64    `json:"suggestedUserID"`
	Confidence      float64   `json:"confidence"`
	CreatedAt       time.Time `json:"createdAt"`
}
