package domain

import "time"

type HistoryAction string

const (
	ActionCreated             HistoryAction = "CREATED"
	ActionInfoUpdated         HistoryAction = "INFO_UPDATED"
	ActionShiftAdded          HistoryAction = "SHIFT_ADDED"
	ActionShiftUpdated        HistoryAction = "SHIFT_UPDATED"
	ActionShiftDeleted        HistoryAction = "SHIFT_DELETED"
	ActionShiftsBulkAdded     HistoryAction = "SHIFTS_BULK_ADDED"
	ActionConflictsRechecked  HistoryAction = "CONFLICTS_RECHECKED"
	ActionFinalized           HistoryAction = "FINALIZED"
	ActionPublished           HistoryAction = "PUBLISHED"
	ActionPublishedNewVersion HistoryAction = "PUBLISHED_AS_NEW_VERSION"
	ActionUnpublished         HistoryAction = "UNPUBLISHED"
	ActionRevertedToDraft     HistoryAction = "REVERTED_TO_DRAFT"
	ActionVersionCreated      HistoryAction = "VERSION_CREATED"
	ActionVersionSuperseded   HistoryAction = "VERSION_SUPERSEDED"
	ActionVersionRestored     HistoryAction = "VERSION_RESTORED"
	ActionRolledBack          HistoryAction = "ROLLED_BACK"
	ActionMergeStarted        HistoryAction = "MERGE_STARTED"
	ActionMergeCompleted      HistoryAction = "MERGE_COMPLETED"
	ActionChainRepaired       HistoryAction = "CHAIN_REPAIRED"
)

// RosterHistory 是只追加的审计记录，写入后不会再被修改或删除
type RosterHistory struct {
	ID             int64               `json:"id"`
	RosterID       int64               `json:"rosterID"`
	ChainID        *string             `json:"chainID"`
	Version        int32               `json:"version"` // 该条记录生效后排班表的 revision 值
	Action         HistoryAction       `json:"action"`
	Changes        map[string]any      `json:"changes"`
	ShiftsSnapshot []ShiftSnapshotItem `json:"shiftsSnapshot,omitempty"`
	Metadata       map[string]any      `json:"metadata,omitempty"`
	PerformedBy    int64               `json:"performedBy"`
	CreatedAt      time.Time           `json:"createdAt"`

	// 查询整条链的历史时会带上这两个字段方便前端展示
	RosterName    string `json:"rosterName,omitempty"`
	VersionNumber int32  `json:"versionNumber,omitempty"`
}

// RollbackPoint 是一条携带完整快照的历史记录，可以作为回滚的目标
type RollbackPoint struct {
	HistoryID  int64         `json:"historyID"`
	Action     HistoryAction `json:"action"`
	Version    int32         `json:"version"`
	ShiftCount int32         `json:"shiftCount"`
	CreatedAt  time.Time     `json:"createdAt"`
}
