// Package diff 比较两个班次快照的结构差异。
// 班次的身份不是数据库行 ID，而是槽位键 (日期, 开始时间, 岗位)：
// 同一个槽位在两个版本之间即使换了人也被视为同一个班次，换人是最常见的差异
package diff

import "github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"

type SlotKey struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Position  string `json:"position"`
}

func KeyOf(s domain.ShiftSnapshotItem) SlotKey {
	return SlotKey{Date: s.Date, StartTime: s.StartTime, Position: s.Position}
}

// ReassignedEntry 同一个槽位换了人
type ReassignedEntry struct {
	Slot              SlotKey `json:"slot"`
	PreviousStaffID   *int64  `json:"previousStaffID"`
	PreviousStaffName string  `json:"previousStaffName"`
	NewStaffID        *int64  `json:"newStaffID"`
	NewStaffName      string  `json:"newStaffName"`
}

// ModifiedEntry 同一个槽位的字段发生了变化（与是否换人无关）
type ModifiedEntry struct {
	Slot    SlotKey                  `json:"slot"`
	Before  domain.ShiftSnapshotItem `json:"before"`
	After   domain.ShiftSnapshotItem `json:"after"`
	Changes []string                 `json:"changes"` // 每个字段一条可读的变化描述
}

type Summary struct {
	TotalChanges  int     `json:"totalChanges"`
	AffectedUsers []int64 `json:"affectedUsers"` // 被任何一条差异触及的员工 ID 并集
}

type Result struct {
	Added      []domain.ShiftSnapshotItem `json:"added"`
	Removed    []domain.ShiftSnapshotItem `json:"removed"`
	Modified   []ModifiedEntry            `json:"modified"`
	Reassigned []ReassignedEntry          `json:"reassigned"`
	Summary    Summary                    `json:"summary"`
}

// UpdateEntry 预览合并时一个需要更新的槽位，Existing 携带现有班次的 ID 供落库使用
type UpdateEntry struct {
	Existing domain.ShiftSnapshotItem `json:"existing"`
	Incoming domain.ShiftSnapshotItem `json:"incoming"`
	Changes  []string                 `json:"changes"`
}

// MergeConflict 同一个槽位在提取结果中出现了多条记录，无法自动决定保留哪一条
type MergeConflict struct {
	Slot    SlotKey                    `json:"slot"`
	Entries []domain.ShiftSnapshotItem `json:"entries"`
}

// MergePreview 把提取出来的班次套在现有草稿上的预览结果。
// 调用方之后可以只应用其中的一部分，比如只加不删
type MergePreview struct {
	ToAdd     []domain.ShiftSnapshotItem `json:"toAdd"`
	ToRemove  []domain.ShiftSnapshotItem `json:"toRemove"`
	ToUpdate  []UpdateEntry              `json:"toUpdate"`
	Unchanged []domain.ShiftSnapshotItem `json:"unchanged"`
	Conflicts []MergeConflict            `json:"conflicts"`
}
