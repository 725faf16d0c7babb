package diff

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func staffEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// fieldChanges 列出除换人之外的字段差异，每条是一句可读的描述
func fieldChanges(before, after domain.ShiftSnapshotItem) []string {
	changes := []string{}
	if before.EndTime != after.EndTime {
		changes = append(changes, fmt.Sprintf("结束时间由 %s 改为 %s", before.EndTime, after.EndTime))
	}
	if before.BreakMinutes != after.BreakMinutes {
		changes = append(changes, fmt.Sprintf("休息时间由 %d 分钟改为 %d 分钟", before.BreakMinutes, after.BreakMinutes))
	}
	if before.Notes != after.Notes {
		changes = append(changes, "备注发生变化")
	}
	return changes
}

// Compare 计算两个快照之间的结构差异。
// 换人（reassigned）和字段变化（modified）分开统计，同一个槽位可能同时出现在两类中
func Compare(before, after []domain.ShiftSnapshotItem) *Result {
	beforeBySlot := make(map[SlotKey]domain.ShiftSnapshotItem, len(before))
	for _, s := range before {
		beforeBySlot[KeyOf(s)] = s
	}
	afterBySlot := make(map[SlotKey]domain.ShiftSnapshotItem, len(after))
	for _, s := range after {
		afterBySlot[KeyOf(s)] = s
	}

	result := &Result{
		Added:      []domain.ShiftSnapshotItem{},
		Removed:    []domain.ShiftSnapshotItem{},
		Modified:   []ModifiedEntry{},
		Reassigned: []ReassignedEntry{},
	}
	affected := map[int64]bool{}
	touch := func(ids ...*int64) {
		for _, id := range ids {
			if id != nil {
				affected[*id] = true
			}
		}
	}

	for _, s := range after {
		key := KeyOf(s)
		prev, exists := beforeBySlot[key]
		if !exists {
			result.Added = append(result.Added, s)
			touch(s.StaffID)
			continue
		}

		if !staffEqual(prev.StaffID, s.StaffID) {
			result.Reassigned = append(result.Reassigned, ReassignedEntry{
				Slot:              key,
				PreviousStaffID:   prev.StaffID,
				PreviousStaffName: prev.StaffName,
				NewStaffID:        s.StaffID,
				NewStaffName:      s.StaffName,
			})
			touch(prev.StaffID, s.StaffID)
		}

		if changes := fieldChanges(prev, s); len(changes) > 0 {
			result.Modified = append(result.Modified, ModifiedEntry{
				Slot:    key,
				Before:  prev,
				After:   s,
				Changes: changes,
			})
			touch(prev.StaffID, s.StaffID)
		}
	}

	for _, s := range before {
		if _, exists := afterBySlot[KeyOf(s)]; !exists {
			result.Removed = append(result.Removed, s)
			touch(s.StaffID)
		}
	}

	result.Summary.TotalChanges = len(result.Added) + len(result.Removed) + len(result.Modified) + len(result.Reassigned)
	result.Summary.AffectedUsers = make([]int64, 0, len(affected))
	for id := range affected {
		result.Summary.AffectedUsers = append(result.Summary.AffectedUsers, id)
	}
	slices.Sort(result.Summary.AffectedUsers)

	return result
}

// ChangesForUser 从差异结果中提取和某个员工相关的变化描述，用于拼装通知内容
func (r *Result) ChangesForUser(userID int64) []string {
	changes := []string{}

	for _, s := range r.Added {
		if s.StaffID != nil && *s.StaffID == userID {
			changes = append(changes, fmt.Sprintf("新增 %s %s-%s 的班次", s.Date, s.StartTime, s.EndTime))
		}
	}
	for _, s := range r.Removed {
		if s.StaffID != nil && *s.StaffID == userID {
			changes = append(changes, fmt.Sprintf("取消 %s %s-%s 的班次", s.Date, s.StartTime, s.EndTime))
		}
	}
	for _, e := range r.Reassigned {
		if e.PreviousStaffID != nil && *e.PreviousStaffID == userID {
			changes = append(changes, fmt.Sprintf("%s %s 的班次改由 %s 负责", e.Slot.Date, e.Slot.StartTime, e.NewStaffName))
		}
		if e.NewStaffID != nil && *e.NewStaffID == userID {
			changes = append(changes, fmt.Sprintf("%s %s 的班次改由您负责", e.Slot.Date, e.Slot.StartTime))
		}
	}
	for _, e := range r.Modified {
		related := (e.Before.StaffID != nil && *e.Before.StaffID == userID) ||
			(e.After.StaffID != nil && *e.After.StaffID == userID)
		if related {
			for _, c := range e.Changes {
				changes = append(changes, fmt.Sprintf("%s %s 的班次%s", e.Slot.Date, e.Slot.StartTime, c))
			}
		}
	}

	return changes
}
