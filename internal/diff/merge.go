package diff

import (
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// updateChanges 预览合并时比较现有班次和提取出来的班次，换人也算一种更新
func updateChanges(existing, incoming domain.ShiftSnapshotItem) []string {
	changes := fieldChanges(existing, incoming)
	if !staffEqual(existing.StaffID, incoming.StaffID) {
		changes = append(changes, "排班员工由 "+existing.StaffName+" 改为 "+incoming.StaffName)
	}
	return changes
}

// PreviewMerge 用槽位键比较现有草稿和提取出来的班次，产出一份可以部分应用的合并预览。
// 提取结果里同一个槽位出现多条记录时无法自动取舍，整个槽位进入 Conflicts 由人工处理
func PreviewMerge(existing, incoming []domain.ShiftSnapshotItem) *MergePreview {
	preview := &MergePreview{
		ToAdd:     []domain.ShiftSnapshotItem{},
		ToRemove:  []domain.ShiftSnapshotItem{},
		ToUpdate:  []UpdateEntry{},
		Unchanged: []domain.ShiftSnapshotItem{},
		Conflicts: []MergeConflict{},
	}

	incomingBySlot := map[SlotKey][]domain.ShiftSnapshotItem{}
	for _, s := range incoming {
		key := KeyOf(s)
		incomingBySlot[key] = append(incomingBySlot[key], s)
	}

	existingBySlot := make(map[SlotKey]domain.ShiftSnapshotItem, len(existing))
	for _, s := range existing {
		existingBySlot[KeyOf(s)] = s
	}

	conflicted := map[SlotKey]bool{}
	for _, s := range incoming {
		key := KeyOf(s)
		if conflicted[key] {
			continue
		}

		group := incomingBySlot[key]
		if len(group) > 1 {
			conflicted[key] = true
			preview.Conflicts = append(preview.Conflicts, MergeConflict{Slot: key, Entries: group})
			continue
		}

		current, exists := existingBySlot[key]
		if !exists {
			preview.ToAdd = append(preview.ToAdd, s)
			continue
		}

		if changes := updateChanges(current, s); len(changes) > 0 {
			preview.ToUpdate = append(preview.ToUpdate, UpdateEntry{
				Existing: current,
				Incoming: s,
				Changes:  changes,
			})
		} else {
			preview.Unchanged = append(preview.Unchanged, current)
		}
	}

	for _, s := range existing {
		if _, exists := incomingBySlot[KeyOf(s)]; !exists {
			preview.ToRemove = append(preview.ToRemove, s)
		}
	}

	return preview
}
