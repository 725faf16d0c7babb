package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func TestPreviewMergeClassification(t *testing.T) {
	existing := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
		snapshotItem(ptr(2), "李芳", "2025-01-06", "13:00", "17:00", "前台"),
		snapshotItem(ptr(3), "王强", "2025-01-07", "09:00", "13:00", "救生员"),
	}
	incoming := []domain.ShiftSnapshotItem{
		// 没变
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
		// 换人，算更新
		snapshotItem(ptr(4), "陈敏", "2025-01-06", "13:00", "17:00", "前台"),
		// 新槽位
		snapshotItem(ptr(5), "刘静", "2025-01-08", "09:00", "13:00", "前台"),
	}

	preview := PreviewMerge(existing, incoming)

	require.Len(t, preview.ToAdd, 1)
	assert.Equal(t, "2025-01-08", preview.ToAdd[0].Date)

	require.Len(t, preview.ToRemove, 1)
	assert.Equal(t, "2025-01-07", preview.ToRemove[0].Date)

	require.Len(t, preview.ToUpdate, 1)
	assert.Equal(t, ptr(2), preview.ToUpdate[0].Existing.StaffID)
	assert.Equal(t, ptr(4), preview.ToUpdate[0].Incoming.StaffID)

	assert.Len(t, preview.Unchanged, 1)
	assert.Empty(t, preview.Conflicts)
}

func TestPreviewMergeDuplicateSlotConflict(t *testing.T) {
	existing := []domain.ShiftSnapshotItem{}
	incoming := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
		snapshotItem(ptr(2), "李芳", "2025-01-06", "09:00", "13:00", "前台"),
	}

	preview := PreviewMerge(existing, incoming)

	// 同一个槽位出现两条记录时整个槽位进入冲突，不自动取舍
	require.Len(t, preview.Conflicts, 1)
	assert.Len(t, preview.Conflicts[0].Entries, 2)
	assert.Empty(t, preview.ToAdd)
}

func TestPreviewMergeEndTimeChange(t *testing.T) {
	existing := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
	}
	incoming := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "14:00", "前台"),
	}

	preview := PreviewMerge(existing, incoming)

	require.Len(t, preview.ToUpdate, 1)
	require.Len(t, preview.ToUpdate[0].Changes, 1)
	assert.Contains(t, preview.ToUpdate[0].Changes[0], "结束时间")
}
