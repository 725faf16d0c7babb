package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func ptr(id int64) *int64 {
	return &id
}

func snapshotItem(staffID *int64, staffName, date, startTime, endTime, position string) domain.ShiftSnapshotItem {
	return domain.ShiftSnapshotItem{
		StaffID:   staffID,
		StaffName: staffName,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Position:  position,
	}
}

func TestCompareIdenticalSnapshots(t *testing.T) {
	snapshot := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
		snapshotItem(ptr(2), "李芳", "2025-01-06", "13:00", "17:00", "前台"),
	}

	result := Compare(snapshot, snapshot)

	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
	assert.Empty(t, result.Modified)
	assert.Empty(t, result.Reassigned)
	assert.Equal(t, 0, result.Summary.TotalChanges)
	assert.Empty(t, result.Summary.AffectedUsers)
}

func TestCompareReassignment(t *testing.T) {
	before := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
	}
	after := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(2), "李芳", "2025-01-06", "09:00", "13:00", "前台"),
	}

	result := Compare(before, after)

	require.Len(t, result.Reassigned, 1)
	entry := result.Reassigned[0]
	assert.Equal(t, ptr(1), entry.PreviousStaffID)
	assert.Equal(t, ptr(2), entry.NewStaffID)
	assert.Equal(t, "李芳", entry.NewStaffName)

	// 换人同时触及新旧两名员工
	assert.Equal(t, []int64{1, 2}, result.Summary.AffectedUsers)
	assert.Equal(t, 1, result.Summary.TotalChanges)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
}

func TestCompareAddedAndRemoved(t *testing.T) {
	before := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
	}
	after := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(2), "李芳", "2025-01-07", "09:00", "13:00", "救生员"),
	}

	result := Compare(before, after)

	require.Len(t, result.Added, 1)
	require.Len(t, result.Removed, 1)
	assert.Equal(t, "2025-01-07", result.Added[0].Date)
	assert.Equal(t, "2025-01-06", result.Removed[0].Date)
	assert.Equal(t, 2, result.Summary.TotalChanges)
	assert.Equal(t, []int64{1, 2}, result.Summary.AffectedUsers)
}

func TestCompareModifiedFields(t *testing.T) {
	before := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
	}
	changed := snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "14:00", "前台")
	changed.BreakMinutes = 30

	result := Compare(before, []domain.ShiftSnapshotItem{changed})

	require.Len(t, result.Modified, 1)
	assert.Len(t, result.Modified[0].Changes, 2) // 结束时间和休息时间
	assert.Empty(t, result.Reassigned)
	assert.Equal(t, []int64{1}, result.Summary.AffectedUsers)
}

func TestCompareReassignedAndModifiedSameSlot(t *testing.T) {
	before := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
	}
	after := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(2), "李芳", "2025-01-06", "09:00", "15:00", "前台"),
	}

	result := Compare(before, after)

	// 换人和字段变化分开统计，同一个槽位两边都出现
	assert.Len(t, result.Reassigned, 1)
	assert.Len(t, result.Modified, 1)
	assert.Equal(t, 2, result.Summary.TotalChanges)
}

func TestChangesForUser(t *testing.T) {
	before := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(1), "张伟", "2025-01-06", "09:00", "13:00", "前台"),
		snapshotItem(ptr(1), "张伟", "2025-01-07", "09:00", "13:00", "前台"),
	}
	after := []domain.ShiftSnapshotItem{
		snapshotItem(ptr(2), "李芳", "2025-01-06", "09:00", "13:00", "前台"),
		snapshotItem(ptr(1), "张伟", "2025-01-08", "09:00", "13:00", "前台"),
	}

	result := Compare(before, after)

	// 张伟：1 月 6 日被换下、1 月 7 日被取消、1 月 8 日新增
	changes := result.ChangesForUser(1)
	assert.Len(t, changes, 3)

	// 李芳：接手 1 月 6 日的班次
	changes = result.ChangesForUser(2)
	require.Len(t, changes, 1)
	assert.Contains(t, changes[0], "改由您负责")

	assert.Empty(t, result.ChangesForUser(99))
}
