package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func TestSnapshotFromShifts(t *testing.T) {
	staffID := int64(1)
	shifts := []*domain.RosterShift{
		{
			ID:           10,
			StaffID:      &staffID,
			Date:         time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			StartTime:    "09:00",
			EndTime:      "13:00",
			BreakMinutes: 15,
			Position:     "前台",
			Notes:        "开门",
		},
		{
			ID:        11,
			Date:      time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
			StartTime: "13:00",
			EndTime:   "17:00",
			Position:  "救生员",
		},
	}
	users := map[int64]*domain.User{1: {ID: 1, FullName: "张伟"}}

	items := SnapshotFromShifts(shifts, users)

	require.Len(t, items, 2)
	assert.Equal(t, "张伟", items[0].StaffName)
	assert.Equal(t, "2025-01-06", items[0].Date)
	assert.Equal(t, int32(15), items[0].BreakMinutes)

	// 没有安排员工的班次姓名为空
	assert.Nil(t, items[1].StaffID)
	assert.Empty(t, items[1].StaffName)
}

func TestShiftFromSnapshotItemRoundTrip(t *testing.T) {
	staffID := int64(2)
	item := domain.ShiftSnapshotItem{
		ShiftID:      10,
		StaffID:      &staffID,
		StaffName:    "李芳",
		Date:         "2025-01-06",
		StartTime:    "09:00",
		EndTime:      "13:00",
		BreakMinutes: 30,
		Position:     "前台",
		Notes:        "备注",
	}

	shift, err := shiftFromSnapshotItem(item)
	require.NoError(t, err)

	// 行 ID 不还原，落库时重新生成
	assert.Zero(t, shift.ID)
	assert.Equal(t, &staffID, shift.StaffID)
	assert.Equal(t, "2025-01-06", shift.Date.Format("2006-01-02"))
	assert.Equal(t, "李芳", shift.OriginalName)
	assert.Equal(t, int32(30), shift.BreakMinutes)

	_, err = shiftFromSnapshotItem(domain.ShiftSnapshotItem{Date: "06/01/2025"})
	assert.Error(t, err)
}

func TestCopyShifts(t *testing.T) {
	staffID := int64(1)
	original := []*domain.RosterShift{
		{ID: 10, RosterID: 5, StaffID: &staffID, StartTime: "09:00", EndTime: "13:00"},
	}

	copies := copyShifts(original)

	require.Len(t, copies, 1)
	assert.Zero(t, copies[0].ID)
	assert.Equal(t, "09:00", copies[0].StartTime)

	// 深拷贝，修改副本不影响原班次
	copies[0].StartTime = "10:00"
	assert.Equal(t, "09:00", original[0].StartTime)
}

func TestInfoChanges(t *testing.T) {
	ros := &domain.Roster{Name: "旧名称", Description: "旧描述"}

	// 没有提交任何字段或提交的值与当前相同时不产生变更记录
	assert.Empty(t, infoChanges(ros, nil, nil))
	same := "旧名称"
	assert.Empty(t, infoChanges(ros, &same, nil))

	newName := "新名称"
	changes := infoChanges(ros, &newName, nil)
	require.Len(t, changes, 1)
	assert.Equal(t, map[string]any{"before": "旧名称", "after": "新名称"}, changes["name"])

	newDescription := "新描述"
	changes = infoChanges(ros, &newName, &newDescription)
	assert.Len(t, changes, 2)
}

func TestStaffIDsOf(t *testing.T) {
	one, two := int64(1), int64(2)
	shifts := []*domain.RosterShift{
		{StaffID: &one},
		{StaffID: &two},
		{StaffID: &one},
		{StaffID: nil},
	}

	assert.Equal(t, []int64{1, 2}, staffIDsOf(shifts))
	assert.Empty(t, staffIDsOf(nil))
}
