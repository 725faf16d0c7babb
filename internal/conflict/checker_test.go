package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	// 半开区间，首尾相接不算重叠
	assert.False(t, Overlaps("09:00", "13:00", "13:00", "17:00"))
	assert.False(t, Overlaps("13:00", "17:00", "09:00", "13:00"))

	assert.True(t, Overlaps("12:00", "16:00", "13:00", "17:00"))
	assert.True(t, Overlaps("13:00", "17:00", "12:00", "16:00"))
	assert.True(t, Overlaps("09:00", "17:00", "10:00", "11:00")) // 完全包含
	assert.True(t, Overlaps("10:00", "11:00", "09:00", "17:00"))
	assert.True(t, Overlaps("09:00", "17:00", "09:00", "17:00")) // 完全相同

	assert.False(t, Overlaps("08:00", "09:00", "10:00", "11:00"))
}

func TestWithinWindow(t *testing.T) {
	assert.True(t, WithinWindow("10:00", "14:00", "09:00", "18:00"))
	assert.True(t, WithinWindow("09:00", "18:00", "09:00", "18:00"))

	assert.False(t, WithinWindow("08:00", "14:00", "09:00", "18:00"))
	assert.False(t, WithinWindow("10:00", "19:00", "09:00", "18:00"))
}

func TestDayOfWeek(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int32(1), DayOfWeek(monday))
	assert.Equal(t, int32(6), DayOfWeek(monday.AddDate(0, 0, 5)))
	assert.Equal(t, int32(7), DayOfWeek(monday.AddDate(0, 0, 6)))
}
