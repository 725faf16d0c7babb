package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveChainIDDeterministic(t *testing.T) {
	weekStart := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	first := DeriveChainID(1, weekStart)
	second := DeriveChainID(1, weekStart)
	assert.Equal(t, first, second)

	// 同一周内任意一天派生出同一条链
	assert.Equal(t, first, DeriveChainID(1, weekStart.AddDate(0, 0, 3)))

	// 不同场馆或不同周得到不同的链
	assert.NotEqual(t, first, DeriveChainID(2, weekStart))
	assert.NotEqual(t, first, DeriveChainID(1, weekStart.AddDate(0, 0, 7)))
}

func TestNewChainDraftLeavesVersionToChain(t *testing.T) {
	weekStart := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC) // 周三

	draft := NewChainDraft(42, weekStart, "一月第二周", "值班安排", 7)

	// 版本号和状态由仓储在链的事务内决定。
	// 这里预设版本号的话，同一周第二次创建会往链里插入重复的版本号
	assert.Zero(t, draft.VersionNumber)
	assert.Empty(t, draft.Status)

	require.NotNil(t, draft.ChainID)
	assert.Equal(t, DeriveChainID(42, weekStart), *draft.ChainID)
	assert.Equal(t, "2025-01-06", draft.StartDate.Format(dateLayout))
	assert.Equal(t, "2025-01-12", draft.EndDate.Format(dateLayout))
	assert.Equal(t, int64(7), draft.CreatedBy)
}

func TestNormalizeWeekStart(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, NormalizeWeekStart(monday))
	assert.Equal(t, monday, NormalizeWeekStart(monday.AddDate(0, 0, 2))) // 周三
	assert.Equal(t, monday, NormalizeWeekStart(monday.AddDate(0, 0, 6))) // 周日归到本周一
	assert.Equal(t, monday.AddDate(0, 0, 7), NormalizeWeekStart(monday.AddDate(0, 0, 7)))

	// 时间部分被抹掉
	withTime := time.Date(2025, 1, 8, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, monday, NormalizeWeekStart(withTime))
}
