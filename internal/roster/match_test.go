package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func staffUser(id int64, fullName string) *domain.User {
	return &domain.User{ID: id, FullName: fullName, IsActive: true}
}

func TestMatchCandidatesExactName(t *testing.T) {
	staff := []*domain.User{staffUser(1, "张伟"), staffUser(2, "李芳")}
	candidates := []domain.CandidateShift{{StaffName: "张伟"}}

	unmatched := MatchCandidates(candidates, staff)

	assert.Empty(t, unmatched)
	require.NotNil(t, candidates[0].StaffID)
	assert.Equal(t, int64(1), *candidates[0].StaffID)
	assert.Equal(t, 1.0, candidates[0].MatchConfidence)
}

func TestMatchCandidatesPinyin(t *testing.T) {
	staff := []*domain.User{staffUser(1, "张伟"), staffUser(2, "李芳")}
	candidates := []domain.CandidateShift{
		{StaffName: "zhangwei"},
		{StaffName: "Zhang Wei"},
	}

	unmatched := MatchCandidates(candidates, staff)

	assert.Empty(t, unmatched)
	for _, c := range candidates {
		require.NotNil(t, c.StaffID)
		assert.Equal(t, int64(1), *c.StaffID)
		assert.Equal(t, 0.8, c.MatchConfidence)
	}
}

func TestMatchCandidatesAmbiguousPinyin(t *testing.T) {
	// 李静 和 李晶 的拼音归一化后相同，不能自动匹配
	staff := []*domain.User{staffUser(1, "李静"), staffUser(2, "李晶")}
	candidates := []domain.CandidateShift{{StaffName: "lijing"}}

	unmatched := MatchCandidates(candidates, staff)

	assert.Nil(t, candidates[0].StaffID)
	assert.Equal(t, 0.0, candidates[0].MatchConfidence)
	assert.Equal(t, []string{"lijing"}, unmatched)
}

func TestMatchCandidatesUnmatchedDeduplicated(t *testing.T) {
	staff := []*domain.User{staffUser(1, "张伟")}
	candidates := []domain.CandidateShift{
		{StaffName: "不存在的人"},
		{StaffName: "不存在的人"},
		{StaffName: "另一个人"},
		{StaffName: ""},
	}

	unmatched := MatchCandidates(candidates, staff)

	assert.Equal(t, []string{"不存在的人", "另一个人"}, unmatched)
}
