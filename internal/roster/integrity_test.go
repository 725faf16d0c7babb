package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func chainMember(id int64, version int32, status domain.RosterStatus) *domain.Roster {
	return &domain.Roster{ID: id, VersionNumber: version, Status: status}
}

func TestCorrectActiveMember(t *testing.T) {
	members := []*domain.Roster{
		chainMember(1, 1, domain.RosterStatusArchived),
		chainMember(2, 2, domain.RosterStatusPublished),
		chainMember(3, 3, domain.RosterStatusPublished),
		chainMember(4, 4, domain.RosterStatusDraft),
	}

	// 已发布成员中版本号最大的那个
	correct := CorrectActiveMember(members)
	require.NotNil(t, correct)
	assert.Equal(t, int64(3), correct.ID)
}

func TestCorrectActiveMemberNoPublished(t *testing.T) {
	members := []*domain.Roster{
		chainMember(1, 1, domain.RosterStatusArchived),
		chainMember(2, 2, domain.RosterStatusDraft),
	}

	assert.Nil(t, CorrectActiveMember(members))
	assert.Nil(t, CorrectActiveMember(nil))
}

func TestIllegalTransitionErrorMessage(t *testing.T) {
	err := &IllegalTransitionError{
		Current:  domain.RosterStatusDraft,
		Required: domain.RosterStatusApproved,
	}

	assert.Contains(t, err.Error(), string(domain.RosterStatusDraft))
	assert.Contains(t, err.Error(), string(domain.RosterStatusApproved))
}
