package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func TestRecheckRequiresDraft(t *testing.T) {
	svc := &Service{}
	user := &domain.User{ID: 1}

	// 检测结果会改写班次行，非草稿的排班表不允许重查
	for _, status := range []domain.RosterStatus{
		domain.RosterStatusApproved,
		domain.RosterStatusPublished,
		domain.RosterStatusArchived,
	} {
		_, err := svc.Recheck(&domain.Roster{ID: 1, Status: status}, user)
		assert.ErrorIs(t, err, ErrRosterNotEditable)
	}
}
