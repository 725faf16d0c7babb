package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func TestBuildNotifications(t *testing.T) {
	ros := &domain.Roster{ID: 9, Name: "一月第一周"}
	recipients := map[int64]string{
		1: "您的排班有 2 处变化",
		2: "您的班次没有变化",
	}
	users := map[int64]*domain.User{
		1: {ID: 1, Email: "zhangwei@example.com"},
	}

	msgs := buildNotifications(ros, domain.NotificationRosterPublished, recipients, users)

	// 查不到邮箱的收件人被跳过
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].UserID)
	assert.Equal(t, "zhangwei@example.com", msgs[0].To)
	assert.Equal(t, "排班通知：一月第一周", msgs[0].Title)
	assert.Equal(t, "/rosters/9", msgs[0].Link)
	assert.Equal(t, domain.NotificationRosterPublished, msgs[0].Type)
}
