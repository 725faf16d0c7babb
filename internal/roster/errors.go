package roster

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

var (
	ErrRosterNotEditable = errors.New("排班表不在草稿状态，请先退回草稿再编辑")
	ErrEmptyRoster       = errors.New("排班表中还没有安排任何员工，无法定稿")
	ErrArchivedTerminal  = errors.New("已归档的排班表不能退回草稿")
	ErrNotInChain        = errors.New("该排班表不属于任何版本链")
	ErrVersionIsActive   = errors.New("该版本当前正在启用中，不需要恢复")
	ErrNoSnapshot        = errors.New("这条历史记录没有携带快照，无法回滚")
)

// IllegalTransitionError 非法的状态转换，错误信息中带上当前状态和要求的状态
type IllegalTransitionError struct {
	Current  domain.RosterStatus
	Required domain.RosterStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("排班表当前状态为 %s，该操作要求状态为 %s", e.Current, e.Required)
}
