// Package roster 实现排班表的生命周期状态机、版本链管理、差异合并和链一致性体检。
// 多步状态变更都由 repository 层的单个事务完成，本包负责编排和业务规则
package roster

import (
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/conflict"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/notifier"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
)

type Service struct {
	cfg      *config.Config
	repo     *repository.Repository
	checker  *conflict.Checker
	notifier *notifier.Notifier
}

func NewService(cfg *config.Config, repo *repository.Repository, checker *conflict.Checker, n *notifier.Notifier) *Service {
	return &Service{
		cfg:      cfg,
		repo:     repo,
		checker:  checker,
		notifier: n,
	}
}

const dateLayout = "2006-01-02"

// SnapshotFromShifts 把班次列表转成反规范化的快照，员工姓名从 users 中取
func SnapshotFromShifts(shifts []*domain.RosterShift, users map[int64]*domain.User) []domain.ShiftSnapshotItem {
	items := make([]domain.ShiftSnapshotItem, 0, len(shifts))
	for _, shift := range shifts {
		item := domain.ShiftSnapshotItem{
			ShiftID:      shift.ID,
			StaffID:      shift.StaffID,
			Date:         shift.Date.Format(dateLayout),
			StartTime:    shift.StartTime,
			EndTime:      shift.EndTime,
			BreakMinutes: shift.BreakMinutes,
			Position:     shift.Position,
			Notes:        shift.Notes,
		}
		if shift.StaffID != nil {
			if user, ok := users[*shift.StaffID]; ok {
				item.StaffName = user.FullName
			}
		}
		items = append(items, item)
	}
	return items
}

func staffIDsOf(shifts []*domain.RosterShift) []int64 {
	seen := map[int64]bool{}
	ids := []int64{}
	for _, shift := range shifts {
		if shift.StaffID != nil && !seen[*shift.StaffID] {
			seen[*shift.StaffID] = true
			ids = append(ids, *shift.StaffID)
		}
	}
	return ids
}

// infoChanges 计算名称和描述的变更记录，只包含实际变化的字段
func infoChanges(roster *domain.Roster, name, description *string) map[string]any {
	changes := map[string]any{}
	if name != nil && *name != roster.Name {
		changes["name"] = map[string]any{"before": roster.Name, "after": *name}
	}
	if description != nil && *description != roster.Description {
		changes["description"] = map[string]any{"before": roster.Description, "after": *description}
	}
	return changes
}

// UpdateInfo 更新排班表的名称和描述并记录变更历史。没有实际变化时不产生写入
func (s *Service) UpdateInfo(roster *domain.Roster, name, description *string, user *domain.User) error {
	changes := infoChanges(roster, name, description)
	if len(changes) == 0 {
		return nil
	}

	if name != nil {
		roster.Name = *name
	}
	if description != nil {
		roster.Description = *description
	}

	entry := &domain.RosterHistory{
		Action:      domain.ActionInfoUpdated,
		Changes:     changes,
		PerformedBy: user.ID,
	}
	return s.repo.UpdateRosterInfo(roster, entry)
}

// snapshotOf 加载某个排班表当前的完整快照
func (s *Service) snapshotOf(rosterID int64) ([]domain.ShiftSnapshotItem, error) {
	shifts, err := s.repo.GetShiftsByRosterID(rosterID)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.GetUsersByIDs(staffIDsOf(shifts))
	if err != nil {
		return nil, err
	}
	return SnapshotFromShifts(shifts, users), nil
}

// shiftFromSnapshotItem 从快照记录还原出一条可以重新插入的班次（不带行 ID）
func shiftFromSnapshotItem(item domain.ShiftSnapshotItem) (*domain.RosterShift, error) {
	date, err := time.Parse(dateLayout, item.Date)
	if err != nil {
		return nil, err
	}
	return &domain.RosterShift{
		StaffID:      item.StaffID,
		Date:         date,
		StartTime:    item.StartTime,
		EndTime:      item.EndTime,
		BreakMinutes: item.BreakMinutes,
		Position:     item.Position,
		Notes:        item.Notes,
		OriginalName: item.StaffName,
	}, nil
}
