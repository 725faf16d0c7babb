package roster

import (
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
)

// applyVerdict 重新计算并缓存一个班次的冲突检测结果。
// 缓存的 hasConflict/conflictType 只是检测结果的投影，员工、日期或时间段变化后必须重算；
// 清空员工时无条件清掉冲突标记
func (s *Service) applyVerdict(shift *domain.RosterShift, excludeSelf bool) {
	if shift.StaffID == nil {
		shift.HasConflict = false
		shift.ConflictType = nil
		return
	}

	var exclude *int64
	if excludeSelf {
		exclude = &shift.ID
	}
	verdict := s.checker.Check(*shift.StaffID, shift.Date, shift.StartTime, shift.EndTime, exclude)
	shift.HasConflict = verdict.HasConflict
	shift.ConflictType = verdict.Type
}

func shiftFields(shift *domain.RosterShift) map[string]any {
	return map[string]any{
		"staffID":      shift.StaffID,
		"date":         shift.Date.Format(dateLayout),
		"startTime":    shift.StartTime,
		"endTime":      shift.EndTime,
		"breakMinutes": shift.BreakMinutes,
		"position":     shift.Position,
		"notes":        shift.Notes,
	}
}

func (s *Service) guardEditable(roster *domain.Roster) error {
	if roster.Status != domain.RosterStatusDraft {
		return ErrRosterNotEditable
	}
	return nil
}

// AddShift 在草稿中新增一个班次，安排了员工时先做冲突检测并缓存结果
func (s *Service) AddShift(roster *domain.Roster, shift *domain.RosterShift, user *domain.User) error {
	if err := s.guardEditable(roster); err != nil {
		return err
	}

	shift.RosterID = roster.ID
	s.applyVerdict(shift, false)

	entry := &domain.RosterHistory{
		RosterID:    roster.ID,
		Action:      domain.ActionShiftAdded,
		Changes:     map[string]any{"after": shiftFields(shift)},
		PerformedBy: user.ID,
	}
	return s.repo.CreateShift(shift, entry)
}

// UpdateShift 更新班次。before 是修改前的班次，shift 是已经套用了新字段值的班次
func (s *Service) UpdateShift(roster *domain.Roster, before *domain.RosterShift, shift *domain.RosterShift, user *domain.User) error {
	if err := s.guardEditable(roster); err != nil {
		return err
	}

	s.applyVerdict(shift, true)

	entry := &domain.RosterHistory{
		RosterID: roster.ID,
		Action:   domain.ActionShiftUpdated,
		Changes: map[string]any{
			"before": shiftFields(before),
			"after":  shiftFields(shift),
		},
		PerformedBy: user.ID,
	}
	return s.repo.UpdateShift(shift, entry)
}

func (s *Service) DeleteShift(roster *domain.Roster, shift *domain.RosterShift, user *domain.User) error {
	if err := s.guardEditable(roster); err != nil {
		return err
	}

	entry := &domain.RosterHistory{
		RosterID:    roster.ID,
		Action:      domain.ActionShiftDeleted,
		Changes:     map[string]any{"before": shiftFields(shift)},
		PerformedBy: user.ID,
	}
	return s.repo.DeleteShift(shift.ID, entry)
}

// BulkAddShifts 批量新增班次，每个班次都先做冲突检测，插入在一个事务中完成。返回创建数量
func (s *Service) BulkAddShifts(roster *domain.Roster, shifts []*domain.RosterShift, user *domain.User) (int, error) {
	if err := s.guardEditable(roster); err != nil {
		return 0, err
	}

	for _, shift := range shifts {
		shift.RosterID = roster.ID
		s.applyVerdict(shift, false)
	}

	entry := &domain.RosterHistory{
		RosterID:    roster.ID,
		Action:      domain.ActionShiftsBulkAdded,
		Changes:     map[string]any{"count": len(shifts)},
		PerformedBy: user.ID,
	}
	if err := s.repo.BulkCreateShifts(shifts, entry); err != nil {
		return 0, err
	}

	return len(shifts), nil
}

// ConflictedShift 全量重查后仍然有冲突的班次，带上员工姓名和可读的冲突说明
type ConflictedShift struct {
	ShiftID   int64  `json:"shiftID"`
	StaffID   int64  `json:"staffID"`
	StaffName string `json:"staffName"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Details   string `json:"details"`
}

type RecheckResult struct {
	Total         int                `json:"total"`
	ConflictCount int                `json:"conflictCount"`
	Conflicts     []*ConflictedShift `json:"conflicts"`
}

// Recheck 重新检测排班表上所有已安排员工的班次并持久化检测结果。
// 检测结果会改写班次行，所以和其他班次操作一样只允许在草稿上执行。
// 每个班次在重复排班扫描中排除自己
func (s *Service) Recheck(roster *domain.Roster, user *domain.User) (*RecheckResult, error) {
	if err := s.guardEditable(roster); err != nil {
		return nil, err
	}

	shifts, err := s.repo.GetShiftsByRosterID(roster.ID)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.GetUsersByIDs(staffIDsOf(shifts))
	if err != nil {
		return nil, err
	}

	result := &RecheckResult{Conflicts: []*ConflictedShift{}}
	verdicts := []repository.ShiftVerdict{}
	for _, shift := range shifts {
		if shift.StaffID == nil {
			continue
		}
		result.Total++

		verdict := s.checker.Check(*shift.StaffID, shift.Date, shift.StartTime, shift.EndTime, &shift.ID)
		verdicts = append(verdicts, repository.ShiftVerdict{
			ShiftID:      shift.ID,
			HasConflict:  verdict.HasConflict,
			ConflictType: verdict.Type,
		})

		if verdict.HasConflict {
			result.ConflictCount++
			staffName := ""
			if user, ok := users[*shift.StaffID]; ok {
				staffName = user.FullName
			}
			result.Conflicts = append(result.Conflicts, &ConflictedShift{
				ShiftID:   shift.ID,
				StaffID:   *shift.StaffID,
				StaffName: staffName,
				Date:      shift.Date.Format(dateLayout),
				StartTime: shift.StartTime,
				EndTime:   shift.EndTime,
				Details:   verdict.Details,
			})
		}
	}

	entry := &domain.RosterHistory{
		RosterID:    roster.ID,
		Action:      domain.ActionConflictsRechecked,
		Changes:     map[string]any{"total": result.Total, "conflictCount": result.ConflictCount},
		PerformedBy: user.ID,
	}
	if err := s.repo.SaveShiftVerdicts(verdicts, entry); err != nil {
		return nil, err
	}

	return result, nil
}
