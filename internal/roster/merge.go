package roster

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/diff"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
)

func snapshotFromCandidates(candidates []domain.CandidateShift) []domain.ShiftSnapshotItem {
	items := make([]domain.ShiftSnapshotItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, domain.ShiftSnapshotItem{
			StaffID:   c.StaffID,
			StaffName: c.StaffName,
			Date:      c.Date,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Position:  c.Position,
			Notes:     c.Notes,
		})
	}
	return items
}

// PreviewMerge 把提取出来的候选班次套在现有草稿上做合并预览，不产生任何写入
func (s *Service) PreviewMerge(roster *domain.Roster, candidates []domain.CandidateShift) (*diff.MergePreview, error) {
	existing, err := s.snapshotOf(roster.ID)
	if err != nil {
		return nil, err
	}
	return diff.PreviewMerge(existing, snapshotFromCandidates(candidates)), nil
}

// MergeUpdate 选中的一条更新：用候选班次的内容覆盖现有班次
type MergeUpdate struct {
	ShiftID  int64                 `json:"shiftID"`
	Incoming domain.CandidateShift `json:"incoming"`
}

// MergeSelection 调用方从合并预览中挑出来要实际应用的子集，
// 三类操作都可以只选一部分，比如只加不删
type MergeSelection struct {
	Add       []domain.CandidateShift `json:"add"`
	RemoveIDs []int64                 `json:"removeIDs"`
	Updates   []MergeUpdate           `json:"updates"`
}

type MergeResult struct {
	Added         int `json:"added"`
	Removed       int `json:"removed"`
	Updated       int `json:"updated"`
	NotifiedCount int `json:"notifiedCount"`
}

// ApplyMerge 在一个事务中应用选中的合并子集并推进 revision。
// MERGE_STARTED 记录携带合并前的完整快照，使合并本身可以回滚；
// 新增班次涉及的员工会收到通知
func (s *Service) ApplyMerge(roster *domain.Roster, selection *MergeSelection, user *domain.User) (*MergeResult, error) {
	if err := s.guardEditable(roster); err != nil {
		return nil, err
	}

	preSnapshot, err := s.snapshotOf(roster.ID)
	if err != nil {
		return nil, err
	}

	adds := make([]*domain.RosterShift, 0, len(selection.Add))
	for _, c := range selection.Add {
		shift, err := shiftFromCandidate(roster.ID, c)
		if err != nil {
			return nil, err
		}
		s.applyVerdict(shift, false)
		adds = append(adds, shift)
	}

	existingByID := map[int64]*domain.RosterShift{}
	if len(selection.Updates) > 0 {
		shifts, err := s.repo.GetShiftsByRosterID(roster.ID)
		if err != nil {
			return nil, err
		}
		for _, shift := range shifts {
			existingByID[shift.ID] = shift
		}
	}

	updates := make([]*domain.RosterShift, 0, len(selection.Updates))
	for _, u := range selection.Updates {
		existing, ok := existingByID[u.ShiftID]
		if !ok {
			return nil, fmt.Errorf("要更新的班次 %d 不存在", u.ShiftID)
		}
		updated := *existing
		updated.StaffID = u.Incoming.StaffID
		updated.EndTime = u.Incoming.EndTime
		updated.Notes = u.Incoming.Notes
		s.applyVerdict(&updated, true)
		updates = append(updates, &updated)
	}

	startEntry := &domain.RosterHistory{
		RosterID:       roster.ID,
		Action:         domain.ActionMergeStarted,
		Changes:        map[string]any{"source": "extraction"},
		ShiftsSnapshot: preSnapshot,
		PerformedBy:    user.ID,
	}
	completeEntry := &domain.RosterHistory{
		RosterID: roster.ID,
		Action:   domain.ActionMergeCompleted,
		Changes: map[string]any{
			"added":   len(adds),
			"removed": len(selection.RemoveIDs),
			"updated": len(updates),
		},
		PerformedBy: user.ID,
	}

	if err := s.repo.ApplyMerge(&repository.MergeApplyParams{
		RosterID:      roster.ID,
		Add:           adds,
		RemoveIDs:     selection.RemoveIDs,
		Update:        updates,
		StartEntry:    startEntry,
		CompleteEntry: completeEntry,
	}); err != nil {
		return nil, err
	}

	recipients := map[int64]string{}
	for _, shift := range adds {
		if shift.StaffID == nil {
			continue
		}
		recipients[*shift.StaffID] = fmt.Sprintf("排班表「%s」为您新增了班次，请查看最新排班", roster.Name)
	}
	notified := s.deliver(roster, domain.NotificationShiftsMerged, recipients)

	return &MergeResult{
		Added:         len(adds),
		Removed:       len(selection.RemoveIDs),
		Updated:       len(updates),
		NotifiedCount: notified,
	}, nil
}

func shiftFromCandidate(rosterID int64, c domain.CandidateShift) (*domain.RosterShift, error) {
	date, err := time.Parse(dateLayout, c.Date)
	if err != nil {
		return nil, fmt.Errorf("候选班次的日期格式错误: %w", err)
	}
	return &domain.RosterShift{
		RosterID:     rosterID,
		StaffID:      c.StaffID,
		Date:         date,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Position:     c.Position,
		Notes:        c.Notes,
		OriginalName: c.StaffName,
	}, nil
}
