package roster

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/diff"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// TransitionResult 状态转换的结果。冲突只是警告，不会阻止转换成功
type TransitionResult struct {
	Roster        *domain.Roster `json:"roster"`
	HasConflicts  bool           `json:"hasConflicts"`
	ConflictCount int            `json:"conflictCount"`
	NotifiedCount int            `json:"notifiedCount"`
}

// Finalize 把草稿定稿为 APPROVED。这是经理的自查确认，不是第三方审批。
// 空排班表不能定稿；有冲突的班次不阻止定稿，但会在结果中报告出来
func (s *Service) Finalize(roster *domain.Roster, user *domain.User) (*TransitionResult, error) {
	if roster.Status != domain.RosterStatusDraft {
		return nil, &IllegalTransitionError{Current: roster.Status, Required: domain.RosterStatusDraft}
	}

	shifts, err := s.repo.GetShiftsByRosterID(roster.ID)
	if err != nil {
		return nil, err
	}

	assigned := 0
	conflictCount := 0
	for _, shift := range shifts {
		if shift.StaffID == nil {
			continue
		}
		assigned++
		if shift.HasConflict {
			conflictCount++
		}
	}
	if assigned == 0 {
		return nil, ErrEmptyRoster
	}

	users, err := s.repo.GetUsersByIDs(staffIDsOf(shifts))
	if err != nil {
		return nil, err
	}

	entry := &domain.RosterHistory{
		RosterID: roster.ID,
		Action:   domain.ActionFinalized,
		Changes: map[string]any{
			"previousStatus": domain.RosterStatusDraft,
			"newStatus":      domain.RosterStatusApproved,
			"conflictCount":  conflictCount,
		},
		ShiftsSnapshot: SnapshotFromShifts(shifts, users),
		PerformedBy:    user.ID,
	}

	if err := s.repo.FinalizeRoster(roster, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 状态检查和写入在同一条语句中，查不到行说明别人抢先改了状态
			return nil, &IllegalTransitionError{Current: roster.Status, Required: domain.RosterStatusDraft}
		}
		return nil, err
	}

	return &TransitionResult{
		Roster:        roster,
		HasConflicts:  conflictCount > 0,
		ConflictCount: conflictCount,
	}, nil
}

// Publish 发布一个已定稿的版本。发布即激活：同链的其他启用版本被取代，
// 直接父版本被归档，受影响的员工会收到差异通知
func (s *Service) Publish(roster *domain.Roster, user *domain.User) (*TransitionResult, error) {
	if roster.Status != domain.RosterStatusApproved {
		return nil, &IllegalTransitionError{Current: roster.Status, Required: domain.RosterStatusApproved}
	}

	snapshot, err := s.snapshotOf(roster.ID)
	if err != nil {
		return nil, err
	}

	// 发布前找到上一个启用版本的快照，用来计算通知需要的差异
	previousSnapshot := []domain.ShiftSnapshotItem{}
	if roster.ChainID != nil {
		members, err := s.repo.GetChainRosters(*roster.ChainID)
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			if member.IsActive && member.ID != roster.ID {
				if previousSnapshot, err = s.snapshotOf(member.ID); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	action := domain.ActionPublished
	if roster.ParentID != nil {
		action = domain.ActionPublishedNewVersion
	}
	entry := &domain.RosterHistory{
		RosterID: roster.ID,
		Action:   action,
		Changes: map[string]any{
			"previousStatus": domain.RosterStatusApproved,
			"newStatus":      domain.RosterStatusPublished,
			"versionNumber":  roster.VersionNumber,
		},
		ShiftsSnapshot: snapshot,
		PerformedBy:    user.ID,
	}

	roster.PublishedBy = &user.ID
	if _, err := s.repo.PublishRoster(roster, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &IllegalTransitionError{Current: roster.Status, Required: domain.RosterStatusApproved}
		}
		return nil, err
	}

	notified := s.notifyPublished(roster, previousSnapshot, snapshot)

	return &TransitionResult{
		Roster:        roster,
		NotifiedCount: notified,
	}, nil
}

// notifyPublished 根据和上一个启用版本的差异给员工发通知：
// 有变化的员工收到变化摘要，班次没变的员工收到一条通用的重新发布通知，
// 每个被排班的员工每次发布恰好收到一条通知
func (s *Service) notifyPublished(roster *domain.Roster, previous, current []domain.ShiftSnapshotItem) int {
	result := diff.Compare(previous, current)

	shiftCounts := map[int64]int{}
	for _, item := range current {
		if item.StaffID != nil {
			shiftCounts[*item.StaffID]++
		}
	}

	recipients := map[int64]string{}
	for _, userID := range result.Summary.AffectedUsers {
		changes := result.ChangesForUser(userID)
		if len(changes) == 0 {
			continue
		}
		message := fmt.Sprintf("排班表「%s」已发布，您的排班有 %d 处变化：", roster.Name, len(changes))
		for _, c := range changes {
			message += "\n- " + c
		}
		recipients[userID] = message
	}
	for userID, count := range shiftCounts {
		if _, ok := recipients[userID]; !ok {
			recipients[userID] = fmt.Sprintf("排班表「%s」已重新发布，您的 %d 个班次没有变化", roster.Name, count)
		}
	}

	return s.deliver(roster, domain.NotificationRosterPublished, recipients)
}

// deliver 查询收件人邮箱并并发投递通知，返回实际投递的数量。
// 任何失败都只记录日志，不影响已经提交的状态变更
func (s *Service) deliver(roster *domain.Roster, notificationType string, recipients map[int64]string) int {
	if len(recipients) == 0 {
		return 0
	}

	userIDs := make([]int64, 0, len(recipients))
	for id := range recipients {
		userIDs = append(userIDs, id)
	}
	users, err := s.repo.GetUsersByIDs(userIDs)
	if err != nil {
		// 通知是尽力而为的，查不到收件人时放弃本轮通知
		slog.Error("查询通知收件人失败，本轮通知跳过", "rosterID", roster.ID, "error", err)
		return 0
	}

	msgs := buildNotifications(roster, notificationType, recipients, users)
	s.notifier.NotifyAll(msgs)
	return len(msgs)
}

// buildNotifications 组装通知消息体，跳过查不到邮箱的收件人
func buildNotifications(roster *domain.Roster, notificationType string, recipients map[int64]string, users map[int64]*domain.User) []*domain.NotificationMessage {
	link := fmt.Sprintf("/rosters/%d", roster.ID)
	msgs := []*domain.NotificationMessage{}
	for userID, message := range recipients {
		user, ok := users[userID]
		if !ok {
			continue
		}
		msgs = append(msgs, &domain.NotificationMessage{
			Type:    notificationType,
			UserID:  userID,
			To:      user.Email,
			Title:   fmt.Sprintf("排班通知：%s", roster.Name),
			Message: message,
			Link:    link,
		})
	}
	return msgs
}

// RevertToDraft 把 APPROVED 或 PUBLISHED 的排班表退回草稿。归档是终态，不允许退回。
// 退回不会自动重新激活之前被取代的版本，那需要显式地发布另一个版本
func (s *Service) RevertToDraft(roster *domain.Roster, user *domain.User, reason string) (*TransitionResult, error) {
	switch roster.Status {
	case domain.RosterStatusArchived:
		return nil, ErrArchivedTerminal
	case domain.RosterStatusDraft:
		return nil, &IllegalTransitionError{Current: roster.Status, Required: domain.RosterStatusApproved}
	}

	action := domain.ActionRevertedToDraft
	if roster.Status == domain.RosterStatusPublished {
		action = domain.ActionUnpublished
	}

	snapshot, err := s.snapshotOf(roster.ID)
	if err != nil {
		return nil, err
	}

	expected := roster.Status
	entry := &domain.RosterHistory{
		RosterID: roster.ID,
		Action:   action,
		Changes: map[string]any{
			"previousStatus": expected,
			"newStatus":      domain.RosterStatusDraft,
			"reason":         reason,
		},
		ShiftsSnapshot: snapshot,
		PerformedBy:    user.ID,
	}

	if err := s.repo.RevertRosterToDraft(roster, expected, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &IllegalTransitionError{Current: roster.Status, Required: expected}
		}
		return nil, err
	}

	return &TransitionResult{Roster: roster}, nil
}
