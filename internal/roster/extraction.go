package roster

import (
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
)

// CreateDraftFromExtraction 把提取会话落库成草稿排班表。
// 同一个场馆同一周的链 ID 是确定的：链上已经有启用版本时，
// 新草稿作为该链的下一个版本创建，而不是产生一条孤立的平行链
func (s *Service) CreateDraftFromExtraction(session *domain.ExtractionSession, name, description string, user *domain.User) (*domain.Roster, error) {
	weekStart, err := time.Parse(dateLayout, session.WeekStart)
	if err != nil {
		return nil, err
	}
	weekStart = NormalizeWeekStart(weekStart)
	chainID := DeriveChainID(session.VenueID, weekStart)

	shifts := make([]*domain.RosterShift, 0, len(session.Candidates))
	for _, c := range session.Candidates {
		shift, err := shiftFromCandidate(0, c)
		if err != nil {
			return nil, err
		}
		s.applyVerdict(shift, false)
		shifts = append(shifts, shift)
	}

	unmatched := make([]*domain.UnmatchedStaff, 0, len(session.UnmatchedNames))
	for _, staffName := range session.UnmatchedNames {
		unmatched = append(unmatched, &domain.UnmatchedStaff{OriginalName: staffName})
	}

	newRoster := NewChainDraft(session.VenueID, weekStart, name, description, user.ID)

	entry := &domain.RosterHistory{
		Action: domain.ActionCreated,
		Changes: map[string]any{
			"source":         "extraction",
			"sessionID":      session.ID,
			"shiftCount":     len(shifts),
			"unmatchedCount": len(unmatched),
		},
		PerformedBy: user.ID,
	}

	// 找当前的启用版本作为父版本
	active, err := s.activeChainMember(chainID)
	if err != nil {
		return nil, err
	}

	if active != nil {
		newRoster.ParentID = &active.ID
		if err := s.repo.CreateRosterVersion(&repository.NewVersionParams{
			Source:    active,
			ChainID:   chainID,
			NewRoster: newRoster,
			Shifts:    shifts,
			Unmatched: unmatched,
			Entry:     entry,
		}); err != nil {
			return nil, err
		}
		return newRoster, nil
	}

	// 这一周还没有启用版本，直接在链上追加草稿。
	// 链上可能已经有被退回或归档的成员，版本号由仓储在事务内计算
	if err := s.repo.CreateChainDraft(&repository.ChainDraftParams{
		Roster:    newRoster,
		Shifts:    shifts,
		Unmatched: unmatched,
		Entry:     entry,
	}); err != nil {
		return nil, err
	}

	return newRoster, nil
}

// activeChainMember 返回链上当前的启用版本，链不存在或没有启用版本时返回 nil
func (s *Service) activeChainMember(chainID string) (*domain.Roster, error) {
	summary, err := s.repo.GetChainSummary(chainID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if summary.ActiveRosterID == nil {
		return nil, nil
	}
	return s.repo.GetRosterByID(*summary.ActiveRosterID)
}
