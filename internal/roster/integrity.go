package roster

import (
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// ChainFinding 一条链的体检结果
type ChainFinding struct {
	ChainID         string `json:"chainID"`
	VenueID         int64  `json:"venueID"`
	MemberCount     int32  `json:"memberCount"`
	PublishedCount  int32  `json:"publishedCount"`
	ActiveCount     int32  `json:"activeCount"`
	ExpectedActive  int32  `json:"expectedActive"`
	Problem         string `json:"problem"`
	CorrectActiveID *int64 `json:"correctActiveID"`
	CorrectVersion  *int32 `json:"correctVersion"`
	Repaired        bool   `json:"repaired"`
}

type IntegrityReport struct {
	ChainsScanned  int             `json:"chainsScanned"`
	ChainsFlagged  int             `json:"chainsFlagged"`
	ChainsRepaired int             `json:"chainsRepaired"`
	Findings       []*ChainFinding `json:"findings"`
}

// CorrectActiveMember 返回一条链上应当处于启用状态的成员：
// 已发布成员中版本号最大的那个，没有已发布成员时返回 nil
func CorrectActiveMember(members []*domain.Roster) *domain.Roster {
	var correct *domain.Roster
	for _, member := range members {
		if member.Status != domain.RosterStatusPublished {
			continue
		}
		if correct == nil || member.VersionNumber > correct.VersionNumber {
			correct = member
		}
	}
	return correct
}

// Diagnose 扫描所有版本链，找出启用标记不满足不变量的链：
// 有已发布成员的链必须恰好有一个启用版本，没有已发布成员的链不能有启用版本
func (s *Service) Diagnose() (*IntegrityReport, error) {
	states, err := s.repo.GetChainStates()
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{Findings: []*ChainFinding{}}
	report.ChainsScanned = len(states)

	for _, state := range states {
		var expected int32
		if state.PublishedCount > 0 {
			expected = 1
		}
		if state.ActiveCount == expected {
			continue
		}

		finding := &ChainFinding{
			ChainID:        state.ChainID,
			VenueID:        state.VenueID,
			MemberCount:    state.MemberCount,
			PublishedCount: state.PublishedCount,
			ActiveCount:    state.ActiveCount,
			ExpectedActive: expected,
		}
		switch {
		case state.ActiveCount == 0:
			finding.Problem = "链上有已发布版本但没有任何启用版本"
		case expected == 0:
			finding.Problem = "链上没有已发布版本但存在启用版本"
		default:
			finding.Problem = fmt.Sprintf("链上同时存在 %d 个启用版本", state.ActiveCount)
		}

		members, err := s.repo.GetChainRosters(state.ChainID)
		if err != nil {
			return nil, err
		}
		if correct := CorrectActiveMember(members); correct != nil {
			finding.CorrectActiveID = &correct.ID
			finding.CorrectVersion = &correct.VersionNumber
		}

		report.Findings = append(report.Findings, finding)
	}

	report.ChainsFlagged = len(report.Findings)
	return report, nil
}

// Repair 对每条被标记的链执行确定性的修复：先清空所有启用标记，
// 再把已发布成员中版本号最大的那个重新标记为启用。对已经一致的链重复执行没有效果
func (s *Service) Repair(user *domain.User) (*IntegrityReport, error) {
	report, err := s.Diagnose()
	if err != nil {
		return nil, err
	}

	for _, finding := range report.Findings {
		if err := s.repo.RepairChain(finding.ChainID, finding.CorrectActiveID); err != nil {
			return nil, err
		}
		finding.Repaired = true
		report.ChainsRepaired++

		if finding.CorrectActiveID != nil {
			entry := &domain.RosterHistory{
				RosterID:    *finding.CorrectActiveID,
				Action:      domain.ActionChainRepaired,
				Changes:     map[string]any{"problem": finding.Problem},
				PerformedBy: user.ID,
			}
			// 修复日志是诊断性的，不推进 revision，写入失败也不影响修复结果
			if err := s.repo.RecordEvent(entry); err != nil {
				slog.Error("链修复日志写入失败", "chainID", finding.ChainID, "error", err)
			}
		}
	}

	return report, nil
}
