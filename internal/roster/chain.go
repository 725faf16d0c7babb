package roster

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/diff"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
)

// 链 ID 的命名空间。链 ID 是 (场馆, 周一日期) 的确定性函数，
// 同一个场馆同一周重复上传文件时会解析到同一条链，而不是产生孤立的副本
var chainNamespace = uuid.MustParse("8f8c7c52-9b1d-4c6e-a3c2-5f0e6d4b7a19")

// DeriveChainID 由场馆和规范化后的周一日期派生链 ID，相同输入永远得到相同结果
func DeriveChainID(venueID int64, weekStart time.Time) string {
	name := fmt.Sprintf("%d|%s", venueID, NormalizeWeekStart(weekStart).Format(dateLayout))
	return uuid.NewSHA1(chainNamespace, []byte(name)).String()
}

// NormalizeWeekStart 把任意日期规范化成所在 ISO 周的周一
func NormalizeWeekStart(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, 1-weekday)
}

// NewChainDraft 构造链上新草稿的公共字段。版本号和状态不在这里决定，
// 由仓储在链的事务内取最大版本号加一，同一周重复创建不会得到重复的版本号
func NewChainDraft(venueID int64, weekStart time.Time, name, description string, createdBy int64) *domain.Roster {
	weekStart = NormalizeWeekStart(weekStart)
	chainID := DeriveChainID(venueID, weekStart)
	return &domain.Roster{
		VenueID:     venueID,
		Name:        name,
		Description: description,
		StartDate:   weekStart,
		EndDate:     weekStart.AddDate(0, 0, 6),
		ChainID:     &chainID,
		CreatedBy:   createdBy,
	}
}

// copyShifts 为深拷贝准备班次副本，行 ID 由插入时重新生成
func copyShifts(shifts []*domain.RosterShift) []*domain.RosterShift {
	copies := make([]*domain.RosterShift, 0, len(shifts))
	for _, shift := range shifts {
		c := *shift
		c.ID = 0
		copies = append(copies, &c)
	}
	return copies
}

// CreateNewVersion 从一个已发布的版本派生新草稿。新版本号取链上现有的最大版本号加一，
// 班次和未匹配姓名被深拷贝。源版本早于链跟踪功能时会先补录链信息
func (s *Service) CreateNewVersion(source *domain.Roster, user *domain.User) (*domain.Roster, error) {
	if source.Status != domain.RosterStatusPublished {
		return nil, &IllegalTransitionError{Current: source.Status, Required: domain.RosterStatusPublished}
	}

	chainID := DeriveChainID(source.VenueID, source.StartDate)
	if source.ChainID != nil {
		chainID = *source.ChainID
	}

	shifts, err := s.repo.GetShiftsByRosterID(source.ID)
	if err != nil {
		return nil, err
	}
	unmatched, err := s.repo.GetUnmatchedStaff(source.ID)
	if err != nil {
		return nil, err
	}
	for _, entry := range unmatched {
		entry.ID = 0
	}

	newRoster := &domain.Roster{
		VenueID:     source.VenueID,
		Name:        source.Name,
		Description: source.Description,
		StartDate:   source.StartDate,
		EndDate:     source.EndDate,
		ParentID:    &source.ID,
		CreatedBy:   user.ID,
	}

	entry := &domain.RosterHistory{
		Action: domain.ActionVersionCreated,
		Changes: map[string]any{
			"sourceRosterID": source.ID,
			"sourceVersion":  source.VersionNumber,
		},
		PerformedBy: user.ID,
	}

	if err := s.repo.CreateRosterVersion(&repository.NewVersionParams{
		Source:    source,
		ChainID:   chainID,
		NewRoster: newRoster,
		Shifts:    copyShifts(shifts),
		Unmatched: unmatched,
		Entry:     entry,
	}); err != nil {
		return nil, err
	}

	return newRoster, nil
}

// RestoreVersion 把一个被取代的链成员恢复成新的草稿版本。
// 链上已经存在在途草稿时，那个草稿连同它的班次、历史和未匹配姓名会先被删除，
// 恢复是替换待发布的草稿而不是在它之上叠加。整个操作在一个事务中完成
func (s *Service) RestoreVersion(member *domain.Roster, user *domain.User) (*domain.Roster, error) {
	if member.ChainID == nil {
		return nil, ErrNotInChain
	}
	if member.IsActive {
		return nil, ErrVersionIsActive
	}
	if member.Status == domain.RosterStatusDraft {
		return nil, &IllegalTransitionError{Current: member.Status, Required: domain.RosterStatusPublished}
	}

	members, err := s.repo.GetChainRosters(*member.ChainID)
	if err != nil {
		return nil, err
	}
	var deleteID *int64
	for _, m := range members {
		if m.Status == domain.RosterStatusDraft {
			deleteID = &m.ID
			break
		}
	}

	shifts, err := s.repo.GetShiftsByRosterID(member.ID)
	if err != nil {
		return nil, err
	}
	unmatched, err := s.repo.GetUnmatchedStaff(member.ID)
	if err != nil {
		return nil, err
	}
	for _, entry := range unmatched {
		entry.ID = 0
	}

	newRoster := &domain.Roster{
		VenueID:     member.VenueID,
		Name:        member.Name,
		Description: member.Description,
		StartDate:   member.StartDate,
		EndDate:     member.EndDate,
		ParentID:    &member.ID,
		CreatedBy:   user.ID,
	}

	changes := map[string]any{
		"restoredFromRosterID": member.ID,
		"restoredFromVersion":  member.VersionNumber,
	}
	if deleteID != nil {
		changes["replacedDraftID"] = *deleteID
	}
	entry := &domain.RosterHistory{
		Action:      domain.ActionVersionRestored,
		Changes:     changes,
		PerformedBy: user.ID,
	}

	if err := s.repo.CreateRosterVersion(&repository.NewVersionParams{
		Source:         member,
		ChainID:        *member.ChainID,
		DeleteRosterID: deleteID,
		NewRoster:      newRoster,
		Shifts:         copyShifts(shifts),
		Unmatched:      unmatched,
		Entry:          entry,
	}); err != nil {
		return nil, err
	}

	return newRoster, nil
}

// RollbackToVersion 用一条携带快照的历史记录创建新草稿，和恢复旧版本一样会替换在途草稿
func (s *Service) RollbackToVersion(roster *domain.Roster, historyID int64, user *domain.User) (*domain.Roster, error) {
	entry, err := s.repo.GetHistoryEntryByID(historyID)
	if err != nil {
		return nil, err
	}
	if entry.RosterID != roster.ID || entry.ShiftsSnapshot == nil {
		return nil, ErrNoSnapshot
	}
	if roster.ChainID == nil {
		return nil, ErrNotInChain
	}

	members, err := s.repo.GetChainRosters(*roster.ChainID)
	if err != nil {
		return nil, err
	}
	var deleteID *int64
	for _, m := range members {
		if m.Status == domain.RosterStatusDraft {
			deleteID = &m.ID
			break
		}
	}

	shifts := make([]*domain.RosterShift, 0, len(entry.ShiftsSnapshot))
	for _, item := range entry.ShiftsSnapshot {
		shift, err := shiftFromSnapshotItem(item)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	newRoster := &domain.Roster{
		VenueID:     roster.VenueID,
		Name:        roster.Name,
		Description: roster.Description,
		StartDate:   roster.StartDate,
		EndDate:     roster.EndDate,
		ParentID:    &roster.ID,
		CreatedBy:   user.ID,
	}

	historyEntry := &domain.RosterHistory{
		Action: domain.ActionRolledBack,
		Changes: map[string]any{
			"rollbackHistoryID": historyID,
			"rollbackVersion":   entry.Version,
		},
		PerformedBy: user.ID,
	}

	if err := s.repo.CreateRosterVersion(&repository.NewVersionParams{
		Source:         roster,
		ChainID:        *roster.ChainID,
		DeleteRosterID: deleteID,
		NewRoster:      newRoster,
		Shifts:         shifts,
		Entry:          historyEntry,
	}); err != nil {
		return nil, err
	}

	return newRoster, nil
}

// CompareVersions 计算两个版本当前班次集合的差异
func (s *Service) CompareVersions(before, after *domain.Roster) (*diff.Result, error) {
	beforeSnapshot, err := s.snapshotOf(before.ID)
	if err != nil {
		return nil, err
	}
	afterSnapshot, err := s.snapshotOf(after.ID)
	if err != nil {
		return nil, err
	}
	return diff.Compare(beforeSnapshot, afterSnapshot), nil
}
