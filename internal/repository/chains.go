package repository

import (
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// GetChainRosters 获取一条版本链的所有成员，按版本号升序
func (r *Repository) GetChainRosters(chainID string) ([]*domain.Roster, error) {
	query := `SELECT ` + rosterColumns + ` FROM rosters WHERE chain_id = $1 ORDER BY version_number`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, chainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters := []*domain.Roster{}
	for rows.Next() {
		roster, err := scanRoster(rows)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, roster)
	}

	return rosters, rows.Err()
}

func (r *Repository) GetChainSummary(chainID string) (*domain.ChainSummary, error) {
	query := `
		SELECT
			venue_id,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PUBLISHED'),
			MAX(version_number),
			MAX(version_number) FILTER (WHERE is_active),
			MAX(id) FILTER (WHERE is_active),
			BOOL_OR(status = 'DRAFT')
		FROM rosters
		WHERE chain_id = $1
		GROUP BY venue_id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	summary := &domain.ChainSummary{ChainID: chainID}
	var activeVersion sql.NullInt32
	var activeID sql.NullInt64
	dst := []any{
		&summary.VenueID,
		&summary.VersionCount,
		&summary.PublishedCount,
		&summary.LatestVersionNumber,
		&activeVersion,
		&activeID,
		&summary.HasDraftInFlight,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, chainID).Scan(dst...); err != nil {
		return nil, err
	}

	if activeVersion.Valid {
		summary.ActiveVersionNumber = &activeVersion.Int32
	}
	if activeID.Valid {
		summary.ActiveRosterID = &activeID.Int64
	}

	return summary, nil
}

// ListChainIDsByVenue 列出某个场馆在时间窗口内出现过的所有版本链
func (r *Repository) ListChainIDsByVenue(venueID int64, from, to time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT chain_id
		FROM rosters
		WHERE venue_id = $1 AND chain_id IS NOT NULL AND start_date >= $2 AND start_date <= $3
		ORDER BY chain_id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, venueID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chainIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		chainIDs = append(chainIDs, id)
	}

	return chainIDs, rows.Err()
}

// NewVersionParams 创建新版本的事务参数
type NewVersionParams struct {
	Source         *domain.Roster // 已发布的源版本
	ChainID        string         // 源版本还没有链时由服务层派生出来的链 ID
	DeleteRosterID *int64         // 恢复旧版本时需要先删除的在途草稿
	NewRoster      *domain.Roster // 版本号在事务内计算，不要预先填写
	Shifts         []*domain.RosterShift
	Unmatched      []*domain.UnmatchedStaff
	Entry          *domain.RosterHistory
}

// CreateRosterVersion 从一个已发布的版本派生新草稿。删除在途草稿、补录链信息、
// 计算下一个版本号、深拷贝班次和未匹配姓名、写入历史，全部在一个事务中完成
func (r *Repository) CreateRosterVersion(p *NewVersionParams) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if p.DeleteRosterID != nil {
		query := `DELETE FROM rosters WHERE id = $1 AND status = $2`
		if _, err := tx.ExecContext(ctx, query, *p.DeleteRosterID, domain.RosterStatusDraft); err != nil {
			return err
		}
	}

	// 早于链跟踪功能的排班表没有 chain_id，派生前先补录
	if p.Source.ChainID == nil {
		query := `UPDATE rosters SET chain_id = $1, version_number = 1 WHERE id = $2 AND chain_id IS NULL`
		if _, err := tx.ExecContext(ctx, query, p.ChainID, p.Source.ID); err != nil {
			return err
		}
		p.Source.ChainID = &p.ChainID
		p.Source.VersionNumber = 1
	}

	// 查询整条链的最大版本号而不是只看源版本自身的版本号，避免并发创建时产生重复
	var nextVersion int32
	query := `SELECT COALESCE(MAX(version_number), 0) + 1 FROM rosters WHERE chain_id = $1`
	if err := tx.QueryRowContext(ctx, query, *p.Source.ChainID).Scan(&nextVersion); err != nil {
		return err
	}

	p.NewRoster.ChainID = p.Source.ChainID
	p.NewRoster.VersionNumber = nextVersion
	p.NewRoster.Status = domain.RosterStatusDraft
	p.NewRoster.IsActive = false

	query = `
		INSERT INTO rosters (
			venue_id, name, description, start_date, end_date, status,
			chain_id, version_number, is_active, parent_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, revision
	`

	params := []any{
		p.NewRoster.VenueID,
		p.NewRoster.Name,
		p.NewRoster.Description,
		p.NewRoster.StartDate,
		p.NewRoster.EndDate,
		p.NewRoster.Status,
		p.NewRoster.ChainID,
		p.NewRoster.VersionNumber,
		p.NewRoster.IsActive,
		p.NewRoster.ParentID,
		p.NewRoster.CreatedBy,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&p.NewRoster.ID, &p.NewRoster.CreatedAt, &p.NewRoster.Revision); err != nil {
		return err
	}

	for _, shift := range p.Shifts {
		shift.RosterID = p.NewRoster.ID
		if err := insertShiftTx(ctx, tx, shift); err != nil {
			return err
		}
	}

	for _, entry := range p.Unmatched {
		query := `
			INSERT INTO unmatched_staff (roster_id, original_name, suggested_user_id, confidence)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		params := []any{p.NewRoster.ID, entry.OriginalName, entry.SuggestedUserID, entry.Confidence}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return err
		}
		entry.RosterID = p.NewRoster.ID
	}

	p.Entry.RosterID = p.NewRoster.ID
	if err := appendHistoryTx(ctx, tx, p.Entry, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	p.NewRoster.Revision = p.Entry.Version
	return nil
}

// ChainDraftParams 在链上创建草稿的事务参数
type ChainDraftParams struct {
	Roster    *domain.Roster // chain_id 必填；版本号在事务内计算，不要预先填写
	Shifts    []*domain.RosterShift
	Unmatched []*domain.UnmatchedStaff
	Entry     *domain.RosterHistory
}

// CreateChainDraft 在链上创建一个不从现有版本派生的草稿。
// 链 ID 是 (场馆, 周) 的确定性函数，同一周重复创建会落到同一条链上，
// 版本号取链上现有的最大值加一，链内版本号不会重复。
// 插入排班表、班次、未匹配姓名和历史记录在一个事务中完成
func (r *Repository) CreateChainDraft(p *ChainDraftParams) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var nextVersion int32
	query := `SELECT COALESCE(MAX(version_number), 0) + 1 FROM rosters WHERE chain_id = $1`
	if err := tx.QueryRowContext(ctx, query, *p.Roster.ChainID).Scan(&nextVersion); err != nil {
		return err
	}

	p.Roster.VersionNumber = nextVersion
	p.Roster.Status = domain.RosterStatusDraft
	p.Roster.IsActive = false

	query = `
		INSERT INTO rosters (
			venue_id, name, description, start_date, end_date, status,
			chain_id, version_number, is_active, parent_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, revision
	`

	params := []any{
		p.Roster.VenueID,
		p.Roster.Name,
		p.Roster.Description,
		p.Roster.StartDate,
		p.Roster.EndDate,
		p.Roster.Status,
		p.Roster.ChainID,
		p.Roster.VersionNumber,
		p.Roster.IsActive,
		p.Roster.ParentID,
		p.Roster.CreatedBy,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&p.Roster.ID, &p.Roster.CreatedAt, &p.Roster.Revision); err != nil {
		return err
	}

	for _, shift := range p.Shifts {
		shift.RosterID = p.Roster.ID
		if err := insertShiftTx(ctx, tx, shift); err != nil {
			return err
		}
	}

	for _, entry := range p.Unmatched {
		query := `
			INSERT INTO unmatched_staff (roster_id, original_name, suggested_user_id, confidence)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		params := []any{p.Roster.ID, entry.OriginalName, entry.SuggestedUserID, entry.Confidence}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return err
		}
		entry.RosterID = p.Roster.ID
	}

	p.Entry.RosterID = p.Roster.ID
	if err := appendHistoryTx(ctx, tx, p.Entry, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	p.Roster.Revision = p.Entry.Version
	return nil
}
