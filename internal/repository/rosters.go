package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

const rosterColumns = `
	id,
	venue_id,
	name,
	description,
	start_date,
	end_date,
	status,
	chain_id,
	version_number,
	is_active,
	parent_id,
	created_by,
	published_by,
	published_at,
	created_at,
	revision
`

func scanRoster(row interface{ Scan(...any) error }) (*domain.Roster, error) {
	var roster domain.Roster
	dst := []any{
		&roster.ID,
		&roster.VenueID,
		&roster.Name,
		&roster.Description,
		&roster.StartDate,
		&roster.EndDate,
		&roster.Status,
		&roster.ChainID,
		&roster.VersionNumber,
		&roster.IsActive,
		&roster.ParentID,
		&roster.CreatedBy,
		&roster.PublishedBy,
		&roster.PublishedAt,
		&roster.CreatedAt,
		&roster.Revision,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return &roster, nil
}

func (r *Repository) GetRosterByID(id int64) (*domain.Roster, error) {
	query := `SELECT ` + rosterColumns + ` FROM rosters WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanRoster(r.dbpool.QueryRowContext(ctx, query, id))
}

// RosterFilter 列表查询的过滤条件，零值字段表示不过滤
type RosterFilter struct {
	VenueIDs   []int64
	Status     domain.RosterStatus
	ChainID    string
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	ActiveOnly bool
}

func (r *Repository) ListRosters(filter RosterFilter) ([]*domain.Roster, error) {
	conditions := []string{"TRUE"}
	params := []any{}

	if len(filter.VenueIDs) > 0 {
		params = append(params, filter.VenueIDs)
		conditions = append(conditions, fmt.Sprintf("venue_id = ANY($%d)", len(params)))
	}
	if filter.Status != "" {
		params = append(params, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(params)))
	}
	if filter.ChainID != "" {
		params = append(params, filter.ChainID)
		conditions = append(conditions, fmt.Sprintf("chain_id = $%d", len(params)))
	}
	if filter.DateFrom != nil {
		params = append(params, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("end_date >= $%d", len(params)))
	}
	if filter.DateTo != nil {
		params = append(params, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(params)))
	}
	if filter.Search != "" {
		params = append(params, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(params), len(params)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	query := `SELECT ` + rosterColumns + ` FROM rosters WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY start_date DESC, version_number DESC`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, params...)
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

// GetAdjacentActiveRoster 获取同一场馆相邻一周的启用版本，direction 为 1 表示下一周，-1 表示上一周
func (r *Repository) GetAdjacentActiveRoster(venueID int64, weekStart time.Time, direction int) (*domain.Roster, error) {
	query := `
		SELECT ` + rosterColumns + `
		FROM rosters
		WHERE venue_id = $1 AND start_date = $2 AND is_active = TRUE
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	target := weekStart.AddDate(0, 0, 7*direction)
	return scanRoster(r.dbpool.QueryRowContext(ctx, query, venueID, target))
}

// DeleteRoster 删除草稿。班次、历史和未匹配姓名由外键级联删除
func (r *Repository) DeleteRoster(id int64) error {
	query := `DELETE FROM rosters WHERE id = $1 AND status = $2`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id, domain.RosterStatusDraft)
	return err
}

// UpdateRosterInfo 更新名称和描述，并在同一个事务里写入历史记录。
// revision 由历史记录推进，UPDATE 里的 revision 条件只做并发检查
func (r *Repository) UpdateRosterInfo(roster *domain.Roster, entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE rosters SET name = $1, description = $2 WHERE id = $3 AND revision = $4`
	result, err := tx.ExecContext(ctx, query, roster.Name, roster.Description, roster.ID, roster.Revision)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	entry.RosterID = roster.ID
	if err := appendHistoryTx(ctx, tx, entry, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	roster.Revision = entry.Version
	return nil
}

func (r *Repository) GetUnmatchedStaff(rosterID int64) ([]*domain.UnmatchedStaff, error) {
	query := `
		SELECT id, original_name, suggested_user_id, confidence, created_at
		FROM unmatched_staff
		WHERE roster_id = $1
		ORDER BY id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.UnmatchedStaff{}
	for rows.Next() {
		entry := &domain.UnmatchedStaff{RosterID: rosterID}
		dst := []any{&entry.ID, &entry.OriginalName, &entry.SuggestedUserID, &entry.Confidence, &entry.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
