package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// appendHistoryTx 在同一个事务里写入一条历史记录。bumpRevision 为 true 时会先把排班表的
// revision 加一，历史记录中的 version 字段总是记录这条记录生效后的 revision 值。
// 排班表的 revision 和历史记录必须一起更新，不允许只更新其中一个
func appendHistoryTx(ctx context.Context, tx *sql.Tx, entry *domain.RosterHistory, bumpRevision bool) error {
	if bumpRevision {
		query := `
			UPDATE rosters
			SET revision = revision + 1
			WHERE id = $1
			RETURNING revision, chain_id
		`
		if err := tx.QueryRowContext(ctx, query, entry.RosterID).Scan(&entry.Version, &entry.ChainID); err != nil {
			return err
		}
	} else {
		query := `SELECT revision, chain_id FROM rosters WHERE id = $1`
		if err := tx.QueryRowContext(ctx, query, entry.RosterID).Scan(&entry.Version, &entry.ChainID); err != nil {
			return err
		}
	}

	changes, err := marshalJSON(entry.Changes)
	if err != nil {
		return err
	}
	snapshot, err := marshalJSON(entry.ShiftsSnapshot)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(entry.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO roster_history (roster_id, chain_id, version, action, changes, shifts_snapshot, metadata, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	params := []any{
		entry.RosterID,
		entry.ChainID,
		entry.Version,
		entry.Action,
		changes,
		snapshot,
		metadata,
		entry.PerformedBy,
	}
	return tx.QueryRowContext(ctx, query, params...).Scan(&entry.ID, &entry.CreatedAt)
}

// Record 写入一条历史记录并同时推进排班表的 revision，两者在一个事务中完成
func (r *Repository) Record(entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := appendHistoryTx(ctx, tx, entry, true); err != nil {
		return err
	}

	return tx.Commit()
}

// RecordEvent 与 Record 相同，但不推进 revision，用于诊断类事件
func (r *Repository) RecordEvent(entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := appendHistoryTx(ctx, tx, entry, false); err != nil {
		return err
	}

	return tx.Commit()
}

// HistoryFilter 历史查询的过滤条件。快照可能很大，默认不返回
type HistoryFilter struct {
	Action           domain.HistoryAction
	IncludeSnapshots bool
}

func (r *Repository) GetRosterHistory(rosterID int64, filter HistoryFilter) ([]*domain.RosterHistory, error) {
	snapshotColumn := "NULL"
	if filter.IncludeSnapshots {
		snapshotColumn = "shifts_snapshot"
	}

	query := `
		SELECT id, chain_id, version, action, changes, ` + snapshotColumn + `, metadata, performed_by, created_at
		FROM roster_history
		WHERE roster_id = $1 AND ($2 = '' OR action = $2)
		ORDER BY id DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, rosterID, string(filter.Action))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.RosterHistory{}
	for rows.Next() {
		entry := &domain.RosterHistory{RosterID: rosterID}
		var changes, snapshot, metadata []byte
		dst := []any{
			&entry.ID,
			&entry.ChainID,
			&entry.Version,
			&entry.Action,
			&changes,
			&snapshot,
			&metadata,
			&entry.PerformedBy,
			&entry.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if entry.Changes, err = unmarshalChanges(changes); err != nil {
			return nil, err
		}
		if entry.ShiftsSnapshot, err = unmarshalSnapshot(snapshot); err != nil {
			return nil, err
		}
		if entry.Metadata, err = unmarshalChanges(metadata); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetChainHistory 获取整条版本链的历史，带上排班表名称和版本号方便展示
func (r *Repository) GetChainHistory(chainID string) ([]*domain.RosterHistory, error) {
	query := `
		SELECT h.id, h.roster_id, h.version, h.action, h.changes, h.metadata, h.performed_by, h.created_at,
			ro.name, ro.version_number
		FROM roster_history h
		JOIN rosters ro ON ro.id = h.roster_id
		WHERE h.chain_id = $1
		ORDER BY h.id DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, chainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.RosterHistory{}
	for rows.Next() {
		entry := &domain.RosterHistory{ChainID: &chainID}
		var changes, metadata []byte
		dst := []any{
			&entry.ID,
			&entry.RosterID,
			&entry.Version,
			&entry.Action,
			&changes,
			&metadata,
			&entry.PerformedBy,
			&entry.CreatedAt,
			&entry.RosterName,
			&entry.VersionNumber,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if entry.Changes, err = unmarshalChanges(changes); err != nil {
			return nil, err
		}
		if entry.Metadata, err = unmarshalChanges(metadata); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *Repository) GetHistoryEntryByID(id int64) (*domain.RosterHistory, error) {
	query := `
		SELECT roster_id, chain_id, version, action, changes, shifts_snapshot, metadata, performed_by, created_at
		FROM roster_history
		WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	entry := &domain.RosterHistory{ID: id}
	var changes, snapshot, metadata []byte
	dst := []any{
		&entry.RosterID,
		&entry.ChainID,
		&entry.Version,
		&entry.Action,
		&changes,
		&snapshot,
		&metadata,
		&entry.PerformedBy,
		&entry.CreatedAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	var err error
	if entry.Changes, err = unmarshalChanges(changes); err != nil {
		return nil, err
	}
	if entry.ShiftsSnapshot, err = unmarshalSnapshot(snapshot); err != nil {
		return nil, err
	}
	if entry.Metadata, err = unmarshalChanges(metadata); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetLatestSnapshot 获取某个排班表最近一条携带快照的历史记录
func (r *Repository) GetLatestSnapshot(rosterID int64) (*domain.RosterHistory, error) {
	query := `
		SELECT id, chain_id, version, action, shifts_snapshot, performed_by, created_at
		FROM roster_history
		WHERE roster_id = $1 AND shifts_snapshot IS NOT NULL
		ORDER BY id DESC
		LIMIT 1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	entry := &domain.RosterHistory{RosterID: rosterID}
	var snapshot []byte
	dst := []any{&entry.ID, &entry.ChainID, &entry.Version, &entry.Action, &snapshot, &entry.PerformedBy, &entry.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, rosterID).Scan(dst...); err != nil {
		return nil, err
	}

	var err error
	if entry.ShiftsSnapshot, err = unmarshalSnapshot(snapshot); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetRollbackPoints 列出所有可以作为回滚目标的历史记录及其快照中的班次数量
func (r *Repository) GetRollbackPoints(rosterID int64) ([]*domain.RollbackPoint, error) {
	query := `
		SELECT id, action, version, jsonb_array_length(shifts_snapshot), created_at
		FROM roster_history
		WHERE roster_id = $1 AND shifts_snapshot IS NOT NULL
		ORDER BY id DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []*domain.RollbackPoint{}
	for rows.Next() {
		var point domain.RollbackPoint
		dst := []any{&point.HistoryID, &point.Action, &point.Version, &point.ShiftCount, &point.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		points = append(points, &point)
	}

	return points, rows.Err()
}
