package repository

import (
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// FinalizeRoster 把草稿定稿为 APPROVED。状态检查和状态写入在同一条语句中完成，
// 两个人同时定稿时只有一个会成功，另一个会得到 sql.ErrNoRows
func (r *Repository) FinalizeRoster(roster *domain.Roster, entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE rosters
		SET status = $1, revision = revision + 1
		WHERE id = $2 AND status = $3
		RETURNING revision
	`

	if err := tx.QueryRowContext(ctx, query, domain.RosterStatusApproved, roster.ID, domain.RosterStatusDraft).Scan(&roster.Revision); err != nil {
		return err
	}
	roster.Status = domain.RosterStatusApproved

	if err := appendHistoryTx(ctx, tx, entry, false); err != nil {
		return err
	}

	return tx.Commit()
}

// PublishRoster 发布一个已定稿的版本并激活它。同一条链上其他启用中的版本会被取消启用
// 并记录 VERSION_SUPERSEDED，直接父版本会被归档。所有步骤在一个事务中完成，
// 保证任何时刻链上最多只有一个启用版本。返回被取代的版本 ID
func (r *Repository) PublishRoster(roster *domain.Roster, entry *domain.RosterHistory) ([]int64, error) {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE rosters
		SET status = $1, is_active = TRUE, published_by = $2, published_at = NOW(), revision = revision + 1
		WHERE id = $3 AND status = $4
		RETURNING revision, published_at
	`

	params := []any{domain.RosterStatusPublished, roster.PublishedBy, roster.ID, domain.RosterStatusApproved}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&roster.Revision, &roster.PublishedAt); err != nil {
		return nil, err
	}
	roster.Status = domain.RosterStatusPublished
	roster.IsActive = true

	supersededIDs := []int64{}
	if roster.ChainID != nil {
		query := `
			UPDATE rosters
			SET is_active = FALSE
			WHERE chain_id = $1 AND id <> $2 AND is_active = TRUE
			RETURNING id
		`

		rows, err := tx.QueryContext(ctx, query, *roster.ChainID, roster.ID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			supersededIDs = append(supersededIDs, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		for _, id := range supersededIDs {
			superseded := &domain.RosterHistory{
				RosterID:    id,
				Action:      domain.ActionVersionSuperseded,
				Changes:     map[string]any{"supersededBy": roster.ID},
				PerformedBy: entry.PerformedBy,
			}
			if err := appendHistoryTx(ctx, tx, superseded, false); err != nil {
				return nil, err
			}
		}
	}

	// 直接父版本是这次编辑的前身而不只是上一个启用版本，发布后直接归档。
	// 同链的其他版本只取消启用不改状态，这个不对称行为是既有历史语义的一部分
	if roster.ParentID != nil {
		query := `UPDATE rosters SET status = $1, is_active = FALSE WHERE id = $2`
		if _, err := tx.ExecContext(ctx, query, domain.RosterStatusArchived, *roster.ParentID); err != nil {
			return nil, err
		}
	}

	if err := appendHistoryTx(ctx, tx, entry, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return supersededIDs, nil
}

// RevertRosterToDraft 把 APPROVED 或 PUBLISHED 的排班表退回草稿。
// expected 是调用方看到的当前状态，用于并发保护
func (r *Repository) RevertRosterToDraft(roster *domain.Roster, expected domain.RosterStatus, entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE rosters
		SET status = $1, is_active = FALSE, published_by = NULL, published_at = NULL, revision = revision + 1
		WHERE id = $2 AND status = $3
		RETURNING revision
	`

	if err := tx.QueryRowContext(ctx, query, domain.RosterStatusDraft, roster.ID, expected).Scan(&roster.Revision); err != nil {
		return err
	}
	roster.Status = domain.RosterStatusDraft
	roster.IsActive = false
	roster.PublishedBy = nil
	roster.PublishedAt = nil

	if err := appendHistoryTx(ctx, tx, entry, false); err != nil {
		return err
	}

	return tx.Commit()
}

// MergeApplyParams 把预览合并中被选中的子集落库的事务参数
type MergeApplyParams struct {
	RosterID      int64
	Add           []*domain.RosterShift
	RemoveIDs     []int64
	Update        []*domain.RosterShift
	StartEntry    *domain.RosterHistory // 携带合并前的完整快照，使合并本身可以回滚
	CompleteEntry *domain.RosterHistory
}

func (r *Repository) ApplyMerge(p *MergeApplyParams) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := appendHistoryTx(ctx, tx, p.StartEntry, true); err != nil {
		return err
	}

	for _, shift := range p.Add {
		shift.RosterID = p.RosterID
		if err := insertShiftTx(ctx, tx, shift); err != nil {
			return err
		}
	}

	for _, id := range p.RemoveIDs {
		query := `DELETE FROM roster_shifts WHERE id = $1 AND roster_id = $2`
		if _, err := tx.ExecContext(ctx, query, id, p.RosterID); err != nil {
			return err
		}
	}

	query := `
		UPDATE roster_shifts
		SET staff_id = $1, end_time = $2, break_minutes = $3, notes = $4, has_conflict = $5, conflict_type = $6
		WHERE id = $7 AND roster_id = $8
	`
	for _, shift := range p.Update {
		params := []any{
			shift.StaffID,
			shift.EndTime,
			shift.BreakMinutes,
			shift.Notes,
			shift.HasConflict,
			shift.ConflictType,
			shift.ID,
			p.RosterID,
		}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	if err := appendHistoryTx(ctx, tx, p.CompleteEntry, false); err != nil {
		return err
	}

	return tx.Commit()
}
