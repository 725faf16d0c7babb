package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

const shiftColumns = `
	id,
	roster_id,
	staff_id,
	date,
	start_time,
	end_time,
	break_minutes,
	position,
	notes,
	original_name,
	has_conflict,
	conflict_type,
	created_at
`

func scanShift(row interface{ Scan(...any) error }) (*domain.RosterShift, error) {
	var shift domain.RosterShift
	dst := []any{
		&shift.ID,
		&shift.RosterID,
		&shift.StaffID,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.BreakMinutes,
		&shift.Position,
		&shift.Notes,
		&shift.OriginalName,
		&shift.HasConflict,
		&shift.ConflictType,
		&shift.CreatedAt,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return &shift, nil
}

func insertShiftTx(ctx context.Context, tx *sql.Tx, shift *domain.RosterShift) error {
	query := `
		INSERT INTO roster_shifts (
			roster_id, staff_id, date, start_time, end_time,
			break_minutes, position, notes, original_name, has_conflict, conflict_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	params := []any{
		shift.RosterID,
		shift.StaffID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.BreakMinutes,
		shift.Position,
		shift.Notes,
		shift.OriginalName,
		shift.HasConflict,
		shift.ConflictType,
	}
	return tx.QueryRowContext(ctx, query, params...).Scan(&shift.ID, &shift.CreatedAt)
}

// CreateShift 插入班次并在同一个事务中写入历史记录
func (r *Repository) CreateShift(shift *domain.RosterShift, entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertShiftTx(ctx, tx, shift); err != nil {
		return err
	}
	if err := appendHistoryTx(ctx, tx, entry, true); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) UpdateShift(shift *domain.RosterShift, entry *domain.RosterHistory) error {
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
		UPDATE roster_shifts
		SET staff_id = $1,
			date = $2,
			start_time = $3,
			end_time = $4,
			break_minutes = $5,
			position = $6,
			notes = $7,
			has_conflict = $8,
			conflict_type = $9
		WHERE id = $10
	`

	params := []any{
		shift.StaffID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.BreakMinutes,
		shift.Position,
		shift.Notes,
		shift.HasConflict,
		shift.ConflictType,
		shift.ID,
	}
	if _, err := tx.ExecContext(ctx, query, params...); err != nil {
		return err
	}
	if err := appendHistoryTx(ctx, tx, entry, true); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) DeleteShift(shiftID int64, entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM roster_shifts WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, shiftID); err != nil {
		return err
	}
	if err := appendHistoryTx(ctx, tx, entry, true); err != nil {
		return err
	}

	return tx.Commit()
}

// BulkCreateShifts 批量插入班次，全部插入和历史记录在一个事务中完成
func (r *Repository) BulkCreateShifts(shifts []*domain.RosterShift, entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, shift := range shifts {
		if err := insertShiftTx(ctx, tx, shift); err != nil {
			return err
		}
	}
	if err := appendHistoryTx(ctx, tx, entry, true); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetShiftByID(id int64) (*domain.RosterShift, error) {
	query := `SELECT ` + shiftColumns + ` FROM roster_shifts WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetShiftsByRosterID(rosterID int64) ([]*domain.RosterShift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM roster_shifts
		WHERE roster_id = $1
		ORDER BY date, start_time, position, id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []*domain.RosterShift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	return shifts, rows.Err()
}

// GetShiftsForStaffOnDate 获取某个员工某天的所有班次，用于重复排班检测。
// 只扫描 DRAFT 和 PUBLISHED 状态的排班表：已定稿未发布的排班表还不会产生占用，
// 已归档的排班表已经失效。excludeShiftID 不为空时对应的班次不参与扫描
func (r *Repository) GetShiftsForStaffOnDate(staffID int64, date time.Time, excludeShiftID *int64) ([]*domain.RosterShift, error) {
	query := `
		SELECT s.id, s.roster_id, s.staff_id, s.date, s.start_time, s.end_time,
			s.break_minutes, s.position, s.notes, s.original_name, s.has_conflict, s.conflict_type, s.created_at
		FROM roster_shifts s
		JOIN rosters ro ON ro.id = s.roster_id
		WHERE s.staff_id = $1
			AND s.date = $2
			AND ro.status IN ($3, $4)
			AND ($5::bigint IS NULL OR s.id <> $5)
		ORDER BY s.start_time
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	params := []any{staffID, date, domain.RosterStatusDraft, domain.RosterStatusPublished, excludeShiftID}
	rows, err := r.dbpool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []*domain.RosterShift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	return shifts, rows.Err()
}

// ShiftVerdict 一次全量重查后需要落库的单个班次的检测结果
type ShiftVerdict struct {
	ShiftID      int64
	HasConflict  bool
	ConflictType *domain.ConflictType
}

// SaveShiftVerdicts 批量持久化冲突检测结果，和历史记录在一个事务中完成
func (r *Repository) SaveShiftVerdicts(verdicts []ShiftVerdict, entry *domain.RosterHistory) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE roster_shifts SET has_conflict = $1, conflict_type = $2 WHERE id = $3`
	for _, v := range verdicts {
		if _, err := tx.ExecContext(ctx, query, v.HasConflict, v.ConflictType, v.ShiftID); err != nil {
			return err
		}
	}
	if err := appendHistoryTx(ctx, tx, entry, false); err != nil {
		return err
	}

	return tx.Commit()
}
