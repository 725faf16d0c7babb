package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// GetApprovedTimeOffCovering 获取某个用户覆盖指定日期的已批准请假记录，
// 没有命中时返回 nil 而不是错误
func (r *Repository) GetApprovedTimeOffCovering(userID int64, date time.Time) (*domain.TimeOffRequest, error) {
	query := `
		SELECT id, start_date, end_date, status, reason, created_at
		FROM time_off_requests
		WHERE user_id = $1
			AND status = $2
			AND start_date <= $3
			AND end_date >= $3
		ORDER BY start_date
		LIMIT 1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	req := &domain.TimeOffRequest{UserID: userID}
	dst := []any{&req.ID, &req.StartDate, &req.EndDate, &req.Status, &req.Reason, &req.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, userID, domain.TimeOffApproved, date).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return req, nil
}

func (r *Repository) CreateTimeOffRequest(req *domain.TimeOffRequest) error {
	query := `
		INSERT INTO time_off_requests (user_id, start_date, end_date, status, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	params := []any{req.UserID, req.StartDate, req.EndDate, req.Status, req.Reason}
	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&req.ID, &req.CreatedAt)
}

// GetAvailability 获取用户在某个星期几的可用时间申报，没有申报时返回 nil
func (r *Repository) GetAvailability(userID int64, dayOfWeek int32) (*domain.Availability, error) {
	query := `
		SELECT id, is_available, is_all_day, start_time, end_time
		FROM availabilities
		WHERE user_id = $1 AND day_of_week = $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	av := &domain.Availability{UserID: userID, DayOfWeek: dayOfWeek}
	dst := []any{&av.ID, &av.IsAvailable, &av.IsAllDay, &av.StartTime, &av.EndTime}
	if err := r.dbpool.QueryRowContext(ctx, query, userID, dayOfWeek).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return av, nil
}

func (r *Repository) UpsertAvailability(av *domain.Availability) error {
	query := `
		INSERT INTO availabilities (user_id, day_of_week, is_available, is_all_day, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, day_of_week) DO UPDATE
		SET is_available = EXCLUDED.is_available,
			is_all_day = EXCLUDED.is_all_day,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time
		RETURNING id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	params := []any{av.UserID, av.DayOfWeek, av.IsAvailable, av.IsAllDay, av.StartTime, av.EndTime}
	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&av.ID)
}
