package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/roster"
)

func extractionSessionKey(sessionID string) string {
	return fmt.Sprintf("extraction_session_%s", sessionID)
}

func (h *Handler) redisContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
}

// CreateExtractionSession 接收从排班文件中提取出来的候选班次，
// 自动匹配员工姓名后把会话暂存到 redis 中，等待用户确认
func (h *Handler) CreateExtractionSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VenueID    int64  `json:"venueID" validate:"required"`
		WeekStart  string `json:"weekStart" validate:"required"`
		Candidates []struct {
			StaffName string `json:"staffName" validate:"required"`
			Date      string `json:"date" validate:"required"`
			StartTime string `json:"startTime" validate:"required,wallclock"`
			EndTime   string `json:"endTime" validate:"required,wallclock"`
			Position  string `json:"position" validate:"required"`
			Notes     string `json:"notes"`
		} `json:"candidates" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	if !myInfo.CanManageVenue(req.VenueID) {
		h.errorResponse(w, r, "您无权管理该场馆的排班表")
		return
	}

	weekStart, err := time.Parse(dateLayout, req.WeekStart)
	if err != nil {
		h.badRequest(w, r, errors.New("周开始日期格式错误"))
		return
	}
	weekStart = roster.NormalizeWeekStart(weekStart)

	candidates := make([]domain.CandidateShift, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		candidates = append(candidates, domain.CandidateShift{
			StaffName: c.StaffName,
			Date:      c.Date,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Position:  c.Position,
			Notes:     c.Notes,
		})
	}

	// 把候选班次上的姓名匹配到在职员工
	staff, err := h.repository.GetActiveStaff()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	unmatched := roster.MatchCandidates(candidates, staff)

	session := &domain.ExtractionSession{
		ID:             uuid.NewString(),
		VenueID:        req.VenueID,
		WeekStart:      weekStart.Format(dateLayout),
		Candidates:     candidates,
		UnmatchedNames: unmatched,
		CreatedBy:      myInfo.ID,
		CreatedAt:      time.Now(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := h.redisContext(r)
	defer cancel()

	expiration := time.Duration(h.config.Extraction.SessionExpiration) * time.Second
	if err := h.redisClient.Set(ctx, extractionSessionKey(session.ID), data, expiration).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提取会话创建成功", session)
}

func (h *Handler) loadExtractionSession(w http.ResponseWriter, r *http.Request) *domain.ExtractionSession {
	sessionID := chi.URLParam(r, "sessionID")

	ctx, cancel := h.redisContext(r)
	defer cancel()

	data, err := h.redisClient.Get(ctx, extractionSessionKey(sessionID)).Result()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, "提取会话不存在或已过期")
		default:
			h.internalServerError(w, r, err)
		}
		return nil
	}

	session := &domain.ExtractionSession{}
	if err := json.Unmarshal([]byte(data), session); err != nil {
		h.internalServerError(w, r, err)
		return nil
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	if !myInfo.CanManageVenue(session.VenueID) {
		h.errorResponse(w, r, "您无权管理该场馆的排班表")
		return nil
	}

	return session
}

func (h *Handler) GetExtractionSession(w http.ResponseWriter, r *http.Request) {
	session := h.loadExtractionSession(w, r)
	if session == nil {
		return
	}

	h.successResponse(w, r, "获取提取会话成功", session)
}

// ConfirmExtractionSession 把会话中的候选班次落库成一个新的草稿排班表，
// 未匹配的姓名会生成待处理记录。确认成功后会话即被删除
func (h *Handler) ConfirmExtractionSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	session := h.loadExtractionSession(w, r)
	if session == nil {
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	newRoster, err := h.service.CreateDraftFromExtraction(session, req.Name, req.Description, myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := h.redisContext(r)
	defer cancel()

	if err := h.redisClient.Del(ctx, extractionSessionKey(session.ID)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "草稿排班表创建成功", newRoster)
}

func (h *Handler) CancelExtractionSession(w http.ResponseWriter, r *http.Request) {
	session := h.loadExtractionSession(w, r)
	if session == nil {
		return
	}

	ctx, cancel := h.redisContext(r)
	defer cancel()

	if err := h.redisClient.Del(ctx, extractionSessionKey(session.ID)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提取会话已取消", nil)
}

// PreviewMerge 用一个提取会话的候选班次对当前草稿做合并预览
func (h *Handler) PreviewMerge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Candidates []domain.CandidateShift `json:"candidates" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	preview, err := h.service.PreviewMerge(rosterInfo, req.Candidates)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "合并预览生成成功", preview)
}

func (h *Handler) ApplyMerge(w http.ResponseWriter, r *http.Request) {
	var req roster.MergeSelection

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	result, err := h.service.ApplyMerge(rosterInfo, &req, myInfo)
	if err != nil {
		h.handleShiftError(w, r, err)
		return
	}

	h.successResponse(w, r, "合并应用成功", result)
}
