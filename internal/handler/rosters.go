package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/roster"
)

const dateLayout = "2006-01-02"

func (h *Handler) CreateRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VenueID     int64  `json:"venueID" validate:"required"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		WeekStart   string `json:"weekStart" validate:"required"`
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

	// 同一个场馆同一周的链 ID 是确定的，重复创建会落到同一条链上，
	// 版本号由仓储在事务内计算，不在这里预设
	newRoster := roster.NewChainDraft(req.VenueID, weekStart, req.Name, req.Description, myInfo.ID)

	entry := &domain.RosterHistory{
		Action:      domain.ActionCreated,
		Changes:     map[string]any{"name": req.Name, "weekStart": newRoster.StartDate.Format(dateLayout)},
		PerformedBy: myInfo.ID,
	}
	if err := h.repository.CreateChainDraft(&repository.ChainDraftParams{
		Roster: newRoster,
		Entry:  entry,
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班表创建成功", newRoster)
}

func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	filter := repository.RosterFilter{
		Status:  domain.RosterStatus(r.URL.Query().Get("status")),
		ChainID: r.URL.Query().Get("chainID"),
		Search:  r.URL.Query().Get("search"),
	}

	if venueIDParam := r.URL.Query().Get("venueID"); venueIDParam != "" {
		venueID, err := strconv.ParseInt(venueIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "场馆ID无效")
			return
		}
		filter.VenueIDs = []int64{venueID}
	}
	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		from, err := time.Parse(dateLayout, fromParam)
		if err != nil {
			h.errorResponse(w, r, "日期格式错误")
			return
		}
		filter.DateFrom = &from
	}
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		to, err := time.Parse(dateLayout, toParam)
		if err != nil {
			h.errorResponse(w, r, "日期格式错误")
			return
		}
		filter.DateTo = &to
	}
	filter.ActiveOnly = r.URL.Query().Get("activeOnly") == "true"

	rosters, err := h.repository.ListRosters(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班表列表成功", rosters)
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	h.successResponse(w, r, "获取排班表成功", rosterInfo)
}

// GetAdjacentRoster 获取同一场馆上一周或下一周的启用版本，direction 为 next 或 prev
func (h *Handler) GetAdjacentRoster(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	direction := 1
	if r.URL.Query().Get("direction") == "prev" {
		direction = -1
	}

	adjacent, err := h.repository.GetAdjacentActiveRoster(rosterInfo.VenueID, rosterInfo.StartDate, direction)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "相邻一周没有启用的排班表", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取相邻排班表成功", adjacent)
}

func (h *Handler) UpdateRosterInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if err := h.service.UpdateInfo(rosterInfo, req.Name, req.Description, myInfo); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "排班表已被他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新排班表成功", rosterInfo)
}

func (h *Handler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	if rosterInfo.Status != domain.RosterStatusDraft {
		h.errorResponse(w, r, "只有草稿状态的排班表可以删除")
		return
	}

	if err := h.repository.DeleteRoster(rosterInfo.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班表成功", nil)
}

func (h *Handler) GetRosterShifts(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	shifts, err := h.repository.GetShiftsByRosterID(rosterInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) GetUnmatchedStaff(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	entries, err := h.repository.GetUnmatchedStaff(rosterInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取未匹配姓名列表成功", entries)
}
