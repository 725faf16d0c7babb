package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/roster"
)

func (h *Handler) handleVersionError(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *roster.IllegalTransitionError
	switch {
	case errors.Is(err, roster.ErrNotInChain):
		h.errorResponse(w, r, "排班表不属于任何版本链")
	case errors.Is(err, roster.ErrVersionIsActive):
		h.errorResponse(w, r, "该版本已经是当前启用版本")
	case errors.Is(err, roster.ErrNoSnapshot):
		h.errorResponse(w, r, "该历史记录不包含可回滚的快照")
	case errors.As(err, &transitionErr):
		h.errorResponse(w, r, transitionErr.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

// CreateNewVersion 从已发布的版本派生新草稿
func (h *Handler) CreateNewVersion(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	newRoster, err := h.service.CreateNewVersion(rosterInfo, myInfo)
	if err != nil {
		h.handleVersionError(w, r, err)
		return
	}

	h.successResponse(w, r, "新版本草稿创建成功", newRoster)
}

// RestoreVersion 把被取代的链成员恢复成新的草稿版本
func (h *Handler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	newRoster, err := h.service.RestoreVersion(rosterInfo, myInfo)
	if err != nil {
		h.handleVersionError(w, r, err)
		return
	}

	h.successResponse(w, r, "版本恢复成功", newRoster)
}

func (h *Handler) GetChainForRoster(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	if rosterInfo.ChainID == nil {
		h.errorResponse(w, r, "排班表不属于任何版本链")
		return
	}

	h.respondChain(w, r, *rosterInfo.ChainID)
}

func (h *Handler) GetChain(w http.ResponseWriter, r *http.Request) {
	h.respondChain(w, r, chi.URLParam(r, "chainID"))
}

func (h *Handler) respondChain(w http.ResponseWriter, r *http.Request, chainID string) {
	summary, err := h.repository.GetChainSummary(chainID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "版本链不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	members, err := h.repository.GetChainRosters(chainID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取版本链成功", map[string]any{
		"summary": summary,
		"members": members,
	})
}

// ListVenueChains 列出某个场馆在时间窗口内出现过的所有版本链
func (h *Handler) ListVenueChains(w http.ResponseWriter, r *http.Request) {
	venueIDParam := chi.URLParam(r, "id")
	venueID, err := strconv.ParseInt(venueIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "场馆ID无效")
		return
	}

	from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}
	to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}

	chainIDs, err := h.repository.ListChainIDsByVenue(venueID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summaries := make([]*domain.ChainSummary, 0, len(chainIDs))
	for _, chainID := range chainIDs {
		summary, err := h.repository.GetChainSummary(chainID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		summaries = append(summaries, summary)
	}

	h.successResponse(w, r, "获取场馆版本链列表成功", summaries)
}

func (h *Handler) GetChainHistory(w http.ResponseWriter, r *http.Request) {
	chainID := chi.URLParam(r, "chainID")

	entries, err := h.repository.GetChainHistory(chainID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取版本链历史成功", entries)
}

func (h *Handler) GetRosterHistory(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	filter := repository.HistoryFilter{
		Action:           domain.HistoryAction(r.URL.Query().Get("action")),
		IncludeSnapshots: r.URL.Query().Get("includeSnapshots") == "true",
	}

	entries, err := h.repository.GetRosterHistory(rosterInfo.ID, filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取历史记录成功", entries)
}

func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	entry, err := h.repository.GetLatestSnapshot(rosterInfo.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "排班表还没有任何快照", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取最新快照成功", entry)
}

func (h *Handler) GetRollbackPoints(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	points, err := h.repository.GetRollbackPoints(rosterInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可回滚记录成功", points)
}

func (h *Handler) RollbackToVersion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HistoryID int64 `json:"historyID" validate:"required"`
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
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	newRoster, err := h.service.RollbackToVersion(rosterInfo, req.HistoryID, myInfo)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "历史记录不存在")
		default:
			h.handleVersionError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "回滚成功，已创建新的草稿版本", newRoster)
}

// CompareVersions 比较当前排班表和另一个版本的班次差异
func (h *Handler) CompareVersions(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)

	otherIDParam := chi.URLParam(r, "otherID")
	otherID, err := strconv.ParseInt(otherIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "排班表ID无效")
		return
	}

	other, err := h.repository.GetRosterByID(otherID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "排班表不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	result, err := h.service.CompareVersions(rosterInfo, other)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "版本比较成功", result)
}
