package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/roster"
)

func (h *Handler) handleTransitionError(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *roster.IllegalTransitionError
	switch {
	case errors.Is(err, roster.ErrEmptyRoster):
		h.errorResponse(w, r, "排班表中没有安排任何员工，不能定稿")
	case errors.Is(err, roster.ErrArchivedTerminal):
		h.errorResponse(w, r, "归档是终态，归档的排班表不能再变更状态")
	case errors.As(err, &transitionErr):
		h.errorResponse(w, r, transitionErr.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) FinalizeRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpectedStatus domain.RosterStatus `json:"expectedStatus"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	// 旧版客户端会把待定稿的排班表报成 PENDING_REVIEW，按 DRAFT 处理
	if req.ExpectedStatus == domain.RosterStatusPendingReview {
		req.ExpectedStatus = domain.RosterStatusDraft
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if req.ExpectedStatus != "" && req.ExpectedStatus != rosterInfo.Status {
		h.errorResponse(w, r, "排班表状态已变化，请刷新后重试")
		return
	}

	result, err := h.service.Finalize(rosterInfo, myInfo)
	if err != nil {
		h.handleTransitionError(w, r, err)
		return
	}

	msg := "排班表定稿成功"
	if result.HasConflicts {
		msg = "排班表定稿成功，但仍有班次存在冲突"
	}
	h.successResponse(w, r, msg, result)
}

func (h *Handler) PublishRoster(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	result, err := h.service.Publish(rosterInfo, myInfo)
	if err != nil {
		h.handleTransitionError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班表发布成功", result)
}

func (h *Handler) RevertRosterToDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	result, err := h.service.RevertToDraft(rosterInfo, myInfo, req.Reason)
	if err != nil {
		h.handleTransitionError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班表已退回草稿", result)
}
