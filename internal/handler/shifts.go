package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/roster"
)

type shiftRequest struct {
	StaffID      *int64 `json:"staffID"`
	Date         string `json:"date" validate:"required"`
	StartTime    string `json:"startTime" validate:"required,wallclock"`
	EndTime      string `json:"endTime" validate:"required,wallclock"`
	BreakMinutes int32  `json:"breakMinutes" validate:"gte=0"`
	Position     string `json:"position" validate:"required"`
	Notes        string `json:"notes"`
}

func (h *Handler) shiftFromRequest(req *shiftRequest) (*domain.RosterShift, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, errors.New("班次日期格式错误")
	}
	if req.EndTime <= req.StartTime {
		return nil, errors.New("班次结束时间必须晚于开始时间")
	}

	return &domain.RosterShift{
		StaffID:      req.StaffID,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Position:     req.Position,
		Notes:        req.Notes,
	}, nil
}

// handleShiftError 把排班服务的业务错误翻译成客户端可读的消息
func (h *Handler) handleShiftError(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *roster.IllegalTransitionError
	switch {
	case errors.Is(err, roster.ErrRosterNotEditable):
		h.errorResponse(w, r, "只有草稿状态的排班表可以编辑")
	case errors.As(err, &transitionErr):
		h.errorResponse(w, r, transitionErr.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) AddShift(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.shiftFromRequest(&req)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if err := h.service.AddShift(rosterInfo, shift, myInfo); err != nil {
		h.handleShiftError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次创建成功", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req shiftRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.shiftFromRequest(&req)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	before := r.Context().Value(ShiftInfoCtx).(*domain.RosterShift)

	updated.ID = before.ID
	updated.RosterID = before.RosterID
	updated.OriginalName = before.OriginalName

	if err := h.service.UpdateShift(rosterInfo, before, updated, myInfo); err != nil {
		h.handleShiftError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次更新成功", updated)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	shift := r.Context().Value(ShiftInfoCtx).(*domain.RosterShift)

	if err := h.service.DeleteShift(rosterInfo, shift, myInfo); err != nil {
		h.handleShiftError(w, r, err)
		return
	}

	h.successResponse(w, r, "班次删除成功", nil)
}

func (h *Handler) BulkAddShifts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Shifts []shiftRequest `json:"shifts" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts := make([]*domain.RosterShift, 0, len(req.Shifts))
	for i := range req.Shifts {
		shift, err := h.shiftFromRequest(&req.Shifts[i])
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		shifts = append(shifts, shift)
	}

	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	created, err := h.service.BulkAddShifts(rosterInfo, shifts, myInfo)
	if err != nil {
		h.handleShiftError(w, r, err)
		return
	}

	h.successResponse(w, r, "批量创建班次成功", map[string]any{"created": created})
}

func (h *Handler) RecheckConflicts(w http.ResponseWriter, r *http.Request) {
	rosterInfo := r.Context().Value(RosterInfoCtx).(*domain.Roster)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	result, err := h.service.Recheck(rosterInfo, myInfo)
	if err != nil {
		h.handleShiftError(w, r, err)
		return
	}

	h.successResponse(w, r, "冲突检测完成", result)
}
