package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// DiagnoseChains 检查所有版本链的启用标记是否满足不变量，只读不修复
func (h *Handler) DiagnoseChains(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Diagnose()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	msg := "所有版本链状态正常"
	if report.ChainsFlagged > 0 {
		msg = "检测到状态异常的版本链"
	}
	h.successResponse(w, r, msg, report)
}

func (h *Handler) RepairChains(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	report, err := h.service.Repair(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "版本链修复完成", report)
}
