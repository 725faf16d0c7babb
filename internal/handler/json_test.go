package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	h, err := NewHandler(nil, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSuccessResponseEnvelope(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rosters", nil)

	h.successResponse(rec, req, "获取排班表列表成功", []int{1, 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "获取排班表列表成功", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestErrorResponseKeepsStatusOK(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rosters", nil)

	h.errorResponse(rec, req, "只有草稿状态的排班表可以编辑")

	// 业务失败不改变 HTTP 状态码
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "只有草稿状态的排班表可以编辑", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestBadRequestTranslatesValidationError(t *testing.T) {
	h := newTestHandler(t)

	err := h.validate.Struct(struct {
		Name string `validate:"required"`
	}{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rosters", nil)
	h.badRequest(rec, req, err)

	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
	// 校验错误被翻译成中文，不把英文原始信息透给客户端
	assert.NotContains(t, resp.Message, "Error:Field validation")
}
