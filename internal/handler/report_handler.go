package handler

import (
	"strconv"
	"time"

	"teahouse/pkg/response"

	"github.com/gin-gonic/gin"
)

// 报表查询支持的时间格式，只有日期时 end 包含当天
var reportTimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04"}

const reportDateLayout = "2006-01-02"

// parseReportTime 解析查询时间，空字符串返回零值
func (h *Handler) parseReportTime(value string, isEnd bool) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	if t, err := time.ParseInLocation(reportDateLayout, value, h.location); err == nil {
		if isEnd {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	}
	for _, layout := range reportTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, h.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GetSummary 报表汇总
// GET /api/v1/reports/summary?start=2024-03-01&end=2024-03-01&operator=xxx
func (h *Handler) GetSummary(c *gin.Context) {
	from, ok := h.parseReportTime(c.Query("start"), false)
	if !ok {
		response.ParamError(c, "start 时间格式错误")
		return
	}
	to, ok := h.parseReportTime(c.Query("end"), true)
	if !ok {
		response.ParamError(c, "end 时间格式错误")
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), from, to, c.Query("operator"))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, summary)
}

// GetOperators GET /api/v1/reports/operators
func (h *Handler) GetOperators(c *gin.Context) {
	ops, err := h.reportService.Operators(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, ops)
}

// ClearReports 清空所有流水
// POST /api/v1/reports/clear
func (h *Handler) ClearReports(c *gin.Context) {
	var req struct {
		Operator string `json:"operator"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.reportService.Clear(c.Request.Context(), req.Operator)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": n})
}

// ListFailedMessages 投递失败的消息
// GET /api/v1/reports/outbox/failed?limit=50
func (h *Handler) ListFailedMessages(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.ParamError(c, "limit 必须是整数")
			return
		}
		limit = n
	}
	messages, err := h.reportService.FailedMessages(c.Request.Context(), limit)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, messages)
}

// RequeueMessage 失败消息重新投递
// POST /api/v1/reports/outbox/requeue
func (h *Handler) RequeueMessage(c *gin.Context) {
	var req struct {
		ID       int64  `json:"id" binding:"required"`
		Operator string `json:"operator"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reportService.RequeueMessage(c.Request.Context(), req.ID, req.Operator); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, nil)
}
