package handler

import (
	"teahouse/internal/service"
	"teahouse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetRates 当前费率
// GET /api/v1/rates
func (h *Handler) GetRates(c *gin.Context) {
	view, err := h.rateService.View(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, view)
}

// HallRateRequest 大厅费率
type HallRateRequest struct {
	Rate     decimal.Decimal `json:"rate"`
	Operator string          `json:"operator"`
}

// UpdateHallRate POST /api/v1/rates/hall
func (h *Handler) UpdateHallRate(c *gin.Context) {
	var req HallRateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.rateService.UpdateHallRate(c.Request.Context(), req.Rate, req.Operator); err != nil {
		renderError(c, err)
		return
	}
	h.GetRates(c)
}

// PrivateRateRequest 包房费率
type PrivateRateRequest struct {
	RoomID string          `json:"room_id" binding:"required"`
	Rate   decimal.Decimal `json:"rate"`
}

// UpdatePrivateRate POST /api/v1/rates/private
// 包房使用中时拒绝修改
func (h *Handler) UpdatePrivateRate(c *gin.Context) {
	var req PrivateRateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.rateService.UpdatePrivateRate(c.Request.Context(), req.RoomID, req.Rate); err != nil {
		renderError(c, err)
		return
	}
	h.GetRates(c)
}

// SessionRequest 一场时长
type SessionRequest struct {
	Value    int    `json:"value" binding:"required,gt=0"`
	Unit     string `json:"unit" binding:"required,oneof=seconds minutes hours"`
	Operator string `json:"operator"`
}

// UpdateSessionLength POST /api/v1/rates/session
func (h *Handler) UpdateSessionLength(c *gin.Context) {
	var req SessionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.rateService.UpdateSessionLength(c.Request.Context(), req.Value, req.Unit, req.Operator); err != nil {
		renderError(c, err)
		return
	}
	h.GetRates(c)
}

// OtherRatesRequest 空调、烤火、过夜费率，未传的字段不修改
type OtherRatesRequest struct {
	ACRate        *decimal.Decimal `json:"ac_rate"`
	HeaterRate    *decimal.Decimal `json:"heater_rate"`
	OvernightRate *decimal.Decimal `json:"overnight_rate"`
	Operator      string           `json:"operator"`
}

// UpdateOtherRates POST /api/v1/rates/other
func (h *Handler) UpdateOtherRates(c *gin.Context) {
	var req OtherRatesRequest
	if !bindJSON(c, &req) {
		return
	}
	rates := service.OtherRates{
		ACRate:        req.ACRate,
		HeaterRate:    req.HeaterRate,
		OvernightRate: req.OvernightRate,
	}
	if err := h.rateService.UpdateOtherRates(c.Request.Context(), rates, req.Operator); err != nil {
		renderError(c, err)
		return
	}
	h.GetRates(c)
}
