package handler

import (
	"teahouse/internal/billing"
	"teahouse/internal/service"
	"teahouse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CheckoutRequest 结账请求，金额单位为元
type CheckoutRequest struct {
	RoomID   string          `json:"room_id" binding:"required"`
	Operator string          `json:"operator"`
	Cash     decimal.Decimal `json:"cash"`
	Wechat   decimal.Decimal `json:"wechat"`
	Alipay   decimal.Decimal `json:"alipay"`
	Card     decimal.Decimal `json:"card"`
	Actual   decimal.Decimal `json:"actual"`
}

// Checkout 结账
// POST /api/v1/checkout/execute
//
// 各支付方式合计必须等于实收（误差 0.01 以内），实收可以低于应收，差额记为优惠。
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := h.checkoutService.Checkout(c.Request.Context(), &service.CheckoutRequest{
		RoomID:   req.RoomID,
		Operator: req.Operator,
		Payment: billing.PaymentBreakdown{
			Cash:   req.Cash,
			Wechat: req.Wechat,
			Alipay: req.Alipay,
			Card:   req.Card,
		},
		Actual: req.Actual,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, txn)
}

// GetTransaction 查询结账流水
// GET /api/v1/checkout/detail?transaction_no=xxx
func (h *Handler) GetTransaction(c *gin.Context) {
	no := c.Query("transaction_no")
	if no == "" {
		response.ParamError(c, "transaction_no 参数不能为空")
		return
	}
	txn, err := h.checkoutService.GetTransaction(c.Request.Context(), no)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, txn)
}
