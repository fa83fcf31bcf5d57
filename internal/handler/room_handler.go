package handler

import (
	"context"

	"teahouse/internal/billing"
	"teahouse/internal/service"
	"teahouse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RoomRequest 只带房间号的操作
type RoomRequest struct {
	RoomID string `json:"room_id" binding:"required"`
}

// ListRooms 所有房间及实时账单
// GET /api/v1/rooms/list
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, rooms)
}

// GetRoom 房间详情
// GET /api/v1/rooms/detail?room_id=xxx
func (h *Handler) GetRoom(c *gin.Context) {
	roomID := c.Query("room_id")
	if roomID == "" {
		response.ParamError(c, "room_id 参数不能为空")
		return
	}
	detail, err := h.roomService.Detail(c.Request.Context(), roomID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, detail)
}

// GetBill 实时账单
// GET /api/v1/rooms/bill?room_id=xxx
func (h *Handler) GetBill(c *gin.Context) {
	roomID := c.Query("room_id")
	if roomID == "" {
		response.ParamError(c, "room_id 参数不能为空")
		return
	}
	bill, err := h.roomService.Bill(c.Request.Context(), roomID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, bill)
}

type roomAction func(ctx context.Context, roomID string) (*billing.Room, error)

// roomActionHandler 开房、预留、暂停等只需要房间号的操作
func (h *Handler) roomActionHandler(action roomAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RoomRequest
		if !bindJSON(c, &req) {
			return
		}
		room, err := action(c.Request.Context(), req.RoomID)
		if err != nil {
			renderError(c, err)
			return
		}
		response.Success(c, room)
	}
}

// OpenRoom POST /api/v1/rooms/open
func (h *Handler) OpenRoom(c *gin.Context) { h.roomActionHandler(h.roomService.Open)(c) }

// ReserveRoom POST /api/v1/rooms/reserve
func (h *Handler) ReserveRoom(c *gin.Context) { h.roomActionHandler(h.roomService.Reserve)(c) }

// CancelReservation POST /api/v1/rooms/cancel-reserve
func (h *Handler) CancelReservation(c *gin.Context) {
	h.roomActionHandler(h.roomService.CancelReservation)(c)
}

// PauseRoom POST /api/v1/rooms/pause
func (h *Handler) PauseRoom(c *gin.Context) { h.roomActionHandler(h.roomService.Pause)(c) }

// ResumeRoom POST /api/v1/rooms/resume
func (h *Handler) ResumeRoom(c *gin.Context) { h.roomActionHandler(h.roomService.Resume)(c) }

// RoundingRequest 选择取整方向
type RoundingRequest struct {
	RoomID   string `json:"room_id" binding:"required"`
	Rounding string `json:"rounding" binding:"required,oneof=up down"`
}

// ChooseRounding 结账前选择按向上还是向下取整的场次
// POST /api/v1/rooms/rounding
func (h *Handler) ChooseRounding(c *gin.Context) {
	var req RoundingRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.ChooseRounding(c.Request.Context(), req.RoomID, billing.RoundingMode(req.Rounding))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, room)
}

// ============================================================
// 空调 / 烤火
// ============================================================

// ServiceRequest 服务操作请求
type ServiceRequest struct {
	RoomID      string `json:"room_id" binding:"required"`
	ServiceType string `json:"service_type" binding:"required"` // ac | heater
}

func (h *Handler) serviceHandler(action service.ServiceAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ServiceRequest
		if !bindJSON(c, &req) {
			return
		}
		room, err := h.roomService.ControlService(c.Request.Context(), req.RoomID, billing.ServiceKind(req.ServiceType), action)
		if err != nil {
			renderError(c, err)
			return
		}
		response.Success(c, room)
	}
}

// ============================================================
// 购物车
// ============================================================

// CartAddRequest 点单
type CartAddRequest struct {
	RoomID    string `json:"room_id" binding:"required"`
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AddToCart POST /api/v1/cart/add
func (h *Handler) AddToCart(c *gin.Context) {
	var req CartAddRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.AddToCart(c.Request.Context(), req.RoomID, req.ProductID, req.Quantity)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, room)
}

// CartRemoveRequest 删除购物车行
type CartRemoveRequest struct {
	RoomID    string `json:"room_id" binding:"required"`
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
}

// RemoveFromCart POST /api/v1/cart/remove
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var req CartRemoveRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.RemoveFromCart(c.Request.Context(), req.RoomID, req.ProductID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, room)
}

// ============================================================
// 借款
// ============================================================

// LoanRequest 借款、还款、删除借款
type LoanRequest struct {
	RoomID   string          `json:"room_id" binding:"required"`
	Customer string          `json:"customer" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// AddLoan POST /api/v1/loan/add
func (h *Handler) AddLoan(c *gin.Context) {
	var req LoanRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.AddLoan(c.Request.Context(), req.RoomID, req.Customer, req.Amount)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, room)
}

// RepayLoan POST /api/v1/loan/repay
func (h *Handler) RepayLoan(c *gin.Context) {
	var req LoanRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.RepayLoan(c.Request.Context(), req.RoomID, req.Customer, req.Amount)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, room)
}

// DeleteLoan POST /api/v1/loan/delete
func (h *Handler) DeleteLoan(c *gin.Context) {
	var req LoanRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.DeleteLoan(c.Request.Context(), req.RoomID, req.Customer)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, room)
}
