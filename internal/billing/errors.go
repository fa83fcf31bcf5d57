package billing

import "fmt"

// Error 计费引擎的业务错误
// 所有错误都是前置条件校验失败，返回时状态未被修改
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func newError(code int, kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// 计时错误码 (2000-2099)
var (
	ErrAlreadyActive = newError(2001, "already_active", "计时已开始")
	ErrNotActive     = newError(2002, "not_active", "计时未开始")
	ErrAlreadyPaused = newError(2003, "already_paused", "计时已暂停")
	ErrNotPaused     = newError(2004, "not_paused", "计时未暂停")
)

// 服务错误码 (2100-2199)
var (
	ErrAlreadyRunning = newError(2101, "already_running", "服务已在运行中")
	ErrNotRunning     = newError(2102, "not_running", "服务未在运行中")
	ErrUnknownService = newError(2103, "unknown_service", "未知的服务类型")
)

// 房间与购物车错误码 (2200-2299)
var (
	ErrInsufficientStock = newError(2201, "insufficient_stock", "库存不足")
	ErrCartItemNotFound  = newError(2202, "cart_item_not_found", "购物车中没有该商品")
	ErrRoomOccupied      = newError(2203, "room_occupied", "房间正在使用中")
	ErrInvalidAmount     = newError(2204, "invalid_amount", "金额或数量无效")
)

// 借款错误码 (2300-2399)
var (
	ErrLoanNotFound     = newError(2301, "loan_not_found", "未找到该客户的借款记录")
	ErrRepayExceedsLoan = newError(2302, "repay_exceeds_loan", "还款金额超过欠款金额")
)

// 费率与结算错误码 (2400-2499)
var (
	ErrInvalidRate     = newError(2401, "invalid_rate", "费率或时长配置无效")
	ErrPaymentMismatch = newError(2402, "payment_mismatch", "付款总计与实收金额不匹配")
	ErrZeroPayment     = newError(2403, "zero_payment", "实收金额必须大于0")
)
