package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTolerance 支付方式合计与实收之间允许的误差
var PaymentTolerance = decimal.NewFromFloat(0.01)

// PaymentBreakdown 各支付方式金额
type PaymentBreakdown struct {
	Cash   decimal.Decimal `json:"cash"`
	Wechat decimal.Decimal `json:"wechat"`
	Alipay decimal.Decimal `json:"alipay"`
	Card   decimal.Decimal `json:"card"`
}

// Total 合计
func (p PaymentBreakdown) Total() decimal.Decimal {
	return p.Cash.Add(p.Wechat).Add(p.Alipay).Add(p.Card)
}

func (p PaymentBreakdown) hasNegative() bool {
	return p.Cash.IsNegative() || p.Wechat.IsNegative() || p.Alipay.IsNegative() || p.Card.IsNegative()
}

// SettleRequest 结账请求
type SettleRequest struct {
	TransactionNo string
	Operator      string
	Payment       PaymentBreakdown
	Actual        decimal.Decimal
}

// Transaction 结账快照，创建后不再修改
type Transaction struct {
	TransactionNo  string           `json:"transaction_no"`
	RoomID         string           `json:"room_id"`
	RoomKind       RoomKind         `json:"room_kind"`
	Operator       string           `json:"operator"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	BusinessDate   string           `json:"business_date"`
	ActiveDuration time.Duration    `json:"active_duration"`
	PausedDuration time.Duration    `json:"paused_duration"`
	Sessions       int64            `json:"sessions"`
	Rounding       RoundingMode     `json:"rounding"`
	RoomFee        decimal.Decimal  `json:"room_fee"`
	ProductFee     decimal.Decimal  `json:"product_fee"`
	ACFee          decimal.Decimal  `json:"ac_fee"`
	HeaterFee      decimal.Decimal  `json:"heater_fee"`
	OvernightHours int64            `json:"overnight_hours"`
	OvernightFee   decimal.Decimal  `json:"overnight_fee"`
	ServiceFee     decimal.Decimal  `json:"service_fee"` // 含过夜费
	Products       []CartItem       `json:"products"`
	LoanTotal      decimal.Decimal  `json:"loan_total"`
	Loans          []LoanDetail     `json:"loans"`
	Payment        PaymentBreakdown `json:"payment"`
	Receivable     decimal.Decimal  `json:"receivable"`
	Actual         decimal.Decimal  `json:"actual"`
	Discount       decimal.Decimal  `json:"discount"` // 应收 - 实收，可能为负
}

// Settle 结账
//
// 校验顺序：房间在使用中 → 实收大于 0 → 各支付方式非负 → 支付合计与实收一致。
// 成功后房间回到空闲，返回交易快照；失败时房间不变。
func Settle(room *Room, rates *RateTable, now time.Time, req SettleRequest) (*Transaction, error) {
	if !room.Occupied() {
		return nil, ErrNotActive
	}
	if !req.Actual.IsPositive() {
		return nil, ErrZeroPayment
	}
	if req.Payment.hasNegative() {
		return nil, fmt.Errorf("%w: 支付金额不能为负", ErrInvalidAmount)
	}
	paid := req.Payment.Total()
	if paid.Sub(req.Actual).Abs().GreaterThan(PaymentTolerance) {
		return nil, fmt.Errorf("%w: 支付合计%s 实收%s", ErrPaymentMismatch, paid, req.Actual)
	}

	bill, err := ComputeReceivable(room, rates, now)
	if err != nil {
		return nil, err
	}

	products := make([]CartItem, len(room.Cart))
	copy(products, room.Cart)
	txn := &Transaction{
		TransactionNo:  req.TransactionNo,
		RoomID:         room.ID,
		RoomKind:       room.Kind,
		Operator:       req.Operator,
		StartTime:      *room.Occupancy.StartTime,
		EndTime:        now,
		BusinessDate:   now.Format("2006-01-02"),
		ActiveDuration: bill.Room.ActiveDuration,
		PausedDuration: bill.Room.PausedDuration,
		Sessions:       bill.Room.Sessions,
		Rounding:       bill.Room.Rounding,
		RoomFee:        bill.Room.Fee,
		ProductFee:     bill.ProductFee,
		ACFee:          bill.ACFee,
		HeaterFee:      bill.HeaterFee,
		OvernightHours: bill.OvernightHours,
		OvernightFee:   bill.OvernightFee,
		ServiceFee:     bill.ServiceFee,
		Products:       products,
		LoanTotal:      bill.LoanTotal,
		Loans:          bill.Loans,
		Payment:        req.Payment,
		Receivable:     bill.Receivable,
		Actual:         req.Actual,
		Discount:       bill.Receivable.Sub(req.Actual),
	}

	room.reset()
	return txn, nil
}
