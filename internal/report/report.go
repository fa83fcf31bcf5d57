package report

import (
	"sort"
	"time"

	"teahouse/internal/billing"

	"github.com/shopspring/decimal"
)

// Filter 报表筛选条件，零值表示不限
// 按结账时间筛选，区间为 [From, To)
type Filter struct {
	From     time.Time
	To       time.Time
	Operator string
}

func (f Filter) match(txn *billing.Transaction) bool {
	if !f.From.IsZero() && txn.EndTime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !txn.EndTime.Before(f.To) {
		return false
	}
	if f.Operator != "" && txn.Operator != f.Operator {
		return false
	}
	return true
}

// RoomRow 每笔结账一行
type RoomRow struct {
	TransactionNo string                   `json:"transaction_no"`
	RoomID        string                   `json:"room_id"`
	Operator      string                   `json:"operator"`
	StartTime     time.Time                `json:"start_time"`
	EndTime       time.Time                `json:"end_time"`
	RoomFee       decimal.Decimal          `json:"room_fee"`
	ServiceFee    decimal.Decimal          `json:"service_fee"` // 不含过夜费
	OvernightFee  decimal.Decimal          `json:"overnight_fee"`
	ProductFee    decimal.Decimal          `json:"product_fee"`
	LoanTotal     decimal.Decimal          `json:"loan_total"`
	Receivable    decimal.Decimal          `json:"receivable"`
	Actual        decimal.Decimal          `json:"actual"`
	Discount      decimal.Decimal          `json:"discount"`
	Payment       billing.PaymentBreakdown `json:"payment"`
}

// ProductSale 商品销售汇总
type ProductSale struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// Totals 合计
type Totals struct {
	Count        int                      `json:"count"`
	RoomFee      decimal.Decimal          `json:"room_fee"`
	ServiceFee   decimal.Decimal          `json:"service_fee"`
	OvernightFee decimal.Decimal          `json:"overnight_fee"`
	ProductFee   decimal.Decimal          `json:"product_fee"`
	LoanTotal    decimal.Decimal          `json:"loan_total"`
	Receivable   decimal.Decimal          `json:"receivable"`
	Discount     decimal.Decimal          `json:"discount"`
	Income       decimal.Decimal          `json:"income"` // 实收合计
	Payment      billing.PaymentBreakdown `json:"payment"`
}

// Summary 报表
type Summary struct {
	Rooms    []RoomRow     `json:"rooms"`
	Products []ProductSale `json:"products"`
	Totals   Totals        `json:"totals"`
}

// Summarize 汇总交易记录，只读不修改
func Summarize(txns []billing.Transaction, f Filter) *Summary {
	s := &Summary{
		Rooms:    []RoomRow{},
		Products: []ProductSale{},
		Totals:   zeroTotals(),
	}
	products := make(map[string]*ProductSale)

	for i := range txns {
		txn := &txns[i]
		if !f.match(txn) {
			continue
		}
		serviceFee := txn.ACFee.Add(txn.HeaterFee)
		s.Rooms = append(s.Rooms, RoomRow{
			TransactionNo: txn.TransactionNo,
			RoomID:        txn.RoomID,
			Operator:      txn.Operator,
			StartTime:     txn.StartTime,
			EndTime:       txn.EndTime,
			RoomFee:       txn.RoomFee,
			ServiceFee:    serviceFee,
			OvernightFee:  txn.OvernightFee,
			ProductFee:    txn.ProductFee,
			LoanTotal:     txn.LoanTotal,
			Receivable:    txn.Receivable,
			Actual:        txn.Actual,
			Discount:      txn.Discount,
			Payment:       txn.Payment,
		})

		t := &s.Totals
		t.Count++
		t.RoomFee = t.RoomFee.Add(txn.RoomFee)
		t.ServiceFee = t.ServiceFee.Add(serviceFee)
		t.OvernightFee = t.OvernightFee.Add(txn.OvernightFee)
		t.ProductFee = t.ProductFee.Add(txn.ProductFee)
		t.LoanTotal = t.LoanTotal.Add(txn.LoanTotal)
		t.Receivable = t.Receivable.Add(txn.Receivable)
		t.Discount = t.Discount.Add(txn.Discount)
		t.Income = t.Income.Add(txn.Actual)
		t.Payment = billing.PaymentBreakdown{
			Cash:   t.Payment.Cash.Add(txn.Payment.Cash),
			Wechat: t.Payment.Wechat.Add(txn.Payment.Wechat),
			Alipay: t.Payment.Alipay.Add(txn.Payment.Alipay),
			Card:   t.Payment.Card.Add(txn.Payment.Card),
		}

		for _, item := range txn.Products {
			sale, ok := products[item.Name]
			if !ok {
				sale = &ProductSale{Name: item.Name, Amount: decimal.Zero}
				products[item.Name] = sale
			}
			sale.Quantity += item.Quantity
			sale.Amount = sale.Amount.Add(item.Subtotal())
		}
	}

	for _, sale := range products {
		s.Products = append(s.Products, *sale)
	}
	sort.Slice(s.Products, func(i, j int) bool {
		return s.Products[i].Name < s.Products[j].Name
	})
	sort.SliceStable(s.Rooms, func(i, j int) bool {
		return s.Rooms[i].EndTime.Before(s.Rooms[j].EndTime)
	})
	return s
}

// Operators 出现过的操作员，去重后排序
func Operators(txns []billing.Transaction) []string {
	seen := make(map[string]struct{})
	ops := []string{}
	for i := range txns {
		op := txns[i].Operator
		if op == "" {
			continue
		}
		if _, ok := seen[op]; ok {
			continue
		}
		seen[op] = struct{}{}
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// DayRange 某天 [00:00, 次日 00:00)，按 day 所在时区
func DayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func zeroTotals() Totals {
	z := decimal.Zero
	return Totals{
		RoomFee: z, ServiceFee: z, OvernightFee: z, ProductFee: z,
		LoanTotal: z, Receivable: z, Discount: z, Income: z,
		Payment: billing.PaymentBreakdown{Cash: z, Wechat: z, Alipay: z, Card: z},
	}
}
