package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle(t *testing.T) {
	rates := newTestRates()
	t0 := at(10, 0)

	t.Run("支付合计与实收不一致", func(t *testing.T) {
		r := openRoom("大厅1", RoomKindHall, t0)
		_, err := Settle(r, rates, t0.Add(time.Hour), SettleRequest{
			Payment: PaymentBreakdown{Cash: dec("30"), Wechat: dec("20")},
			Actual:  dec("60"),
		})
		assert.ErrorIs(t, err, ErrPaymentMismatch)
		assert.True(t, r.Occupied())
	})

	t.Run("误差内视为一致", func(t *testing.T) {
		r := openRoom("大厅1", RoomKindHall, t0)
		txn, err := Settle(r, rates, t0.Add(time.Hour), SettleRequest{
			Payment: PaymentBreakdown{Cash: dec("49.995")},
			Actual:  dec("50"),
		})
		require.NoError(t, err)
		assert.True(t, txn.Discount.IsZero())
	})

	t.Run("实收为0", func(t *testing.T) {
		r := openRoom("大厅1", RoomKindHall, t0)
		_, err := Settle(r, rates, t0.Add(time.Hour), SettleRequest{Actual: decimal.Zero})
		assert.ErrorIs(t, err, ErrZeroPayment)
		assert.True(t, r.Occupied())
	})

	t.Run("实收为负", func(t *testing.T) {
		r := openRoom("大厅1", RoomKindHall, t0)
		_, err := Settle(r, rates, t0.Add(time.Hour), SettleRequest{
			Payment: PaymentBreakdown{Cash: dec("-5")},
			Actual:  dec("-5"),
		})
		assert.ErrorIs(t, err, ErrZeroPayment)
		assert.True(t, r.Occupied())
	})

	t.Run("负数金额", func(t *testing.T) {
		r := openRoom("大厅1", RoomKindHall, t0)
		_, err := Settle(r, rates, t0.Add(time.Hour), SettleRequest{
			Payment: PaymentBreakdown{Cash: dec("70"), Card: dec("-20")},
			Actual:  dec("50"),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("空闲房间不能结账", func(t *testing.T) {
		r := NewRoom("大厅1", RoomKindHall)
		_, err := Settle(r, rates, t0, SettleRequest{Payment: PaymentBreakdown{Cash: dec("50")}, Actual: dec("50")})
		assert.ErrorIs(t, err, ErrNotActive)
	})

	t.Run("结账成功生成快照并清空房间", func(t *testing.T) {
		r := openRoom("小雅801", RoomKindPrivate, t0)
		require.NoError(t, r.AddToCart(CartItem{ProductID: 1, Name: "龙井", UnitPrice: dec("15"), Quantity: 2}, 10))
		require.NoError(t, r.StartService(ServiceAC, t0))
		require.NoError(t, r.AddLoan("张三", dec("100")))
		now := t0.Add(5 * time.Hour)

		txn, err := Settle(r, rates, now, SettleRequest{
			TransactionNo: "TXN1",
			Operator:      "小王",
			Payment:       PaymentBreakdown{Cash: dec("100"), Wechat: dec("50"), Alipay: dec("20")},
			Actual:        dec("170"),
		})
		require.NoError(t, err)

		// 房费 2 场 × 60 + 商品 30 + 空调 5 小时 × 5
		assert.Equal(t, "120", txn.RoomFee.String())
		assert.Equal(t, "30", txn.ProductFee.String())
		assert.Equal(t, "25", txn.ServiceFee.String())
		assert.Equal(t, "175", txn.Receivable.String())
		assert.Equal(t, "170", txn.Actual.String())
		assert.Equal(t, "5", txn.Discount.String())
		assert.Equal(t, "100", txn.LoanTotal.String())
		require.Len(t, txn.Loans, 1)
		require.Len(t, txn.Products, 1)
		assert.Equal(t, "小王", txn.Operator)
		assert.Equal(t, t0, txn.StartTime)
		assert.Equal(t, now, txn.EndTime)
		assert.Equal(t, "2024-03-01", txn.BusinessDate)

		assert.Equal(t, RoomIdle, r.Status)
		assert.Empty(t, r.Cart)
		assert.Empty(t, r.Loans)
		assert.Empty(t, r.Services)
		assert.False(t, r.Occupancy.Started())
	})

	t.Run("多收时折扣为负", func(t *testing.T) {
		r := openRoom("大厅1", RoomKindHall, t0)
		txn, err := Settle(r, rates, t0.Add(time.Hour), SettleRequest{
			Payment: PaymentBreakdown{Card: dec("60")},
			Actual:  dec("60"),
		})
		require.NoError(t, err)
		assert.Equal(t, "-10", txn.Discount.String())
	})
}

func TestPaymentBreakdownTotal(t *testing.T) {
	p := PaymentBreakdown{Cash: dec("1.1"), Wechat: dec("2.2"), Alipay: dec("3.3"), Card: dec("4.4")}
	assert.Equal(t, "11", p.Total().String())
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	r := openRoom("大厅1", RoomKindHall, at(23, 0))
	require.NoError(t, r.AddLoan("张三", dec("12.5")))
	txn, err := Settle(r, newTestRates(), at(23, 0).Add(2*time.Hour), SettleRequest{
		TransactionNo: "TXN2",
		Payment:       PaymentBreakdown{Wechat: dec("60")},
		Actual:        dec("60"),
	})
	require.NoError(t, err)

	data, err := json.Marshal(txn)
	require.NoError(t, err)
	var loaded Transaction
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.Equal(t, txn.TransactionNo, loaded.TransactionNo)
	assert.Equal(t, "60", loaded.Receivable.String())
	assert.Equal(t, int64(1), loaded.OvernightHours)
	assert.Equal(t, txn.ActiveDuration, loaded.ActiveDuration)
	assert.True(t, txn.StartTime.Equal(loaded.StartTime))
	require.Len(t, loaded.Loans, 1)
	assert.Equal(t, "12.5", loaded.Loans[0].Amount.String())
}
