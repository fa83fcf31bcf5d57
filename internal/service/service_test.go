package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"teahouse/internal/billing"
	"teahouse/internal/clock"
	"teahouse/internal/config"
	"teahouse/internal/infrastructure/cache"
	"teahouse/internal/infrastructure/database"
	"teahouse/internal/model"
	"teahouse/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var cst = time.FixedZone("CST", 8*3600)

type testEnv struct {
	db       *gorm.DB
	clock    *clock.FakeClock
	rates    *RateService
	rooms    *RoomService
	checkout *CheckoutService
	products *ProductService
	reports  *ReportService
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	defaults := &billing.RateTable{
		HallRate: dec("50"),
		PrivateRoomRates: map[string]decimal.Decimal{
			"大雅01": dec("80"),
		},
		ACRate:        dec("5"),
		HeaterRate:    dec("3"),
		OvernightRate: dec("10"),
		SessionLength: 4 * time.Hour,
	}

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 10, 0, 0, 0, cst))
	roomRepo := repository.NewRoomRepository(db)
	locker := NewRedisRoomLocker(client, 5*time.Second)
	rates := NewRateService(db, roomRepo, locker, cache.NewRateCache(client, time.Minute), defaults, nil)
	rooms := NewRoomService(db, roomRepo, rates, locker, clk, nil)

	require.NoError(t, rooms.EnsureRooms(context.Background(), []config.RoomConfig{
		{ID: "大厅01", Kind: "hall"},
		{ID: "大雅01", Kind: "private"},
		{ID: "小雅802", Kind: "private"},
	}))

	return &testEnv{
		db:       db,
		clock:    clk,
		rates:    rates,
		rooms:    rooms,
		checkout: NewCheckoutService(db, rooms, "teahouse.checkout"),
		products: NewProductService(db),
		reports:  NewReportService(db, "teahouse.report.daily"),
	}
}

func (e *testEnv) createProduct(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), &ProductRequest{Name: name, Price: dec(price), Stock: stock})
	require.NoError(t, err)
	return p
}

func (e *testEnv) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := repository.NewProductRepository(e.db).GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	return p.Stock
}

func TestRoomService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	t.Run("初始化房间幂等", func(t *testing.T) {
		require.NoError(t, env.rooms.EnsureRooms(ctx, []config.RoomConfig{{ID: "大厅01", Kind: "hall"}}))
		list, err := env.rooms.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("未知房间类型", func(t *testing.T) {
		err := env.rooms.EnsureRooms(ctx, []config.RoomConfig{{ID: "X", Kind: "vip"}})
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("开房后计费", func(t *testing.T) {
		room, err := env.rooms.Open(ctx, "大厅01")
		require.NoError(t, err)
		assert.Equal(t, billing.RoomOccupied, room.Status)

		env.clock.Advance(90 * time.Minute)
		bill, err := env.rooms.Bill(ctx, "大厅01")
		require.NoError(t, err)
		assert.Equal(t, int64(1), bill.Room.Sessions)
		assert.True(t, bill.Receivable.Equal(dec("50")))
	})

	t.Run("重复开房失败且不改状态", func(t *testing.T) {
		before, err := repository.NewRoomRepository(env.db).GetByRoomID(ctx, "大厅01")
		require.NoError(t, err)

		_, err = env.rooms.Open(ctx, "大厅01")
		assert.ErrorIs(t, err, billing.ErrAlreadyActive)

		after, err := repository.NewRoomRepository(env.db).GetByRoomID(ctx, "大厅01")
		require.NoError(t, err)
		assert.Equal(t, before.Version, after.Version)
		assert.Equal(t, before.State, after.State)
	})

	t.Run("暂停期间不计时", func(t *testing.T) {
		_, err := env.rooms.Pause(ctx, "大厅01")
		require.NoError(t, err)
		env.clock.Advance(10 * time.Hour)
		_, err = env.rooms.Resume(ctx, "大厅01")
		require.NoError(t, err)

		bill, err := env.rooms.Bill(ctx, "大厅01")
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, bill.Room.ActiveDuration)
		assert.Equal(t, 10*time.Hour, bill.Room.PausedDuration)
	})

	t.Run("空闲房间不能暂停", func(t *testing.T) {
		_, err := env.rooms.Pause(ctx, "大雅01")
		assert.ErrorIs(t, err, billing.ErrNotActive)
	})

	t.Run("预留与取消", func(t *testing.T) {
		room, err := env.rooms.Reserve(ctx, "大雅01")
		require.NoError(t, err)
		assert.Equal(t, billing.RoomReserved, room.Status)

		room, err = env.rooms.CancelReservation(ctx, "大雅01")
		require.NoError(t, err)
		assert.Equal(t, billing.RoomIdle, room.Status)

		_, err = env.rooms.Reserve(ctx, "大厅01")
		assert.ErrorIs(t, err, billing.ErrRoomOccupied)
	})

	t.Run("没有费率的包房不能开", func(t *testing.T) {
		_, err := env.rooms.Open(ctx, "小雅802")
		assert.ErrorIs(t, err, billing.ErrInvalidRate)
	})

	t.Run("房间不存在", func(t *testing.T) {
		_, err := env.rooms.Open(ctx, "不存在")
		assert.ErrorIs(t, err, repository.ErrRoomNotFound)
	})

	t.Run("选择向下取整", func(t *testing.T) {
		room, err := env.rooms.ChooseRounding(ctx, "大厅01", billing.RoundDown)
		require.NoError(t, err)
		assert.Equal(t, billing.RoundDown, room.Rounding)
	})
}

func TestRoomService_Services(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	_, err := env.rooms.Open(ctx, "大雅01")
	require.NoError(t, err)

	t.Run("空调开关计费", func(t *testing.T) {
		_, err := env.rooms.ControlService(ctx, "大雅01", billing.ServiceAC, ServiceStart)
		require.NoError(t, err)
		env.clock.Advance(70 * time.Minute)
		_, err = env.rooms.ControlService(ctx, "大雅01", billing.ServiceAC, ServiceStop)
		require.NoError(t, err)

		bill, err := env.rooms.Bill(ctx, "大雅01")
		require.NoError(t, err)
		assert.Equal(t, int64(2), bill.ACHours)
		assert.True(t, bill.ACFee.Equal(dec("10")))
	})

	t.Run("重复开启", func(t *testing.T) {
		_, err := env.rooms.ControlService(ctx, "大雅01", billing.ServiceHeater, ServiceStart)
		require.NoError(t, err)
		_, err = env.rooms.ControlService(ctx, "大雅01", billing.ServiceHeater, ServiceStart)
		assert.ErrorIs(t, err, billing.ErrAlreadyRunning)
	})

	t.Run("未知操作", func(t *testing.T) {
		_, err := env.rooms.ControlService(ctx, "大雅01", billing.ServiceHeater, "boost")
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("未知服务", func(t *testing.T) {
		_, err := env.rooms.ControlService(ctx, "大雅01", "fan", ServiceStart)
		assert.ErrorIs(t, err, billing.ErrUnknownService)
	})
}

func TestRoomService_CartAndLoans(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	tea := env.createProduct(t, "龙井", "30", 5)

	t.Run("未开房不能点单", func(t *testing.T) {
		_, err := env.rooms.AddToCart(ctx, "大厅01", tea.ID, 1)
		assert.ErrorIs(t, err, billing.ErrNotActive)
		assert.Equal(t, 5, env.stock(t, tea.ID))
	})

	_, err := env.rooms.Open(ctx, "大厅01")
	require.NoError(t, err)

	t.Run("点单扣库存", func(t *testing.T) {
		room, err := env.rooms.AddToCart(ctx, "大厅01", tea.ID, 2)
		require.NoError(t, err)
		require.Len(t, room.Cart, 1)
		assert.Equal(t, 2, room.Cart[0].Quantity)
		assert.Equal(t, 3, env.stock(t, tea.ID))
	})

	t.Run("库存不足不改购物车", func(t *testing.T) {
		_, err := env.rooms.AddToCart(ctx, "大厅01", tea.ID, 4)
		assert.ErrorIs(t, err, billing.ErrInsufficientStock)
		assert.Equal(t, 3, env.stock(t, tea.ID))

		detail, err := env.rooms.Detail(ctx, "大厅01")
		require.NoError(t, err)
		assert.Equal(t, 2, detail.Room.Cart[0].Quantity)
	})

	t.Run("商品不存在", func(t *testing.T) {
		_, err := env.rooms.AddToCart(ctx, "大厅01", 999, 1)
		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})

	t.Run("删除商品恢复库存", func(t *testing.T) {
		room, err := env.rooms.RemoveFromCart(ctx, "大厅01", tea.ID)
		require.NoError(t, err)
		assert.Empty(t, room.Cart)
		assert.Equal(t, 5, env.stock(t, tea.ID))

		_, err = env.rooms.RemoveFromCart(ctx, "大厅01", tea.ID)
		assert.ErrorIs(t, err, billing.ErrCartItemNotFound)
	})

	t.Run("商品下架后删除购物车行", func(t *testing.T) {
		snack := env.createProduct(t, "瓜子", "10", 3)
		_, err := env.rooms.AddToCart(ctx, "大厅01", snack.ID, 1)
		require.NoError(t, err)
		require.NoError(t, env.products.Delete(ctx, snack.ID))

		room, err := env.rooms.RemoveFromCart(ctx, "大厅01", snack.ID)
		require.NoError(t, err)
		assert.Empty(t, room.Cart)
	})

	t.Run("借款与还款", func(t *testing.T) {
		_, err := env.rooms.AddLoan(ctx, "大厅01", "张三", dec("100"))
		require.NoError(t, err)
		_, err = env.rooms.AddLoan(ctx, "大厅01", "张三", dec("50"))
		require.NoError(t, err)

		_, err = env.rooms.RepayLoan(ctx, "大厅01", "张三", dec("200"))
		assert.ErrorIs(t, err, billing.ErrRepayExceedsLoan)

		room, err := env.rooms.RepayLoan(ctx, "大厅01", "张三", dec("30"))
		require.NoError(t, err)
		assert.True(t, room.LoanTotal().Equal(dec("120")))

		bill, err := env.rooms.Bill(ctx, "大厅01")
		require.NoError(t, err)
		assert.True(t, bill.LoanTotal.Equal(dec("120")))
		assert.True(t, bill.Receivable.Equal(dec("50")), "借款不计入应收")

		room, err = env.rooms.DeleteLoan(ctx, "大厅01", "张三")
		require.NoError(t, err)
		assert.True(t, room.LoanTotal().IsZero())

		_, err = env.rooms.DeleteLoan(ctx, "大厅01", "张三")
		assert.ErrorIs(t, err, billing.ErrLoanNotFound)
	})
}

func TestCheckoutService(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	tea := env.createProduct(t, "普洱", "25", 10)

	_, err := env.rooms.Open(ctx, "大雅01")
	require.NoError(t, err)
	_, err = env.rooms.AddToCart(ctx, "大雅01", tea.ID, 2)
	require.NoError(t, err)
	env.clock.Advance(5 * time.Hour)

	t.Run("支付合计不一致", func(t *testing.T) {
		_, err := env.checkout.Checkout(ctx, &CheckoutRequest{
			RoomID:   "大雅01",
			Operator: "小王",
			Payment:  billing.PaymentBreakdown{Cash: dec("100")},
			Actual:   dec("200"),
		})
		assert.ErrorIs(t, err, billing.ErrPaymentMismatch)

		detail, err := env.rooms.Detail(ctx, "大雅01")
		require.NoError(t, err)
		assert.Equal(t, billing.RoomOccupied, detail.Room.Status)
	})

	t.Run("实收为0", func(t *testing.T) {
		_, err := env.checkout.Checkout(ctx, &CheckoutRequest{RoomID: "大雅01", Operator: "小王"})
		assert.ErrorIs(t, err, billing.ErrZeroPayment)
	})

	t.Run("结账成功", func(t *testing.T) {
		// 5 小时按 2 场 × 80 + 商品 50 = 210，抹零收 200
		txn, err := env.checkout.Checkout(ctx, &CheckoutRequest{
			RoomID:   "大雅01",
			Operator: " 小王 ",
			Payment:  billing.PaymentBreakdown{Cash: dec("120"), Wechat: dec("80")},
			Actual:   dec("200"),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(txn.TransactionNo, "TXN20240301"))
		assert.Equal(t, "小王", txn.Operator)
		assert.True(t, txn.RoomFee.Equal(dec("160")))
		assert.True(t, txn.ProductFee.Equal(dec("50")))
		assert.True(t, txn.Receivable.Equal(dec("210")))
		assert.True(t, txn.Discount.Equal(dec("10")))

		detail, err := env.rooms.Detail(ctx, "大雅01")
		require.NoError(t, err)
		assert.Equal(t, billing.RoomIdle, detail.Room.Status)
		assert.Empty(t, detail.Room.Cart)

		saved, err := env.checkout.GetTransaction(ctx, txn.TransactionNo)
		require.NoError(t, err)
		assert.True(t, saved.Actual.Equal(dec("200")))
		require.Len(t, saved.Products, 1)
		assert.Equal(t, "普洱", saved.Products[0].Name)

		msgs, err := repository.NewOutboxRepository(env.db).GetPendingMessages(ctx, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "teahouse.checkout", msgs[0].Topic)
		assert.Equal(t, txn.TransactionNo, msgs[0].MessageKey)
	})

	t.Run("空闲房间不能结账", func(t *testing.T) {
		_, err := env.checkout.Checkout(ctx, &CheckoutRequest{
			RoomID:  "大雅01",
			Payment: billing.PaymentBreakdown{Cash: dec("10")},
			Actual:  dec("10"),
		})
		assert.ErrorIs(t, err, billing.ErrNotActive)
	})
}

func TestRateService(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	t.Run("首次读取写入默认费率", func(t *testing.T) {
		rates, err := env.rates.Current(ctx)
		require.NoError(t, err)
		assert.True(t, rates.HallRate.Equal(dec("50")))
		assert.Equal(t, 4*time.Hour, rates.SessionLength)
	})

	t.Run("修改后缓存失效", func(t *testing.T) {
		require.NoError(t, env.rates.UpdateHallRate(ctx, dec("60"), "admin"))
		rates, err := env.rates.Current(ctx)
		require.NoError(t, err)
		assert.True(t, rates.HallRate.Equal(dec("60")))
	})

	t.Run("修改一场时长", func(t *testing.T) {
		require.NoError(t, env.rates.UpdateSessionLength(ctx, 90, billing.UnitMinutes, "admin"))
		view, err := env.rates.View(ctx)
		require.NoError(t, err)
		assert.Equal(t, 90, view.SessionValue)
		assert.Equal(t, billing.UnitMinutes, view.SessionUnit)

		err = env.rates.UpdateSessionLength(ctx, 25, billing.UnitHours, "admin")
		assert.ErrorIs(t, err, billing.ErrInvalidRate)
	})

	t.Run("修改其他费率", func(t *testing.T) {
		overnight := dec("15")
		require.NoError(t, env.rates.UpdateOtherRates(ctx, OtherRates{OvernightRate: &overnight}, "admin"))
		rates, err := env.rates.Current(ctx)
		require.NoError(t, err)
		assert.True(t, rates.OvernightRate.Equal(dec("15")))
		assert.True(t, rates.ACRate.Equal(dec("5")))
	})

	t.Run("使用中的包房不能改费率", func(t *testing.T) {
		_, err := env.rooms.Open(ctx, "大雅01")
		require.NoError(t, err)
		err = env.rates.UpdatePrivateRate(ctx, "大雅01", dec("100"))
		assert.ErrorIs(t, err, billing.ErrRoomOccupied)
	})

	t.Run("房间被锁定时不能改费率", func(t *testing.T) {
		release, err := env.rooms.locker.Acquire(ctx, "小雅802")
		require.NoError(t, err)

		err = env.rates.UpdatePrivateRate(ctx, "小雅802", dec("70"))
		release()
		assert.ErrorIs(t, err, ErrSystemBusy)

		rates, err := env.rates.Current(ctx)
		require.NoError(t, err)
		_, ok := rates.PrivateRoomRates["小雅802"]
		assert.False(t, ok)
	})

	t.Run("新增包房费率", func(t *testing.T) {
		require.NoError(t, env.rates.UpdatePrivateRate(ctx, "小雅802", dec("70")))
		rates, err := env.rates.Current(ctx)
		require.NoError(t, err)
		assert.True(t, rates.PrivateRoomRates["小雅802"].Equal(dec("70")))

		_, err = env.rooms.Open(ctx, "小雅802")
		assert.NoError(t, err)
	})

	t.Run("大厅不是包房", func(t *testing.T) {
		err := env.rates.UpdatePrivateRate(ctx, "大厅01", dec("70"))
		assert.ErrorIs(t, err, ErrInvalidParam)
	})
}

func TestProductService(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	t.Run("参数校验", func(t *testing.T) {
		_, err := env.products.Create(ctx, &ProductRequest{Name: " ", Price: dec("1")})
		assert.ErrorIs(t, err, ErrInvalidParam)
		_, err = env.products.Create(ctx, &ProductRequest{Name: "茶", Price: dec("-1")})
		assert.ErrorIs(t, err, ErrInvalidParam)
		_, err = env.products.Create(ctx, &ProductRequest{Name: "茶", Price: dec("1"), Stock: -1})
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("新增修改删除", func(t *testing.T) {
		p := env.createProduct(t, "铁观音", "38", 20)

		_, err := env.products.Create(ctx, &ProductRequest{Name: "铁观音", Price: dec("1")})
		assert.ErrorIs(t, err, repository.ErrProductDuplicate)

		updated, err := env.products.Update(ctx, &ProductRequest{ID: p.ID, Name: "铁观音", Price: dec("42"), Stock: 15})
		require.NoError(t, err)
		assert.True(t, updated.Price.Equal(dec("42")))
		assert.Equal(t, 15, updated.Stock)

		list, err := env.products.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, env.products.Delete(ctx, p.ID))
		assert.ErrorIs(t, env.products.Delete(ctx, p.ID), repository.ErrProductNotFound)
	})
}

func TestReportService(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	checkout := func(roomID, operator, actual string) {
		_, err := env.rooms.Open(ctx, roomID)
		require.NoError(t, err)
		env.clock.Advance(time.Hour)
		_, err = env.checkout.Checkout(ctx, &CheckoutRequest{
			RoomID:   roomID,
			Operator: operator,
			Payment:  billing.PaymentBreakdown{Alipay: dec(actual)},
			Actual:   dec(actual),
		})
		require.NoError(t, err)
	}
	checkout("大厅01", "小王", "50")
	checkout("大雅01", "小李", "80")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, cst)
	from, to := day, day.AddDate(0, 0, 1)

	t.Run("按日期汇总", func(t *testing.T) {
		summary, err := env.reports.Summary(ctx, from, to, "")
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Totals.Count)
		assert.True(t, summary.Totals.Income.Equal(dec("130")))
		assert.True(t, summary.Totals.Payment.Alipay.Equal(dec("130")))
	})

	t.Run("按操作员筛选", func(t *testing.T) {
		summary, err := env.reports.Summary(ctx, from, to, "小李")
		require.NoError(t, err)
		require.Len(t, summary.Rooms, 1)
		assert.Equal(t, "大雅01", summary.Rooms[0].RoomID)
	})

	t.Run("区间外没有数据", func(t *testing.T) {
		summary, err := env.reports.Summary(ctx, to, to.AddDate(0, 0, 1), "")
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Totals.Count)
	})

	t.Run("时间区间无效", func(t *testing.T) {
		_, err := env.reports.Summary(ctx, to, from, "")
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("操作员列表", func(t *testing.T) {
		ops, err := env.reports.Operators(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"小李", "小王"}, ops)
	})

	t.Run("日报写入消息表", func(t *testing.T) {
		daily, err := env.reports.PublishDaily(ctx, day, env.clock.Now())
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", daily.BusinessDate)
		assert.Equal(t, 2, daily.Summary.Totals.Count)

		var msg model.OutboxMessage
		require.NoError(t, env.db.Where("message_key = ?", "RPT2024-03-01").First(&msg).Error)
		assert.Equal(t, "teahouse.report.daily", msg.Topic)
	})

	t.Run("失败消息重新投递", func(t *testing.T) {
		failed, err := env.reports.FailedMessages(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, failed)

		var msg model.OutboxMessage
		require.NoError(t, env.db.Where("message_key = ?", "RPT2024-03-01").First(&msg).Error)
		require.NoError(t, repository.NewOutboxRepository(env.db).MarkAsFailed(ctx, msg.ID, "kafka 不可用"))

		failed, err = env.reports.FailedMessages(ctx, 0)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, msg.ID, failed[0].ID)
		assert.Equal(t, "kafka 不可用", failed[0].LastError)

		require.NoError(t, env.reports.RequeueMessage(ctx, msg.ID, "admin"))
		failed, err = env.reports.FailedMessages(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, failed)

		require.NoError(t, env.db.First(&msg, msg.ID).Error)
		assert.Equal(t, model.OutboxStatusPending, msg.Status)
		assert.Equal(t, 0, msg.RetryCount)

		err = env.reports.RequeueMessage(ctx, msg.ID, "admin")
		assert.ErrorIs(t, err, repository.ErrOutboxMessageNotFound)
	})

	t.Run("清空流水", func(t *testing.T) {
		n, err := env.reports.Clear(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		summary, err := env.reports.Summary(ctx, time.Time{}, time.Time{}, "")
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Totals.Count)
	})
}
