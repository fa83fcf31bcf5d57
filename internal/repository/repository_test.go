package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"teahouse/internal/billing"
	"teahouse/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.RoomRecord{},
		&model.RateSetting{},
		&model.PrivateRoomRate{},
		&model.Product{},
		&model.TransactionRecord{},
		&model.OutboxMessage{},
	))
	return db
}

func TestRoomRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRoomRepository(db)

	hall, err := model.NewRoomRecord(billing.NewRoom("大厅1", billing.RoomKindHall))
	require.NoError(t, err)
	private, err := model.NewRoomRecord(billing.NewRoom("大雅01", billing.RoomKindPrivate))
	require.NoError(t, err)
	require.NoError(t, repo.EnsureRooms(ctx, []*model.RoomRecord{hall, private}))

	t.Run("重复初始化不覆盖", func(t *testing.T) {
		again, err := model.NewRoomRecord(billing.NewRoom("大厅1", billing.RoomKindHall))
		require.NoError(t, err)
		require.NoError(t, repo.EnsureRooms(ctx, []*model.RoomRecord{again}))

		rooms, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, rooms, 2)
	})

	t.Run("按版本保存", func(t *testing.T) {
		rec, err := repo.GetByRoomID(ctx, "大厅1")
		require.NoError(t, err)
		room, err := rec.Room()
		require.NoError(t, err)
		require.NoError(t, room.Open(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
		require.NoError(t, rec.SetRoom(room))

		require.NoError(t, repo.Save(ctx, nil, rec, string(billing.RoomIdle)))
		assert.Equal(t, 1, rec.Version)

		loaded, err := repo.GetByRoomID(ctx, "大厅1")
		require.NoError(t, err)
		assert.Equal(t, string(billing.RoomOccupied), loaded.Status)
		assert.Equal(t, 1, loaded.Version)
		loadedRoom, err := loaded.Room()
		require.NoError(t, err)
		assert.True(t, loadedRoom.Occupied())
	})

	t.Run("版本过期", func(t *testing.T) {
		rec, err := repo.GetByRoomID(ctx, "大雅01")
		require.NoError(t, err)
		stale := *rec
		require.NoError(t, repo.Save(ctx, nil, rec, rec.Status))
		assert.ErrorIs(t, repo.Save(ctx, nil, &stale, stale.Status), ErrOptimisticLock)
	})

	t.Run("房间不存在", func(t *testing.T) {
		_, err := repo.GetByRoomID(ctx, "大厅99")
		assert.ErrorIs(t, err, ErrRoomNotFound)

		ghost, err := model.NewRoomRecord(billing.NewRoom("大厅99", billing.RoomKindHall))
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, nil, ghost, ghost.Status), ErrRoomNotFound)
	})

	t.Run("非法状态流转", func(t *testing.T) {
		rec, err := repo.GetByRoomID(ctx, "大厅1")
		require.NoError(t, err)
		rec.Status = string(billing.RoomReserved)
		assert.ErrorIs(t, repo.Save(ctx, nil, rec, string(billing.RoomOccupied)), ErrStatusInvalid)
	})
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewProductRepository(db)

	tea := &model.Product{Name: "龙井", Price: decimal.NewFromInt(15), Stock: 5}
	require.NoError(t, repo.Create(ctx, tea))

	t.Run("名称重复", func(t *testing.T) {
		err := repo.Create(ctx, &model.Product{Name: "龙井", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, ErrProductDuplicate)
	})

	t.Run("扣减与恢复库存", func(t *testing.T) {
		require.NoError(t, repo.DecrementStock(ctx, nil, tea.ID, 3))
		assert.ErrorIs(t, repo.DecrementStock(ctx, nil, tea.ID, 3), ErrStockNotEnough)

		p, err := repo.GetByID(ctx, nil, tea.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Stock)

		require.NoError(t, repo.IncreaseStock(ctx, nil, tea.ID, 3))
		p, err = repo.GetByID(ctx, nil, tea.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, p.Stock)
		assert.Equal(t, "15", p.Price.String())
	})

	t.Run("商品不存在", func(t *testing.T) {
		assert.ErrorIs(t, repo.DecrementStock(ctx, nil, 999, 1), ErrProductNotFound)
		assert.ErrorIs(t, repo.IncreaseStock(ctx, nil, 999, 1), ErrProductNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 999), ErrProductNotFound)
	})

	t.Run("修改与删除", func(t *testing.T) {
		melon := &model.Product{Name: "瓜子", Price: decimal.RequireFromString("8.5"), Stock: 10}
		require.NoError(t, repo.Create(ctx, melon))
		melon.Price = decimal.NewFromInt(9)
		require.NoError(t, repo.Update(ctx, melon))

		p, err := repo.GetByID(ctx, nil, melon.ID)
		require.NoError(t, err)
		assert.Equal(t, "9", p.Price.String())

		require.NoError(t, repo.Delete(ctx, melon.ID))
		products, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})
}

func newRecord(t *testing.T, no, operator string, end time.Time) *model.TransactionRecord {
	t.Helper()
	rec, err := model.NewTransactionRecord(&billing.Transaction{
		TransactionNo: no,
		RoomID:        "大厅1",
		Operator:      operator,
		StartTime:     end.Add(-time.Hour),
		EndTime:       end,
		BusinessDate:  end.Format("2006-01-02"),
		RoomFee:       decimal.NewFromInt(50),
		Receivable:    decimal.NewFromInt(50),
		Actual:        decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	return rec
}

func TestTransactionRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	cst := time.FixedZone("CST", 8*3600)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, cst)
	require.NoError(t, repo.Create(ctx, nil, newRecord(t, "T1", "小王", day.Add(10*time.Hour))))
	require.NoError(t, repo.Create(ctx, nil, newRecord(t, "T2", "小李", day.Add(20*time.Hour))))
	require.NoError(t, repo.Create(ctx, nil, newRecord(t, "T3", "小王", day.Add(30*time.Hour))))

	t.Run("按日期筛选", func(t *testing.T) {
		records, err := repo.List(ctx, TransactionFilter{From: day, To: day.AddDate(0, 0, 1)})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "T1", records[0].TransactionNo)
		assert.Equal(t, "T2", records[1].TransactionNo)
	})

	t.Run("按操作员筛选", func(t *testing.T) {
		records, err := repo.List(ctx, TransactionFilter{Operator: "小王"})
		require.NoError(t, err)
		assert.Len(t, records, 2)

		n, err := repo.Count(ctx, TransactionFilter{Operator: "小王"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("还原快照", func(t *testing.T) {
		rec, err := repo.GetByTransactionNo(ctx, "T2")
		require.NoError(t, err)
		txn, err := rec.Transaction()
		require.NoError(t, err)
		assert.Equal(t, "小李", txn.Operator)
		assert.Equal(t, "50", txn.Actual.String())

		_, err = repo.GetByTransactionNo(ctx, "T9")
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})

	t.Run("清空", func(t *testing.T) {
		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		records, err := repo.List(ctx, TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestRateRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRateRepository(db)

	_, _, err := repo.Get(ctx)
	assert.ErrorIs(t, err, ErrRateNotFound)

	setting := &model.RateSetting{
		HallRate:      decimal.NewFromInt(50),
		ACRate:        decimal.NewFromInt(5),
		HeaterRate:    decimal.NewFromInt(3),
		OvernightRate: decimal.NewFromInt(10),
		SessionValue:  4,
		SessionUnit:   billing.UnitHours,
	}
	require.NoError(t, repo.Save(ctx, nil, setting))
	require.NoError(t, repo.UpsertPrivateRate(ctx, nil, "大雅01", decimal.NewFromInt(80)))
	require.NoError(t, repo.UpsertPrivateRate(ctx, nil, "大雅01", decimal.NewFromInt(90)))
	require.NoError(t, repo.UpsertPrivateRate(ctx, nil, "小雅801", decimal.NewFromInt(60)))

	got, privateRates, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "50", got.HallRate.String())
	require.Len(t, privateRates, 2)
	for _, pr := range privateRates {
		if pr.RoomID == "大雅01" {
			assert.Equal(t, "90", pr.Rate.String())
		}
	}
}

func TestOutboxRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)

	first := &model.OutboxMessage{MessageKey: "T1", Topic: "checkout", Payload: "{}", Status: model.OutboxStatusPending}
	second := &model.OutboxMessage{MessageKey: "T2", Topic: "checkout", Payload: "{}", Status: model.OutboxStatusPending}
	require.NoError(t, repo.Create(ctx, nil, first))
	require.NoError(t, repo.Create(ctx, nil, second))

	require.NoError(t, repo.MarkAsSent(ctx, first.ID, time.Now()))
	require.NoError(t, repo.IncrementRetryCount(ctx, second.ID, "broker down"))

	pending, err := repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, "broker down", pending[0].LastError)

	require.NoError(t, repo.MarkAsFailed(ctx, second.ID, strings.Repeat("x", 600)))
	failed, err := repo.GetFailedMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].RetryCount)
	assert.Len(t, failed[0].LastError, 512)

	require.NoError(t, repo.Requeue(ctx, second.ID))
	pending, err = repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, 0, pending[0].RetryCount)

	assert.ErrorIs(t, repo.Requeue(ctx, second.ID), ErrOutboxMessageNotFound)
	assert.ErrorIs(t, repo.Requeue(ctx, first.ID), ErrOutboxMessageNotFound)
}
