package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"teahouse/internal/billing"
	"teahouse/internal/logger"
	"teahouse/internal/model"
	"teahouse/internal/repository"
	"teahouse/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutRequest 结账请求
type CheckoutRequest struct {
	RoomID   string
	Operator string
	Payment  billing.PaymentBreakdown
	Actual   decimal.Decimal
}

// CheckoutService 结账
//
// 结账流水、房间复位、结账消息写在同一个事务里，消息由 OutboxSender 投递
type CheckoutService struct {
	rooms      *RoomService
	transRepo  *repository.TransactionRepository
	outboxRepo *repository.OutboxRepository
	topic      string
}

func NewCheckoutService(db *gorm.DB, rooms *RoomService, topic string) *CheckoutService {
	return &CheckoutService{
		rooms:      rooms,
		transRepo:  repository.NewTransactionRepository(db),
		outboxRepo: repository.NewOutboxRepository(db),
		topic:      topic,
	}
}

// Checkout 结账，成功后房间回到空闲
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*billing.Transaction, error) {
	req.Operator = strings.TrimSpace(req.Operator)
	if req.RoomID == "" {
		return nil, fmt.Errorf("%w: 房间号不能为空", ErrInvalidParam)
	}

	var txn *billing.Transaction
	_, err := s.rooms.mutate(ctx, req.RoomID, "checkout", func(tx *gorm.DB, room *billing.Room, rates *billing.RateTable, now time.Time) error {
		settled, err := billing.Settle(room, rates, now, billing.SettleRequest{
			TransactionNo: idgen.GenerateTransactionNo(now),
			Operator:      req.Operator,
			Payment:       req.Payment,
			Actual:        req.Actual,
		})
		if err != nil {
			return err
		}

		rec, err := model.NewTransactionRecord(settled)
		if err != nil {
			return fmt.Errorf("生成流水失败: %w", err)
		}
		if err := s.transRepo.Create(ctx, tx, rec); err != nil {
			return fmt.Errorf("保存流水失败: %w", err)
		}

		if err := s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
			MessageKey: settled.TransactionNo,
			Topic:      s.topic,
			Payload:    rec.Detail,
			Status:     model.OutboxStatusPending,
		}); err != nil {
			return fmt.Errorf("保存结账消息失败: %w", err)
		}

		txn = settled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rooms.metrics.Checkout(string(txn.RoomKind), paymentAmounts(txn.Payment))
	logger.Info("结账完成",
		logger.TransactionNo(txn.TransactionNo),
		logger.RoomID(txn.RoomID),
		logger.Operator(txn.Operator),
		logger.String("receivable", txn.Receivable.String()),
		logger.String("actual", txn.Actual.String()),
	)
	return txn, nil
}

// GetTransaction 按流水号查询结账快照
func (s *CheckoutService) GetTransaction(ctx context.Context, transactionNo string) (*billing.Transaction, error) {
	rec, err := s.transRepo.GetByTransactionNo(ctx, transactionNo)
	if err != nil {
		return nil, err
	}
	return rec.Transaction()
}

func paymentAmounts(p billing.PaymentBreakdown) map[string]float64 {
	return map[string]float64{
		"cash":   p.Cash.InexactFloat64(),
		"wechat": p.Wechat.InexactFloat64(),
		"alipay": p.Alipay.InexactFloat64(),
		"card":   p.Card.InexactFloat64(),
	}
}

// encodeJSON 消息体序列化
func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
