package service

import (
	"context"
	"fmt"
	"time"

	"teahouse/internal/billing"
	"teahouse/internal/logger"
	"teahouse/internal/model"
	"teahouse/internal/report"
	"teahouse/internal/repository"
	"teahouse/pkg/idgen"

	"gorm.io/gorm"
)

// ReportService 报表
type ReportService struct {
	db         *gorm.DB
	transRepo  *repository.TransactionRepository
	outboxRepo *repository.OutboxRepository
	topic      string
}

// NewReportService topic 为日报消息的 Kafka topic
func NewReportService(db *gorm.DB, topic string) *ReportService {
	return &ReportService{
		db:         db,
		transRepo:  repository.NewTransactionRepository(db),
		outboxRepo: repository.NewOutboxRepository(db),
		topic:      topic,
	}
}

// Summary 按结账时间 [from, to) 和操作员汇总，零值不限
func (s *ReportService) Summary(ctx context.Context, from, to time.Time, operator string) (*report.Summary, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, fmt.Errorf("%w: 开始时间必须早于结束时间", ErrInvalidParam)
	}
	filter := report.Filter{From: from, To: to, Operator: operator}
	txns, err := s.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	return report.Summarize(txns, filter), nil
}

// Operators 操作员列表
func (s *ReportService) Operators(ctx context.Context) ([]string, error) {
	txns, err := s.load(ctx, report.Filter{})
	if err != nil {
		return nil, err
	}
	return report.Operators(txns), nil
}

// Clear 清空所有流水
func (s *ReportService) Clear(ctx context.Context, operator string) (int64, error) {
	n, err := s.transRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("清空流水失败: %w", err)
	}
	logger.Warn("流水已清空", logger.Operator(operator), logger.Int64("deleted", n))
	return n, nil
}

// DailyReport 日报消息
type DailyReport struct {
	BusinessDate string          `json:"business_date"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Summary      *report.Summary `json:"summary"`
}

// PublishDaily 汇总 day 当天的流水并写入 outbox
func (s *ReportService) PublishDaily(ctx context.Context, day, now time.Time) (*DailyReport, error) {
	from, to := report.DayRange(day)
	summary, err := s.Summary(ctx, from, to, "")
	if err != nil {
		return nil, err
	}
	daily := &DailyReport{
		BusinessDate: from.Format("2006-01-02"),
		GeneratedAt:  now,
		Summary:      summary,
	}
	payload, err := encodeJSON(daily)
	if err != nil {
		return nil, fmt.Errorf("序列化日报失败: %w", err)
	}
	msg := &model.OutboxMessage{
		MessageKey: idgen.GenerateReportKey(daily.BusinessDate),
		Topic:      s.topic,
		Payload:    payload,
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, nil, msg); err != nil {
		return nil, fmt.Errorf("保存日报消息失败: %w", err)
	}
	logger.Info("日报已生成",
		logger.String("business_date", daily.BusinessDate),
		logger.Int("count", summary.Totals.Count),
		logger.String("income", summary.Totals.Income.String()),
	)
	return daily, nil
}

// DailyPublished day 当天的日报是否已写入消息表
func (s *ReportService) DailyPublished(ctx context.Context, day time.Time) (bool, error) {
	from, _ := report.DayRange(day)
	return s.outboxRepo.ExistsByKey(ctx, idgen.GenerateReportKey(from.Format("2006-01-02")))
}

// 失败消息每次最多返回的条数
const maxFailedMessages = 200

// FailedMessages 超过重试次数未投递的消息，limit 不合法时取上限
func (s *ReportService) FailedMessages(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	if limit <= 0 || limit > maxFailedMessages {
		limit = maxFailedMessages
	}
	messages, err := s.outboxRepo.GetFailedMessages(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("查询失败消息失败: %w", err)
	}
	return messages, nil
}

// RequeueMessage 失败消息重新进入待投递队列
func (s *ReportService) RequeueMessage(ctx context.Context, id int64, operator string) error {
	if err := s.outboxRepo.Requeue(ctx, id); err != nil {
		return fmt.Errorf("重新投递消息 %d 失败: %w", id, err)
	}
	logger.Info("消息重新投递", logger.Int64("message_id", id), logger.Operator(operator))
	return nil
}

// HasTransactions day 当天是否有结账流水
func (s *ReportService) HasTransactions(ctx context.Context, day time.Time) (bool, error) {
	from, to := report.DayRange(day)
	n, err := s.transRepo.Count(ctx, repository.TransactionFilter{From: from, To: to})
	if err != nil {
		return false, fmt.Errorf("统计流水失败: %w", err)
	}
	return n > 0, nil
}

func (s *ReportService) load(ctx context.Context, f report.Filter) ([]billing.Transaction, error) {
	records, err := s.transRepo.List(ctx, repository.TransactionFilter{From: f.From, To: f.To, Operator: f.Operator})
	if err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	txns := make([]billing.Transaction, 0, len(records))
	for _, rec := range records {
		txn, err := rec.Transaction()
		if err != nil {
			return nil, fmt.Errorf("解析流水 %s 失败: %w", rec.TransactionNo, err)
		}
		txns = append(txns, *txn)
	}
	return txns, nil
}
