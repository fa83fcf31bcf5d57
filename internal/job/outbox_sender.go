package job

import (
	"context"
	"time"

	"teahouse/internal/clock"
	"teahouse/internal/infrastructure/metrics"
	"teahouse/internal/logger"
	"teahouse/internal/model"
	"teahouse/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageSender 消息发送方，mq.Producer 实现了它
type MessageSender interface {
	SendMessage(topic, key, value string) (int32, int64, error)
}

// OutboxOptions 投递任务参数
type OutboxOptions struct {
	Interval      time.Duration
	BatchSize     int
	MaxRetryCount int
}

// OutboxSender 把消息表中待发送的结账、日报消息投递到 Kafka
type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	sender     MessageSender
	clock      clock.Clock
	metrics    *metrics.Metrics
	opts       OutboxOptions
	log        *zap.Logger
	stopCh     chan struct{}
}

func NewOutboxSender(db *gorm.DB, sender MessageSender, clk clock.Clock, m *metrics.Metrics, opts OutboxOptions) *OutboxSender {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxRetryCount <= 0 {
		opts.MaxRetryCount = 5
	}
	return &OutboxSender{
		outboxRepo: repository.NewOutboxRepository(db),
		sender:     sender,
		clock:      clk,
		metrics:    m,
		opts:       opts,
		log:        logger.Named("outbox"),
		stopCh:     make(chan struct{}),
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	s.log.Info("消息发送任务启动", zap.Duration("interval", s.opts.Interval))

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("收到停止信号，任务退出")
			return
		case <-s.stopCh:
			s.log.Info("任务停止")
			return
		case <-ticker.C:
			s.ProcessPending(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

// ProcessPending 发送一批待发送消息，返回发送成功的条数
func (s *OutboxSender) ProcessPending(ctx context.Context) int {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.opts.BatchSize)
	if err != nil {
		s.log.Error("查询消息失败", zap.Error(err))
		return 0
	}

	sent := 0
	for _, msg := range messages {
		if s.sendMessage(ctx, msg) {
			sent++
		}
	}
	return sent
}

func (s *OutboxSender) sendMessage(ctx context.Context, msg *model.OutboxMessage) bool {
	partition, offset, err := s.sender.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)
	s.metrics.OutboxDelivery(msg.Topic, err)

	if err == nil {
		if updateErr := s.outboxRepo.MarkAsSent(ctx, msg.ID, s.clock.Now()); updateErr != nil {
			s.log.Error("更新消息状态失败", zap.Int64("id", msg.ID), zap.Error(updateErr))
			return false
		}
		s.log.Debug("消息发送成功",
			zap.Int64("id", msg.ID),
			zap.String("topic", msg.Topic),
			zap.String("key", msg.MessageKey),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset),
		)
		return true
	}

	s.log.Warn("消息发送失败", zap.Int64("id", msg.ID), zap.Int("retry", msg.RetryCount), zap.Error(err))

	if msg.RetryCount+1 >= s.opts.MaxRetryCount {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID, err.Error()); err != nil {
			s.log.Error("标记消息失败状态失败", zap.Int64("id", msg.ID), zap.Error(err))
		} else {
			s.log.Error("消息超过最大重试次数，标记为失败", zap.Int64("id", msg.ID), zap.String("key", msg.MessageKey))
		}
		return false
	}
	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID, err.Error()); err != nil {
		s.log.Error("增加重试次数失败", zap.Int64("id", msg.ID), zap.Error(err))
	}
	return false
}
