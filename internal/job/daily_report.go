package job

import (
	"context"
	"time"

	"teahouse/internal/clock"
	"teahouse/internal/logger"
	"teahouse/internal/service"

	"go.uber.org/zap"
)

// DailyPublisher 日报生成
type DailyPublisher interface {
	DailyPublished(ctx context.Context, day time.Time) (bool, error)
	HasTransactions(ctx context.Context, day time.Time) (bool, error)
	PublishDaily(ctx context.Context, day, now time.Time) (*service.DailyReport, error)
}

// 停机期间漏掉的日报最多往前补的天数，含前一天
const backfillDays = 7

// DailyReportJob 每天 hour 点之后汇总前一天的流水，写入消息表
// 更早的日子只在有流水且还没有日报时补发
type DailyReportJob struct {
	reports  DailyPublisher
	clock    clock.Clock
	hour     int
	interval time.Duration
	lastDay  string
	log      *zap.Logger
	stopCh   chan struct{}
}

func NewDailyReportJob(reports DailyPublisher, clk clock.Clock, hour int, interval time.Duration) *DailyReportJob {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &DailyReportJob{
		reports:  reports,
		clock:    clk,
		hour:     hour,
		interval: interval,
		log:      logger.Named("daily_report"),
		stopCh:   make(chan struct{}),
	}
}

func (j *DailyReportJob) Start(ctx context.Context) {
	j.log.Info("日报任务启动", zap.Int("hour", j.hour))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("收到停止信号，任务退出")
			return
		case <-j.stopCh:
			j.log.Info("任务停止")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *DailyReportJob) Stop() {
	close(j.stopCh)
}

// RunOnce 到点后从最早的一天开始补发缺失的日报，返回是否生成了日报
func (j *DailyReportJob) RunOnce(ctx context.Context) bool {
	now := j.clock.Now()
	if now.Hour() < j.hour {
		return false
	}
	yesterday := now.AddDate(0, 0, -1)
	if yesterday.Format("2006-01-02") == j.lastDay {
		return false
	}

	generated := false
	complete := true
	for offset := backfillDays - 1; offset >= 0; offset-- {
		day := yesterday.AddDate(0, 0, -offset)
		done, err := j.publish(ctx, day, now, offset == 0)
		if err != nil {
			j.log.Error("生成日报失败", zap.String("day", day.Format("2006-01-02")), zap.Error(err))
			complete = false
			continue
		}
		generated = generated || done
	}
	if complete {
		j.lastDay = yesterday.Format("2006-01-02")
	}
	return generated
}

// publish 生成 day 的日报，已存在时跳过，always 为 false 时没有流水也跳过
func (j *DailyReportJob) publish(ctx context.Context, day, now time.Time, always bool) (bool, error) {
	published, err := j.reports.DailyPublished(ctx, day)
	if err != nil || published {
		return false, err
	}
	if !always {
		has, err := j.reports.HasTransactions(ctx, day)
		if err != nil || !has {
			return false, err
		}
		j.log.Info("补发日报", zap.String("day", day.Format("2006-01-02")))
	}
	if _, err := j.reports.PublishDaily(ctx, day, now); err != nil {
		return false, err
	}
	return true, nil
}
