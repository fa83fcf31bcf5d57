package billing

import "time"

// PausableInterval 可暂停的计时区间
//
// 房间占用和每一次服务开启都用它来记录有效时长：
//
//	有效时长 = (终点 - 开始) - (累计暂停 + 当前暂停中的时长)
//
// 终点在 Stop 之后固定为停止时刻，否则为调用方传入的 now。
// 所有方法都显式接收 now，不读取系统时钟。
type PausableInterval struct {
	StartTime      *time.Time    `json:"start_time,omitempty"`
	PausedTotal    time.Duration `json:"paused_total"`
	PauseStartedAt *time.Time    `json:"pause_started_at,omitempty"`
	StoppedAt      *time.Time    `json:"stopped_at,omitempty"`
}

// Started 是否已开始（含已停止）
func (p *PausableInterval) Started() bool {
	return p.StartTime != nil
}

// Running 已开始且未停止
func (p *PausableInterval) Running() bool {
	return p.StartTime != nil && p.StoppedAt == nil
}

// Paused 正在暂停中
func (p *PausableInterval) Paused() bool {
	return p.Running() && p.PauseStartedAt != nil
}

// Start 开始计时，已停止的区间可以重新开始
func (p *PausableInterval) Start(now time.Time) error {
	if p.Running() {
		return ErrAlreadyActive
	}
	start := now
	*p = PausableInterval{StartTime: &start}
	return nil
}

// Pause 暂停计时
func (p *PausableInterval) Pause(now time.Time) error {
	if !p.Running() {
		return ErrNotActive
	}
	if p.PauseStartedAt != nil {
		return ErrAlreadyPaused
	}
	at := now
	p.PauseStartedAt = &at
	return nil
}

// Resume 继续计时，把本次暂停时长累加到 PausedTotal
func (p *PausableInterval) Resume(now time.Time) error {
	if !p.Running() {
		return ErrNotActive
	}
	if p.PauseStartedAt == nil {
		return ErrNotPaused
	}
	p.PausedTotal += nonNegative(now.Sub(*p.PauseStartedAt))
	p.PauseStartedAt = nil
	return nil
}

// Stop 停止计时并冻结有效时长，暂停中停止会先结算暂停时长
func (p *PausableInterval) Stop(now time.Time) error {
	if !p.Running() {
		return ErrNotActive
	}
	if p.PauseStartedAt != nil {
		p.PausedTotal += nonNegative(now.Sub(*p.PauseStartedAt))
		p.PauseStartedAt = nil
	}
	at := now
	p.StoppedAt = &at
	return nil
}

// PausedDuration 截至 now 的总暂停时长（含进行中的暂停）
func (p *PausableInterval) PausedDuration(now time.Time) time.Duration {
	if p.StartTime == nil {
		return 0
	}
	end := p.end(now)
	paused := p.PausedTotal
	if p.PauseStartedAt != nil {
		paused += nonNegative(end.Sub(*p.PauseStartedAt))
	}
	return paused
}

// Elapsed 截至 now 的总时长（含暂停）
func (p *PausableInterval) Elapsed(now time.Time) time.Duration {
	if p.StartTime == nil {
		return 0
	}
	return nonNegative(p.end(now).Sub(*p.StartTime))
}

// ElapsedActive 截至 now 的有效时长，纯查询，不需要先 Resume
func (p *PausableInterval) ElapsedActive(now time.Time) time.Duration {
	return nonNegative(p.Elapsed(now) - p.PausedDuration(now))
}

// EffectiveEnd 计费终点：已停止取停止时刻，暂停中取暂停开始时刻，否则取 now
func (p *PausableInterval) EffectiveEnd(now time.Time) time.Time {
	end := p.end(now)
	if p.PauseStartedAt != nil && p.PauseStartedAt.Before(end) {
		return *p.PauseStartedAt
	}
	return end
}

func (p *PausableInterval) end(now time.Time) time.Time {
	if p.StoppedAt != nil {
		return *p.StoppedAt
	}
	return now
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// clone 时间指针只会被整体替换，不会原地修改，浅拷贝即可
func (p *PausableInterval) clone() PausableInterval {
	return *p
}
