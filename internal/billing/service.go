package billing

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ServiceKind 附加服务类型
type ServiceKind string

const (
	ServiceAC     ServiceKind = "ac"     // 空调
	ServiceHeater ServiceKind = "heater" // 烤火
)

// ServiceKinds 所有附加服务，按固定顺序遍历
var ServiceKinds = []ServiceKind{ServiceAC, ServiceHeater}

// Valid 是否为已知服务类型
func (k ServiceKind) Valid() bool {
	return k == ServiceAC || k == ServiceHeater
}

// ServiceState 服务当前状态
type ServiceState string

const (
	ServiceStateOff     ServiceState = "off"
	ServiceStateRunning ServiceState = "running"
	ServiceStatePaused  ServiceState = "paused"
)

// ServiceSession 一次开启到关闭的服务会话
// Rate 在会话关闭时冻结，之后修改费率不影响已关闭的会话
type ServiceSession struct {
	StartTime      time.Time        `json:"start_time"`
	EndTime        *time.Time       `json:"end_time,omitempty"`
	PausedDuration time.Duration    `json:"paused_duration"`
	Rate           *decimal.Decimal `json:"rate,omitempty"`
}

// Closed 会话是否已结束
func (s *ServiceSession) Closed() bool {
	return s.EndTime != nil
}

// ActiveDuration 已结束会话的有效时长
func (s *ServiceSession) ActiveDuration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return nonNegative(s.EndTime.Sub(s.StartTime) - s.PausedDuration)
}

// Service 一项可多次开关的附加服务
//
// Sessions 记录本次开房内的每次开启，Live 是当前打开会话的计时器，
// 与最后一个未结束的会话同步。任何时刻最多一个会话未结束。
type Service struct {
	Sessions []ServiceSession `json:"sessions"`
	Live     PausableInterval `json:"live"`
}

// UnmarshalJSON 兼容旧数据中 "ac": false 这种布尔形式，加载时一次性迁移为空服务
func (s *Service) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("true")) || bytes.Equal(trimmed, []byte("false")) {
		*s = Service{}
		return nil
	}
	type plain Service
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*s = Service(p)
	return nil
}

// State 当前状态
func (s *Service) State() ServiceState {
	switch {
	case s.openSession() == nil:
		return ServiceStateOff
	case s.Live.Paused():
		return ServiceStatePaused
	default:
		return ServiceStateRunning
	}
}

// Start 开启一次新的会话
func (s *Service) Start(now time.Time) error {
	if s.openSession() != nil {
		return ErrAlreadyRunning
	}
	live := PausableInterval{}
	if err := live.Start(now); err != nil {
		return err
	}
	s.Sessions = append(s.Sessions, ServiceSession{StartTime: now})
	s.Live = live
	return nil
}

// Pause 暂停当前会话
func (s *Service) Pause(now time.Time) error {
	if s.openSession() == nil {
		return ErrNotRunning
	}
	return s.Live.Pause(now)
}

// Resume 继续当前会话，暂停时长同步到会话
func (s *Service) Resume(now time.Time) error {
	session := s.openSession()
	if session == nil {
		return ErrNotRunning
	}
	if err := s.Live.Resume(now); err != nil {
		return err
	}
	session.PausedDuration = s.Live.PausedTotal
	return nil
}

// Stop 关闭当前会话，冻结暂停时长和费率
func (s *Service) Stop(now time.Time, rate decimal.Decimal) error {
	session := s.openSession()
	if session == nil {
		return ErrNotRunning
	}
	if err := s.Live.Stop(now); err != nil {
		return err
	}
	end := now
	frozen := rate
	session.EndTime = &end
	session.PausedDuration = s.Live.PausedTotal
	session.Rate = &frozen
	s.Live = PausableInterval{}
	return nil
}

// BilledHours 每个会话单独向上取整到小时后的合计
func (s *Service) BilledHours(now time.Time) int64 {
	var hours int64
	for i := range s.Sessions {
		hours += s.sessionHours(i, now)
	}
	return hours
}

// ActiveDuration 所有会话的有效时长合计（展示用）
func (s *Service) ActiveDuration(now time.Time) time.Duration {
	var total time.Duration
	for i := range s.Sessions {
		total += s.sessionActive(i, now)
	}
	return total
}

func (s *Service) sessionActive(i int, now time.Time) time.Duration {
	session := &s.Sessions[i]
	if session.Closed() {
		return session.ActiveDuration()
	}
	return s.Live.ElapsedActive(now)
}

func (s *Service) sessionHours(i int, now time.Time) int64 {
	return ceilHours(s.sessionActive(i, now))
}

func (s *Service) openSession() *ServiceSession {
	if len(s.Sessions) == 0 {
		return nil
	}
	last := &s.Sessions[len(s.Sessions)-1]
	if last.Closed() {
		return nil
	}
	return last
}

func (s *Service) clone() *Service {
	c := &Service{Live: s.Live.clone()}
	if s.Sessions != nil {
		c.Sessions = make([]ServiceSession, len(s.Sessions))
		copy(c.Sessions, s.Sessions)
	}
	return c
}

// ceilHours 向上取整到整小时，0 仍为 0
func ceilHours(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Hour - 1) / time.Hour)
}
