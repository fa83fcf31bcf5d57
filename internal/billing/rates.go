package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// 一场时长的配置单位
const (
	UnitSeconds = "seconds"
	UnitMinutes = "minutes"
	UnitHours   = "hours"
)

// MaxSessionLength 一场时长上限
const MaxSessionLength = 24 * time.Hour

// RateTable 费率表
//
// 大厅和包房按"场"计费，空调、烤火、过夜按小时计费。
// 计算过程中只读，修改费率只影响之后的计算。
type RateTable struct {
	HallRate         decimal.Decimal            `json:"hall_rate"`
	PrivateRoomRates map[string]decimal.Decimal `json:"private_room_rates"`
	ACRate           decimal.Decimal            `json:"ac_rate"`
	HeaterRate       decimal.Decimal            `json:"heater_rate"`
	OvernightRate    decimal.Decimal            `json:"overnight_rate"`
	SessionLength    time.Duration              `json:"session_length"`
}

// Validate 校验所有费率大于0，一场时长在 (0, 24h] 内
func (r *RateTable) Validate() error {
	named := []struct {
		name string
		rate decimal.Decimal
	}{
		{"hall", r.HallRate},
		{"ac", r.ACRate},
		{"heater", r.HeaterRate},
		{"overnight", r.OvernightRate},
	}
	for _, n := range named {
		if !n.rate.IsPositive() {
			return fmt.Errorf("%w: %s=%s", ErrInvalidRate, n.name, n.rate)
		}
	}
	for roomID, rate := range r.PrivateRoomRates {
		if !rate.IsPositive() {
			return fmt.Errorf("%w: room %s=%s", ErrInvalidRate, roomID, rate)
		}
	}
	return ValidateSessionLength(r.SessionLength)
}

// RoomRate 房间每场的费率
func (r *RateTable) RoomRate(room *Room) (decimal.Decimal, error) {
	if room.Kind == RoomKindHall {
		return r.HallRate, nil
	}
	rate, ok := r.PrivateRoomRates[room.ID]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: room %s has no rate", ErrInvalidRate, room.ID)
	}
	return rate, nil
}

// ServiceRate 服务每小时的费率
func (r *RateTable) ServiceRate(kind ServiceKind) (decimal.Decimal, error) {
	switch kind {
	case ServiceAC:
		return r.ACRate, nil
	case ServiceHeater:
		return r.HeaterRate, nil
	default:
		return decimal.Zero, ErrUnknownService
	}
}

// Clone 深拷贝，避免调用方修改共享的包房费率表
func (r *RateTable) Clone() *RateTable {
	c := *r
	c.PrivateRoomRates = make(map[string]decimal.Decimal, len(r.PrivateRoomRates))
	for k, v := range r.PrivateRoomRates {
		c.PrivateRoomRates[k] = v
	}
	return &c
}

// ValidateSessionLength 一场时长必须在 (0, 24h] 内
func ValidateSessionLength(d time.Duration) error {
	if d <= 0 || d > MaxSessionLength {
		return fmt.Errorf("%w: session length %s", ErrInvalidRate, d)
	}
	return nil
}

// SessionLengthFromUnit 把"数值 + 单位"换算为一场时长
// 秒不超过 86400，分钟不超过 1440，小时不超过 24
func SessionLengthFromUnit(value int, unit string) (time.Duration, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: session value %d", ErrInvalidRate, value)
	}
	var d time.Duration
	switch unit {
	case UnitSeconds:
		d = time.Duration(value) * time.Second
	case UnitMinutes:
		d = time.Duration(value) * time.Minute
	case UnitHours:
		d = time.Duration(value) * time.Hour
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidRate, unit)
	}
	if err := ValidateSessionLength(d); err != nil {
		return 0, err
	}
	return d, nil
}

// RefreshInterval 界面刷新计费显示的建议间隔，一场越短刷新越频繁
func RefreshInterval(sessionLength time.Duration) time.Duration {
	switch {
	case sessionLength < 36*time.Second:
		return time.Second
	case sessionLength < 6*time.Minute:
		return 5 * time.Second
	case sessionLength < time.Hour:
		return 30 * time.Second
	default:
		return time.Minute
	}
}
