package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// 过夜时段 [00:00, 08:00)
const (
	overnightStartHour = 0
	overnightEndHour   = 8
)

// RoomFee 房费计算结果
//
// 至少按一场计费，即使有效时长为 0。
// 向上、向下两种取整结果都会返回，RoundingChoice 表示两者不同，
// 界面可以让操作员在结账前选择。
type RoomFee struct {
	Rate           decimal.Decimal `json:"rate"`
	ActiveDuration time.Duration   `json:"active_duration"`
	PausedDuration time.Duration   `json:"paused_duration"`
	SessionsCeil   int64           `json:"sessions_ceil"`
	SessionsFloor  int64           `json:"sessions_floor"`
	FeeCeil        decimal.Decimal `json:"fee_ceil"`
	FeeFloor       decimal.Decimal `json:"fee_floor"`
	RoundingChoice bool            `json:"rounding_choice"`
	Rounding       RoundingMode    `json:"rounding"`
	Sessions       int64           `json:"sessions"`
	Fee            decimal.Decimal `json:"fee"`
}

// ComputeRoomFee 计算房费
//
//	场次 = ceil(有效时长 / 一场时长)，最少 1 场
//
// 用整数纳秒计算，一场时长短到 1 秒也不会有截断误差。
// 房间未开始计时时返回零值。
func ComputeRoomFee(room *Room, rates *RateTable, now time.Time) (RoomFee, error) {
	if !room.Occupancy.Started() {
		return RoomFee{Fee: decimal.Zero, FeeCeil: decimal.Zero, FeeFloor: decimal.Zero, Rate: decimal.Zero, Rounding: RoundUp}, nil
	}
	if err := ValidateSessionLength(rates.SessionLength); err != nil {
		return RoomFee{}, err
	}
	rate, err := rates.RoomRate(room)
	if err != nil {
		return RoomFee{}, err
	}

	active := room.Occupancy.ElapsedActive(now)
	unit := rates.SessionLength
	floor := int64(active / unit)
	ceil := floor
	if active%unit != 0 {
		ceil++
	}
	if floor < 1 {
		floor = 1
	}
	if ceil < 1 {
		ceil = 1
	}

	fee := RoomFee{
		Rate:           rate,
		ActiveDuration: active,
		PausedDuration: room.Occupancy.PausedDuration(now),
		SessionsCeil:   ceil,
		SessionsFloor:  floor,
		FeeCeil:        rate.Mul(decimal.NewFromInt(ceil)),
		FeeFloor:       rate.Mul(decimal.NewFromInt(floor)),
		RoundingChoice: ceil != floor,
		Rounding:       RoundUp,
	}
	fee.Sessions, fee.Fee = fee.SessionsCeil, fee.FeeCeil
	if room.Rounding == RoundDown {
		fee.Rounding = RoundDown
		fee.Sessions, fee.Fee = fee.SessionsFloor, fee.FeeFloor
	}
	return fee, nil
}

// CalculateServiceFee 计算单项服务费
//
// 每个会话单独向上取整到小时：开关两次各 10 分钟按 2 小时计。
// 已关闭的会话使用关闭时冻结的费率，未关闭的会话使用 rate。
func CalculateServiceFee(svc *Service, rate decimal.Decimal, now time.Time) decimal.Decimal {
	if svc == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for i := range svc.Sessions {
		hours := svc.sessionHours(i, now)
		if hours == 0 {
			continue
		}
		sessionRate := rate
		if svc.Sessions[i].Closed() && svc.Sessions[i].Rate != nil {
			sessionRate = *svc.Sessions[i].Rate
		}
		total = total.Add(sessionRate.Mul(decimal.NewFromInt(hours)))
	}
	return total
}

// OvernightHours 过夜小时数
//
// 在 now 所在时区按整点切片，[开始, 计费终点) 与 0-8 点任意切片有重叠就计一整小时。
// 暂停中以暂停开始时刻为终点，暂停期间不累计过夜。
func OvernightHours(room *Room, now time.Time) int64 {
	if !room.Occupancy.Started() {
		return 0
	}
	loc := now.Location()
	start := room.Occupancy.StartTime.In(loc)
	end := room.Occupancy.EffectiveEnd(now).In(loc)
	if !start.Before(end) {
		return 0
	}

	var hours int64
	slot := time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), 0, 0, 0, loc)
	for slot.Before(end) {
		next := slot.Add(time.Hour)
		overlapStart := maxTime(slot, start)
		overlapEnd := minTime(next, end)
		h := slot.Hour()
		if h >= overnightStartHour && h < overnightEndHour && overlapStart.Before(overlapEnd) {
			hours++
		}
		slot = next
	}
	return hours
}

// CalculateOvernightFee 计算过夜费，与房费、服务费叠加
func CalculateOvernightFee(room *Room, rates *RateTable, now time.Time) decimal.Decimal {
	return rates.OvernightRate.Mul(decimal.NewFromInt(OvernightHours(room, now)))
}

// Bill 某一时刻的应收明细
type Bill struct {
	RoomID          string          `json:"room_id"`
	At              time.Time       `json:"at"`
	Room            RoomFee         `json:"room"`
	ProductFee      decimal.Decimal `json:"product_fee"`
	ACFee           decimal.Decimal `json:"ac_fee"`
	HeaterFee       decimal.Decimal `json:"heater_fee"`
	ACHours         int64           `json:"ac_hours"`
	HeaterHours     int64           `json:"heater_hours"`
	OvernightHours  int64           `json:"overnight_hours"`
	OvernightFee    decimal.Decimal `json:"overnight_fee"`
	ServiceFee      decimal.Decimal `json:"service_fee"` // 空调 + 烤火 + 过夜
	LoanTotal       decimal.Decimal `json:"loan_total"`
	Loans           []LoanDetail    `json:"loans"`
	Receivable      decimal.Decimal `json:"receivable"`
	RefreshInterval time.Duration   `json:"refresh_interval"`
}

// ComputeReceivable 计算应收合计
//
//	应收 = 房费 + 商品 + 空调 + 烤火 + 过夜
//
// 借款单独结算，不计入应收。
func ComputeReceivable(room *Room, rates *RateTable, now time.Time) (*Bill, error) {
	roomFee, err := ComputeRoomFee(room, rates, now)
	if err != nil {
		return nil, err
	}

	bill := &Bill{
		RoomID:          room.ID,
		At:              now,
		Room:            roomFee,
		ProductFee:      room.ProductFee(),
		ACFee:           CalculateServiceFee(room.Services[ServiceAC], rates.ACRate, now),
		HeaterFee:       CalculateServiceFee(room.Services[ServiceHeater], rates.HeaterRate, now),
		OvernightHours:  OvernightHours(room, now),
		OvernightFee:    CalculateOvernightFee(room, rates, now),
		LoanTotal:       room.LoanTotal(),
		Loans:           room.LoanDetails(),
		RefreshInterval: RefreshInterval(rates.SessionLength),
	}
	if svc := room.Services[ServiceAC]; svc != nil {
		bill.ACHours = svc.BilledHours(now)
	}
	if svc := room.Services[ServiceHeater]; svc != nil {
		bill.HeaterHours = svc.BilledHours(now)
	}
	bill.ServiceFee = bill.ACFee.Add(bill.HeaterFee).Add(bill.OvernightFee)
	bill.Receivable = roomFee.Fee.Add(bill.ProductFee).Add(bill.ServiceFee)
	return bill, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
