package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teahouse/internal/billing"
	"teahouse/internal/infrastructure/cache"
	"teahouse/internal/infrastructure/metrics"
	"teahouse/internal/logger"
	"teahouse/internal/model"
	"teahouse/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateService 费率管理
// 费率存数据库，redis 做缓存，写入后删除缓存
type RateService struct {
	db       *gorm.DB
	rateRepo *repository.RateRepository
	rooms    RoomStore
	locker   RoomLocker
	cache    *cache.RateCache
	defaults *billing.RateTable
	metrics  *metrics.Metrics
}

// NewRateService defaults 为数据库中没有费率时写入的初始费率，cache 可以为 nil
// locker 与 RoomService 共用，修改包房费率时和开房互斥
func NewRateService(db *gorm.DB, rooms RoomStore, locker RoomLocker, rateCache *cache.RateCache, defaults *billing.RateTable, m *metrics.Metrics) *RateService {
	return &RateService{
		db:       db,
		rateRepo: repository.NewRateRepository(db),
		rooms:    rooms,
		locker:   locker,
		cache:    rateCache,
		defaults: defaults,
		metrics:  m,
	}
}

// RateView 费率展示，一场时长按配置时的数值和单位返回
type RateView struct {
	HallRate         decimal.Decimal            `json:"hall_rate"`
	PrivateRoomRates map[string]decimal.Decimal `json:"private_room_rates"`
	ACRate           decimal.Decimal            `json:"ac_rate"`
	HeaterRate       decimal.Decimal            `json:"heater_rate"`
	OvernightRate    decimal.Decimal            `json:"overnight_rate"`
	SessionValue     int                        `json:"session_value"`
	SessionUnit      string                     `json:"session_unit"`
}

// Current 当前费率表
func (s *RateService) Current(ctx context.Context) (*billing.RateTable, error) {
	if s.cache != nil {
		rates, err := s.cache.Get(ctx)
		if err != nil {
			logger.Warn("读取费率缓存失败", logger.Err(err))
		} else if rates != nil {
			s.metrics.RateCache(true)
			return rates, nil
		}
		s.metrics.RateCache(false)
	}

	setting, privateRates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := toRateTable(setting, privateRates)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rates); err != nil {
			logger.Warn("写入费率缓存失败", logger.Err(err))
		}
	}
	return rates, nil
}

// View 当前费率（含一场时长的单位）
func (s *RateService) View(ctx context.Context) (*RateView, error) {
	setting, privateRates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	view := &RateView{
		HallRate:         setting.HallRate,
		PrivateRoomRates: make(map[string]decimal.Decimal, len(privateRates)),
		ACRate:           setting.ACRate,
		HeaterRate:       setting.HeaterRate,
		OvernightRate:    setting.OvernightRate,
		SessionValue:     setting.SessionValue,
		SessionUnit:      setting.SessionUnit,
	}
	for _, pr := range privateRates {
		view.PrivateRoomRates[pr.RoomID] = pr.Rate
	}
	return view, nil
}

// UpdateHallRate 修改大厅每场费率
func (s *RateService) UpdateHallRate(ctx context.Context, rate decimal.Decimal, operator string) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: 大厅费率必须大于0", billing.ErrInvalidRate)
	}
	return s.updateSetting(ctx, operator, func(setting *model.RateSetting) error {
		setting.HallRate = rate
		return nil
	})
}

// OtherRates 空调、烤火、过夜费率，nil 表示不修改
type OtherRates struct {
	ACRate        *decimal.Decimal
	HeaterRate    *decimal.Decimal
	OvernightRate *decimal.Decimal
}

// UpdateOtherRates 修改按小时计费的费率
func (s *RateService) UpdateOtherRates(ctx context.Context, rates OtherRates, operator string) error {
	for _, r := range []*decimal.Decimal{rates.ACRate, rates.HeaterRate, rates.OvernightRate} {
		if r != nil && !r.IsPositive() {
			return fmt.Errorf("%w: 费率必须大于0", billing.ErrInvalidRate)
		}
	}
	return s.updateSetting(ctx, operator, func(setting *model.RateSetting) error {
		if rates.ACRate != nil {
			setting.ACRate = *rates.ACRate
		}
		if rates.HeaterRate != nil {
			setting.HeaterRate = *rates.HeaterRate
		}
		if rates.OvernightRate != nil {
			setting.OvernightRate = *rates.OvernightRate
		}
		return nil
	})
}

// UpdateSessionLength 修改一场时长
func (s *RateService) UpdateSessionLength(ctx context.Context, value int, unit string, operator string) error {
	if _, err := billing.SessionLengthFromUnit(value, unit); err != nil {
		return err
	}
	return s.updateSetting(ctx, operator, func(setting *model.RateSetting) error {
		setting.SessionValue = value
		setting.SessionUnit = unit
		return nil
	})
}

// UpdatePrivateRate 修改包房费率，房间使用中时不允许修改
func (s *RateService) UpdatePrivateRate(ctx context.Context, roomID string, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: 包房费率必须大于0", billing.ErrInvalidRate)
	}

	release, err := s.locker.Acquire(ctx, roomID)
	if err != nil {
		return err
	}
	defer release()

	rec, err := s.rooms.GetByRoomID(ctx, roomID)
	if err != nil {
		return err
	}
	if rec.Kind != string(billing.RoomKindPrivate) {
		return fmt.Errorf("%w: %s 不是包房", ErrInvalidParam, roomID)
	}
	if rec.Status == string(billing.RoomOccupied) {
		return fmt.Errorf("%w: %s 使用中，结账后再修改费率", billing.ErrRoomOccupied, roomID)
	}

	if _, _, err := s.load(ctx); err != nil {
		return err
	}
	if err := s.rateRepo.UpsertPrivateRate(ctx, nil, roomID, rate); err != nil {
		return fmt.Errorf("保存包房费率失败: %w", err)
	}
	s.invalidate(ctx)
	logger.Info("包房费率已修改", logger.RoomID(roomID), logger.String("rate", rate.String()))
	return nil
}

func (s *RateService) updateSetting(ctx context.Context, operator string, apply func(*model.RateSetting) error) error {
	setting, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := apply(setting); err != nil {
		return err
	}
	setting.UpdatedBy = operator
	if err := s.rateRepo.Save(ctx, nil, setting); err != nil {
		return fmt.Errorf("保存费率失败: %w", err)
	}
	s.invalidate(ctx)
	logger.Info("费率已修改", logger.Operator(operator))
	return nil
}

// load 读取费率，首次使用时写入默认费率
func (s *RateService) load(ctx context.Context) (*model.RateSetting, []*model.PrivateRoomRate, error) {
	setting, privateRates, err := s.rateRepo.Get(ctx)
	if err == nil {
		return setting, privateRates, nil
	}
	if !errors.Is(err, repository.ErrRateNotFound) {
		return nil, nil, fmt.Errorf("读取费率失败: %w", err)
	}
	if err := s.seed(ctx); err != nil {
		return nil, nil, fmt.Errorf("初始化费率失败: %w", err)
	}
	return s.rateRepo.Get(ctx)
}

func (s *RateService) seed(ctx context.Context) error {
	value, unit := sessionValueUnit(s.defaults.SessionLength)
	setting := &model.RateSetting{
		HallRate:      s.defaults.HallRate,
		ACRate:        s.defaults.ACRate,
		HeaterRate:    s.defaults.HeaterRate,
		OvernightRate: s.defaults.OvernightRate,
		SessionValue:  value,
		SessionUnit:   unit,
		UpdatedBy:     "system",
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.rateRepo.Save(ctx, tx, setting); err != nil {
			return err
		}
		for roomID, rate := range s.defaults.PrivateRoomRates {
			if err := s.rateRepo.UpsertPrivateRate(ctx, tx, roomID, rate); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *RateService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("删除费率缓存失败", logger.Err(err))
	}
}

func toRateTable(setting *model.RateSetting, privateRates []*model.PrivateRoomRate) (*billing.RateTable, error) {
	sessionLength, err := billing.SessionLengthFromUnit(setting.SessionValue, setting.SessionUnit)
	if err != nil {
		return nil, err
	}
	rates := &billing.RateTable{
		HallRate:         setting.HallRate,
		PrivateRoomRates: make(map[string]decimal.Decimal, len(privateRates)),
		ACRate:           setting.ACRate,
		HeaterRate:       setting.HeaterRate,
		OvernightRate:    setting.OvernightRate,
		SessionLength:    sessionLength,
	}
	for _, pr := range privateRates {
		rates.PrivateRoomRates[pr.RoomID] = pr.Rate
	}
	return rates, nil
}

// sessionValueUnit 把时长换成最大的整数单位
func sessionValueUnit(d time.Duration) (int, string) {
	switch {
	case d%time.Hour == 0:
		return int(d / time.Hour), billing.UnitHours
	case d%time.Minute == 0:
		return int(d / time.Minute), billing.UnitMinutes
	default:
		return int(d / time.Second), billing.UnitSeconds
	}
}
