package repository

import (
	"context"
	"errors"

	"teahouse/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRateNotFound = errors.New("费率未配置")

type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

// Get 读取费率表和所有包房费率
func (r *RateRepository) Get(ctx context.Context) (*model.RateSetting, []*model.PrivateRoomRate, error) {
	var setting model.RateSetting
	err := r.db.WithContext(ctx).Order("id ASC").First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRateNotFound
		}
		return nil, nil, err
	}

	var privateRates []*model.PrivateRoomRate
	if err := r.db.WithContext(ctx).Order("room_id ASC").Find(&privateRates).Error; err != nil {
		return nil, nil, err
	}
	return &setting, privateRates, nil
}

// Save 保存费率表，ID 为 0 时新建
func (r *RateRepository) Save(ctx context.Context, tx *gorm.DB, setting *model.RateSetting) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Save(setting).Error
}

// UpsertPrivateRate 设置包房费率
func (r *RateRepository) UpsertPrivateRate(ctx context.Context, tx *gorm.DB, roomID string, rate decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).
		Create(&model.PrivateRoomRate{RoomID: roomID, Rate: rate}).Error
}
