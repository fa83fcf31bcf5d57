package repository

import (
	"context"
	"errors"

	"teahouse/internal/billing"
	"teahouse/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRoomNotFound   = errors.New("房间不存在")
	ErrOptimisticLock = errors.New("乐观锁冲突，请重试")
	ErrStatusInvalid  = errors.New("房间状态流转不合法")
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// EnsureRooms 初始化房间，已存在的不覆盖
func (r *RoomRepository) EnsureRooms(ctx context.Context, rooms []*model.RoomRecord) error {
	if len(rooms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}},
			DoNothing: true,
		}).
		Create(&rooms).Error
}

func (r *RoomRepository) GetByRoomID(ctx context.Context, roomID string) (*model.RoomRecord, error) {
	var rec model.RoomRecord
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*model.RoomRecord, error) {
	var rooms []*model.RoomRecord
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rooms).Error
	return rooms, err
}

// Save 按版本号写回，版本不一致返回 ErrOptimisticLock
// fromStatus 为读取时的状态，用于校验状态流转
func (r *RoomRepository) Save(ctx context.Context, tx *gorm.DB, rec *model.RoomRecord, fromStatus string) error {
	if !model.CanTransitionTo(billing.RoomStatus(fromStatus), billing.RoomStatus(rec.Status)) {
		return ErrStatusInvalid
	}
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.RoomRecord{}).
		Where("room_id = ? AND version = ?", rec.RoomID, rec.Version).
		Updates(map[string]interface{}{
			"kind":    rec.Kind,
			"status":  rec.Status,
			"state":   rec.State,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.WithContext(ctx).Model(&model.RoomRecord{}).Where("room_id = ?", rec.RoomID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrRoomNotFound
		}
		return ErrOptimisticLock
	}

	rec.Version++
	return nil
}
