package model

import (
	"encoding/json"
	"time"

	"teahouse/internal/billing"
)

// 房间状态流转，和计费引擎中的状态一一对应
var ValidStatusTransitions = map[billing.RoomStatus][]billing.RoomStatus{
	billing.RoomIdle:     {billing.RoomOccupied, billing.RoomReserved},
	billing.RoomReserved: {billing.RoomOccupied, billing.RoomIdle},
	billing.RoomOccupied: {billing.RoomIdle},
}

// CanTransitionTo 状态是否可以变化，状态不变总是允许
func CanTransitionTo(current, target billing.RoomStatus) bool {
	if current == target {
		return true
	}
	for _, s := range ValidStatusTransitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// RoomRecord 房间表
// State 保存完整的计费状态快照（JSON），Status 冗余一份便于列表查询
type RoomRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"room_id"`
	Kind      string    `gorm:"type:varchar(16);not null" json:"kind"`
	Status    string    `gorm:"type:varchar(16);index;not null" json:"status"`
	State     string    `gorm:"type:text;not null" json:"state"`
	Version   int       `gorm:"not null;default:0" json:"version"` // 乐观锁版本号
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RoomRecord) TableName() string {
	return "room"
}

// NewRoomRecord 由计费状态生成记录
func NewRoomRecord(room *billing.Room) (*RoomRecord, error) {
	rec := &RoomRecord{RoomID: room.ID}
	if err := rec.SetRoom(room); err != nil {
		return nil, err
	}
	return rec, nil
}

// Room 解析计费状态，旧格式的服务数据在这里一次性迁移
func (r *RoomRecord) Room() (*billing.Room, error) {
	room := &billing.Room{}
	if err := json.Unmarshal([]byte(r.State), room); err != nil {
		return nil, err
	}
	room.ID = r.RoomID
	if room.Kind == "" {
		room.Kind = billing.RoomKind(r.Kind)
	}
	return room, nil
}

// SetRoom 写回计费状态
func (r *RoomRecord) SetRoom(room *billing.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	r.Kind = string(room.Kind)
	r.Status = string(room.Status)
	r.State = string(data)
	return nil
}
