package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSetting 费率表，只有一行
type RateSetting struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	HallRate      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hall_rate"`
	ACRate        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"ac_rate"`
	HeaterRate    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"heater_rate"`
	OvernightRate decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"overnight_rate"`
	SessionValue  int             `gorm:"not null" json:"session_value"`
	SessionUnit   string          `gorm:"type:varchar(16);not null" json:"session_unit"`
	UpdatedBy     string          `gorm:"type:varchar(64)" json:"updated_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RateSetting) TableName() string {
	return "rate_setting"
}

// PrivateRoomRate 包房每场费率
type PrivateRoomRate struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"room_id"`
	Rate      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PrivateRoomRate) TableName() string {
	return "private_room_rate"
}
