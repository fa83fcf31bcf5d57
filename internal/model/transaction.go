package model

import (
	"encoding/json"
	"time"

	"teahouse/internal/billing"

	"github.com/shopspring/decimal"
)

// TransactionRecord 结账流水表
//
// 流水只追加、不修改；金额列用于统计查询，Detail 保存完整的结账快照。
// 只有管理员清空报表时才会整体删除。
type TransactionRecord struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // 流水号（全局唯一）
	RoomID        string          `gorm:"type:varchar(32);index;not null" json:"room_id"`
	Operator      string          `gorm:"type:varchar(64);index" json:"operator"`
	BusinessDate  string          `gorm:"type:varchar(10);index;not null" json:"business_date"` // 营业日 yyyy-mm-dd
	StartTime     time.Time       `gorm:"not null" json:"start_time"`
	EndTime       time.Time       `gorm:"index;not null" json:"end_time"`
	RoomFee       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"room_fee"`
	ProductFee    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"product_fee"`
	ServiceFee    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_fee"` // 含过夜费
	OvernightFee  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"overnight_fee"`
	Receivable    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"receivable"`
	Actual        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"actual"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Detail        string          `gorm:"type:text;not null" json:"-"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TransactionRecord) TableName() string {
	return "transaction_record"
}

// NewTransactionRecord 由结账快照生成流水
func NewTransactionRecord(txn *billing.Transaction) (*TransactionRecord, error) {
	detail, err := json.Marshal(txn)
	if err != nil {
		return nil, err
	}
	return &TransactionRecord{
		TransactionNo: txn.TransactionNo,
		RoomID:        txn.RoomID,
		Operator:      txn.Operator,
		BusinessDate:  txn.BusinessDate,
		StartTime:     txn.StartTime.UTC(),
		EndTime:       txn.EndTime.UTC(),
		RoomFee:       txn.RoomFee,
		ProductFee:    txn.ProductFee,
		ServiceFee:    txn.ServiceFee,
		OvernightFee:  txn.OvernightFee,
		Receivable:    txn.Receivable,
		Actual:        txn.Actual,
		Discount:      txn.Discount,
		Detail:        string(detail),
	}, nil
}

// Transaction 还原结账快照
func (r *TransactionRecord) Transaction() (*billing.Transaction, error) {
	txn := &billing.Transaction{}
	if err := json.Unmarshal([]byte(r.Detail), txn); err != nil {
		return nil, err
	}
	return txn, nil
}
