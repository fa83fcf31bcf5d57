package repository

import (
	"context"
	"errors"
	"time"

	"teahouse/internal/model"

	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("流水不存在")

// TransactionFilter 按结账时间 [From, To) 和操作员筛选，零值不限
type TransactionFilter struct {
	From     time.Time
	To       time.Time
	Operator string
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, rec *model.TransactionRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(rec).Error
}

func (r *TransactionRepository) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.TransactionRecord, error) {
	var rec model.TransactionRecord
	err := r.db.WithContext(ctx).Where("transaction_no = ?", transactionNo).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]*model.TransactionRecord, error) {
	var records []*model.TransactionRecord
	err := r.filtered(ctx, f).Order("end_time ASC").Find(&records).Error
	return records, err
}

func (r *TransactionRepository) Count(ctx context.Context, f TransactionFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, f).Count(&count).Error
	return count, err
}

func (r *TransactionRepository) filtered(ctx context.Context, f TransactionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.TransactionRecord{})
	if !f.From.IsZero() {
		query = query.Where("end_time >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		query = query.Where("end_time < ?", f.To.UTC())
	}
	if f.Operator != "" {
		query = query.Where("operator = ?", f.Operator)
	}
	return query
}

// DeleteAll 清空所有流水，返回删除条数
func (r *TransactionRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.TransactionRecord{})
	return result.RowsAffected, result.Error
}
