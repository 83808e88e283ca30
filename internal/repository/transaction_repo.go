package repository

import (
	"context"
	"time"

	"github.com/sunsun042505/sunwoobank/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func (r *TransactionRepository) Append(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNo string, page, pageSize int) ([]*model.Transaction, int64, error) {
	var txns []*model.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("account_no = ?", accountNo)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txns).Error
	return txns, total, err
}

func (r *TransactionRepository) ListRecentByAccounts(ctx context.Context, accountNos []string, limit int) ([]*model.Transaction, error) {
	if len(accountNos) == 0 {
		return nil, nil
	}
	var txns []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("account_no IN ?", accountNos).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

func (r *TransactionRepository) SumByAccount(ctx context.Context, accountNo string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("account_no = ?", accountNo).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// SumOutflowSince 统计自 since 起的转出流出总额（正数）
func (r *TransactionRepository) SumOutflowSince(ctx context.Context, accountNo string, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("account_no = ? AND kind = ? AND created_at >= ?",
			accountNo, model.TransactionKindTransferOut, since).
		Select("COALESCE(SUM(-amount), 0)").
		Scan(&total).Error
	return total, err
}
