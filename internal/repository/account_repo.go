package repository

import (
	"context"
	"errors"

	"github.com/sunsun042505/sunwoobank/internal/model"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByNo(ctx context.Context, accountNo string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("account_no = ?", accountNo).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) List(ctx context.Context, page, pageSize int) ([]*model.Account, int64, error) {
	var accounts []*model.Account
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Account{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&accounts).Error
	return accounts, total, err
}

// Debit 条件扣减：只有 balance >= amount 的行才会被更新。
// RowsAffected == 0 时重读一次区分"账户不存在"与"余额不足"。
func (r *AccountRepository) Debit(ctx context.Context, accountNo string, amount int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_no = ? AND balance >= ?", accountNo, amount).
		Update("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		account, err := r.GetByNo(ctx, accountNo)
		if err != nil {
			return err
		}
		if account.Balance < amount {
			return model.ErrInsufficientFunds
		}
		return model.ErrInternal.WithDetail("扣款未生效")
	}
	return nil
}

func (r *AccountRepository) Credit(ctx context.Context, accountNo string, amount int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_no = ?", accountNo).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

// UpdateRestrictions 持久化状态与限制标志列
// Select 强制写入零值（false），余额列不在列表内、永远不会被这里触碰
func (r *AccountRepository) UpdateRestrictions(ctx context.Context, account *model.Account) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_no = ?", account.AccountNo).
		Select("status", "payment_stop", "seizure", "provisional_seizure", "limit_account").
		Updates(account)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}
