package repository

import (
	"context"

	"github.com/sunsun042505/sunwoobank/internal/model"

	"gorm.io/gorm"
)

type HoldRepository struct {
	db *gorm.DB
}

func (r *HoldRepository) Create(ctx context.Context, hold *model.Hold) error {
	return r.db.WithContext(ctx).Create(hold).Error
}

func (r *HoldRepository) ListByAccount(ctx context.Context, accountNo string) ([]*model.Hold, error) {
	var holds []*model.Hold
	err := r.db.WithContext(ctx).
		Where("account_no = ?", accountNo).
		Order("created_at DESC, id DESC").
		Find(&holds).Error
	return holds, err
}

func (r *HoldRepository) DeleteByKind(ctx context.Context, accountNo, kind string) error {
	return r.db.WithContext(ctx).
		Where("account_no = ? AND kind = ?", accountNo, kind).
		Delete(&model.Hold{}).Error
}
