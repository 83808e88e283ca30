package repository

import (
	"context"

	"github.com/sunsun042505/sunwoobank/internal/model"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

type CardRepository struct {
	db *gorm.DB
}

func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *CardRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Card, error) {
	var cards []*model.Card
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

type ReportRepository struct {
	db *gorm.DB
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Report, error) {
	var reports []*model.Report
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) List(ctx context.Context, page, pageSize int) ([]*model.Report, int64, error) {
	var reports []*model.Report
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Report{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error
	return reports, total, err
}
