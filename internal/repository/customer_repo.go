package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sunsun042505/sunwoobank/internal/model"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *CustomerRepository) GetByCustomerID(ctx context.Context, customerID string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// FindByWho 按客户号/邮箱/姓名精确定位
func (r *CustomerRepository) FindByWho(ctx context.Context, who string) (*model.Customer, error) {
	q := strings.TrimSpace(who)
	if q == "" {
		return nil, model.ErrCustomerNotFound
	}
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("customer_id = ? OR email = ? OR name = ?", q, strings.ToLower(q), q).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) List(ctx context.Context, page, pageSize int) ([]*model.Customer, int64, error) {
	var customers []*model.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Customer{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&customers).Error
	return customers, total, err
}
