package repository

import (
	"context"

	"github.com/sunsun042505/sunwoobank/internal/service"

	"gorm.io/gorm"
)

// Store 基于 gorm/MySQL 的聚合仓储实现
type Store struct {
	db *gorm.DB
}

var _ service.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Customers() service.CustomerStore       { return &CustomerRepository{db: s.db} }
func (s *Store) Accounts() service.AccountStore         { return &AccountRepository{db: s.db} }
func (s *Store) Transactions() service.TransactionStore { return &TransactionRepository{db: s.db} }
func (s *Store) Holds() service.HoldStore               { return &HoldRepository{db: s.db} }
func (s *Store) Products() service.ProductStore         { return &ProductRepository{db: s.db} }
func (s *Store) Cards() service.CardStore               { return &CardRepository{db: s.db} }
func (s *Store) Reports() service.ReportStore           { return &ReportRepository{db: s.db} }
func (s *Store) Outbox() service.OutboxStore            { return &OutboxRepository{db: s.db} }

// Atomic 在单个数据库事务内执行 fn
// fn 拿到的是绑定了事务连接的 Store，返回错误即整体回滚
func (s *Store) Atomic(ctx context.Context, fn func(service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
