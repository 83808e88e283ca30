package service

import (
	"context"
	"time"

	"github.com/sunsun042505/sunwoobank/internal/model"
)

// ============================================================================
// 存储端口
// ============================================================================
//
// 服务层只依赖这里的接口，不直接依赖 gorm。
// 生产环境由 internal/repository 的 MySQL 实现提供，
// 测试使用 internal/repository/memory 的内存实现替换。
//
// ============================================================================

// CustomerStore 客户仓储
type CustomerStore interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	// GetByCustomerID 按客户号查询，不存在时返回 model.ErrCustomerNotFound
	GetByCustomerID(ctx context.Context, customerID string) (*model.Customer, error)
	// GetByEmail 按邮箱查询，不存在时返回 (nil, nil)，供注册路径探测
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	// FindByWho 按客户号/邮箱/姓名模糊定位，不存在时返回 model.ErrCustomerNotFound
	FindByWho(ctx context.Context, who string) (*model.Customer, error)
	List(ctx context.Context, page, pageSize int) ([]*model.Customer, int64, error)
}

// AccountStore 账户仓储
type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	// GetByNo 按账号查询，不存在时返回 model.ErrAccountNotFound
	GetByNo(ctx context.Context, accountNo string) (*model.Account, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Account, error)
	List(ctx context.Context, page, pageSize int) ([]*model.Account, int64, error)
	// Debit 条件扣减：仅当 balance >= amount 时生效。
	// 余额不足返回 model.ErrInsufficientFunds —— 这是防止并发双花的最后防线
	Debit(ctx context.Context, accountNo string, amount int64) error
	Credit(ctx context.Context, accountNo string, amount int64) error
	// UpdateRestrictions 持久化状态与限制标志列（不触碰余额）
	UpdateRestrictions(ctx context.Context, account *model.Account) error
}

// TransactionStore 流水仓储（只追加）
type TransactionStore interface {
	Append(ctx context.Context, txn *model.Transaction) error
	ListByAccount(ctx context.Context, accountNo string, page, pageSize int) ([]*model.Transaction, int64, error)
	// ListRecentByAccounts 汇总多个账户的最近流水，按时间倒序
	ListRecentByAccounts(ctx context.Context, accountNos []string, limit int) ([]*model.Transaction, error)
	// SumByAccount 账户全部流水金额之和，应恒等于账户余额
	SumByAccount(ctx context.Context, accountNo string) (int64, error)
	// SumOutflowSince 自 since 起的转出流出总额（返回正数）
	SumOutflowSince(ctx context.Context, accountNo string, since time.Time) (int64, error)
}

// HoldStore 冻结记录仓储
type HoldStore interface {
	Create(ctx context.Context, hold *model.Hold) error
	// ListByAccount 按创建时间倒序（新冻结排在最前）
	ListByAccount(ctx context.Context, accountNo string) ([]*model.Hold, error)
	DeleteByKind(ctx context.Context, accountNo, kind string) error
}

// ProductStore 产品申请仓储
type ProductStore interface {
	Create(ctx context.Context, product *model.Product) error
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Product, error)
}

// CardStore 银行卡仓储
type CardStore interface {
	Create(ctx context.Context, card *model.Card) error
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Card, error)
}

// ReportStore 제신고仓储
type ReportStore interface {
	Create(ctx context.Context, report *model.Report) error
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Report, error)
	List(ctx context.Context, page, pageSize int) ([]*model.Report, int64, error)
}

// OutboxStore 账务事件发件箱仓储
type OutboxStore interface {
	Create(ctx context.Context, msg *model.OutboxMessage) error
	GetPending(ctx context.Context, limit int) ([]*model.OutboxMessage, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	IncrementRetry(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}

// Store 聚合仓储
// Atomic 在单个存储事务内执行 fn，fn 内通过传入的 Store 访问各仓储；
// fn 返回错误则全部回滚。余额变动与流水追加必须同进同退。
type Store interface {
	Customers() CustomerStore
	Accounts() AccountStore
	Transactions() TransactionStore
	Holds() HoldStore
	Products() ProductStore
	Cards() CardStore
	Reports() ReportStore
	Outbox() OutboxStore
	Atomic(ctx context.Context, fn func(Store) error) error
}

// Locker 按 key 串行化临界区
// 生产环境为 Redis SetNX 分布式锁，单进程/测试环境为本地按 key 互斥锁。
// 返回的释放函数必须在临界区结束时调用。
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
