package model

import (
	"time"
)

// ============================================================================
// 交易类型常量
// ============================================================================

const (
	TransactionKindDeposit     = "deposit"      // 存款
	TransactionKindWithdraw    = "withdraw"     // 取款
	TransactionKindTransferOut = "transfer-out" // 转账转出
	TransactionKindTransferIn  = "transfer-in"  // 转账转入
)

// IsOutflowKind 判断是否属于当日限额统计的流出类型
func IsOutflowKind(kind string) bool {
	return kind == TransactionKindTransferOut
}

// ============================================================================
// 账户流水实体
// ============================================================================

// Transaction 账户流水表
//
// 流水表设计原则：
// 1. 只追加，不修改，不删除 —— 保证审计可追溯
// 2. 金额带符号：入账为正，出账为负
// 3. 余额必须等于该账户全部流水金额之和 —— 对账的核心不变量
// 4. 一次转账恰好写两条：转出账户一条 transfer-out，转入账户一条 transfer-in
type Transaction struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	TxnNo     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"txn_no"` // 流水号（全局唯一）
	AccountNo string    `gorm:"type:varchar(32);index;not null" json:"account_no"`
	Kind      string    `gorm:"type:varchar(20);not null" json:"kind"`
	Amount    int64     `gorm:"not null" json:"amount"` // 带符号金额
	Memo      string    `gorm:"type:varchar(256)" json:"memo"`
	CounterNo string    `gorm:"type:varchar(32)" json:"counter_no"` // 对方账号（仅转账）
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "account_transaction"
}
