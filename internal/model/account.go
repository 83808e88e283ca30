package model

import (
	"time"
)

const (
	AccountStatusNormal  = "normal"
	AccountStatusBlocked = "blocked"
)

// AccountTypeDefault 默认账户类型（韩文"입출금"＝活期存取账户）
const AccountTypeDefault = "입출금"

// Account 账户表
// 余额只能通过记账操作（现金存取/转账）修改，其他路径一律禁止直接改余额。
// 四个限制标志是相互独立的开关，不是互斥的状态机，可以同时为 true。
type Account struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	AccountNo  string `gorm:"type:varchar(32);uniqueIndex;not null" json:"account_no"` // 账号，如 110-123-456789
	CustomerID string `gorm:"type:varchar(32);index;not null" json:"customer_id"`
	Type       string `gorm:"type:varchar(32);not null" json:"type"`
	Status     string `gorm:"type:varchar(16);not null;default:normal" json:"status"`
	Balance    int64  `gorm:"not null;default:0" json:"balance"` // 余额（韩元，整数）

	// 限制标志
	PaymentStop        bool `gorm:"not null;default:false" json:"payment_stop"`        // 支付停止
	Seizure            bool `gorm:"not null;default:false" json:"seizure"`             // 扣押
	ProvisionalSeizure bool `gorm:"not null;default:false" json:"provisional_seizure"` // 假扣押
	LimitAccount       bool `gorm:"not null;default:false" json:"limit_account"`       // 限额账户（新开户默认 true）

	PinHash   string    `gorm:"type:varchar(256)" json:"-"` // PIN 的 PBKDF2 哈希，绝不保存明文
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
