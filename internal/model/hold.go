package model

import (
	"time"
)

const (
	HoldKindSeizure            = "seizure"
	HoldKindProvisionalSeizure = "provisional_seizure"
)

// Hold 账户冻结记录（扣押/假扣押）
// 记录法律性权利限制的金额与来源。冻结金额不会自动从可用余额中扣减，
// 只作为柜员处理时的参考。解除对应限制时整类删除。
type Hold struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	AccountNo string    `gorm:"type:varchar(32);index;not null" json:"account_no"`
	Kind      string    `gorm:"type:varchar(32);not null" json:"kind"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Ref       string    `gorm:"type:varchar(64)" json:"ref"` // 产生该冻结的请求标识
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Hold) TableName() string {
	return "account_hold"
}
