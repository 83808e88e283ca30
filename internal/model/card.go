package model

import (
	"time"
)

// Card 银行卡表
// 卡号由 Luhn 算法生成，关联客户与账户
type Card struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	CardNo     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"card_no"`
	CustomerID string    `gorm:"type:varchar(32);index;not null" json:"customer_id"`
	AccountNo  string    `gorm:"type:varchar(32);not null" json:"account_no"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Card) TableName() string {
	return "card"
}
