package model

import (
	"time"
)

// Product 产品申请表（定期/积金等柜台产品）
// 与客户松耦合，除引用存在性外没有额外不变量
type Product struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID  string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"product_id"` // 如 P-20240115...
	CustomerID string    `gorm:"type:varchar(32);index;not null" json:"customer_id"`
	Type       string    `gorm:"type:varchar(32);not null" json:"type"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Months     int       `gorm:"not null" json:"months"`
	Memo       string    `gorm:"type:varchar(256)" json:"memo"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Product) TableName() string {
	return "product"
}
