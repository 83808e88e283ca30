package model

import (
	"time"
)

// Customer 客户表
// 客户由柜员登记或互联网银行注册时创建，只会更新，不做物理删除
type Customer struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	CustomerID     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"customer_id"` // 客户号，如 C-1000123
	Name           string    `gorm:"type:varchar(64);not null" json:"name"`
	Email          string    `gorm:"type:varchar(128);uniqueIndex" json:"email"` // 小写保存，登录身份映射的依据
	Phone          string    `gorm:"type:varchar(32)" json:"phone"`
	PrimaryAccount string    `gorm:"type:varchar(32)" json:"primary_account"` // 主账户账号，开户时回填
	IBEnrolled     bool      `gorm:"not null;default:false" json:"ib_enrolled"` // 是否已开通互联网银行
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customer"
}
