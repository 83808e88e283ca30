package model

import (
	"time"
)

const (
	ReportKindChange      = "change"      // 变更申告（地址/联系方式等）
	ReportKindLoss        = "loss"        // 挂失
	ReportKindRestriction = "restriction" // 限制申请
	ReportKindForm        = "form"        // 客户平板签名表单
)

// Report 제신고（JeSingo）记录表
// 客户发起的变更/事故申告，等待柜员处理。柜员可代客录入，
// 客户也可以通过平板签名表单自行提交（Signature 保存签名摘要）。
type Report struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ReportID   string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"report_id"` // 如 R-20240115...
	CustomerID string    `gorm:"type:varchar(32);index;not null" json:"customer_id"`
	Kind       string    `gorm:"type:varchar(32);not null" json:"kind"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Signature  string    `gorm:"type:varchar(128)" json:"signature"` // 平板签名摘要，可为空
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Report) TableName() string {
	return "report"
}
