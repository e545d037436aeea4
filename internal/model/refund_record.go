package model

import (
	"time"
)

// RefundRecordModel 退款流水。成功的退款与失败的推送尝试都追加一行，
// 用status区分；写入方总是显式设置status
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64        `json:"campaign_id" gorm:"not null;index"`
	Address    string       `json:"address" gorm:"not null"`
	Amount     int64        `json:"amount" gorm:"not null"`
	TxHash     string       `json:"tx_hash"`
	Status     RefundStatus `json:"status" gorm:"not null"`
}

// RefundStatus 退款状态
type RefundStatus string

const (
	RefundStatusSuccess RefundStatus = "success" // 资金已推送给支持者
	RefundStatusFailed  RefundStatus = "failed"  // 网关推送失败，账本已回滚
)

// TableName 自定义表名
func (RefundRecordModel) TableName() string {
	return "refund_record"
}
