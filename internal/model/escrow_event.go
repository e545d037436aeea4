package model

import (
	"time"
)

// EscrowEventModel 托管事实流水，供索引器与透明化工具消费
type EscrowEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventType  string `json:"event_type" gorm:"not null;index"`
	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	// 与里程碑无关的事件由写入方显式置为 -1，0 是合法的里程碑序号，
	// 不能走 gorm 的 default 零值替换
	MilestoneIndex int    `json:"milestone_index" gorm:"not null"`
	Address        string `json:"address"`
	Amount         int64  `json:"amount"`

	// 完整事件负载（JSON）
	Payload string `json:"payload" gorm:"type:text"`
}

// TableName 自定义表名
func (EscrowEventModel) TableName() string {
	return "escrow_event"
}
