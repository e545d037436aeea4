package model

import (
	"time"
)

// ContributionRecordModel 贡献流水，每次成功的贡献追加一行
type ContributionRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	Address    string `json:"address" gorm:"not null"`
	Amount     int64  `json:"amount" gorm:"not null"`
	TxHash     string `json:"tx_hash" gorm:"uniqueIndex"`
}

// TableName 自定义表名
func (ContributionRecordModel) TableName() string {
	return "contribution_record"
}
