package model

import (
	"time"
)

// BackerModel 支持者账本条目，每个活动每个地址一行，记录累计净贡献
type BackerModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_backer"`
	Address    string `json:"address" gorm:"not null;uniqueIndex:idx_campaign_backer"`

	// 累计贡献金额，退款后归零
	Amount int64 `json:"amount" gorm:"not null;default:0"`
	// 是否曾经贡献过（退款不清除）
	IsBacker bool `json:"is_backer" gorm:"default:false"`
}

// TableName 自定义表名
func (BackerModel) TableName() string {
	return "backer"
}
