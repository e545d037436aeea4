package model

import (
	"time"
)

// CampaignModel 众筹活动模型
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category"`

	// 募集信息（金额一律为代币最小单位）
	GoalAmount      int64 `json:"goal_amount" gorm:"not null"`
	RaisedAmount    int64 `json:"raised_amount" gorm:"default:0"`
	ReleasedAmount  int64 `json:"released_amount" gorm:"default:0"`
	MinContribution int64 `json:"min_contribution" gorm:"default:0"`
	MaxContribution int64 `json:"max_contribution" gorm:"default:0"`
	BackerCount     int64 `json:"backer_count" gorm:"default:0"`

	// 时间信息
	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`

	// 状态
	Active bool           `json:"active" gorm:"default:true"`
	Status CampaignStatus `json:"status" gorm:"default:'active'"`

	// 创建者信息
	CreatorAddress string `json:"creator_address" gorm:"not null;index"`
	CreatorName    string `json:"creator_name"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusActive     CampaignStatus = "active"     // 进行中
	CampaignStatusSuccessful CampaignStatus = "successful" // 达到目标
	CampaignStatusFailed     CampaignStatus = "failed"     // 未达到目标
)

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
