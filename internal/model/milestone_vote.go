package model

import (
	"time"
)

// MilestoneVoteModel 里程碑投票记录，每个投票轮每个地址最多一行
type MilestoneVoteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId     int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_vote_identity"`
	MilestoneIndex int    `json:"milestone_index" gorm:"not null;uniqueIndex:idx_vote_identity"`
	Address        string `json:"address" gorm:"not null;uniqueIndex:idx_vote_identity"`

	Approve bool `json:"approve" gorm:"not null"`
	// 投票时刻的贡献余额，计票按此权重
	Weight int64 `json:"weight" gorm:"not null"`
}

// TableName 自定义表名
func (MilestoneVoteModel) TableName() string {
	return "milestone_vote"
}
