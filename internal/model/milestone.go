package model

import (
	"time"
)

// MilestoneModel 里程碑模型
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId     int64 `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_milestone"`
	MilestoneIndex int   `json:"milestone_index" gorm:"not null;uniqueIndex:idx_campaign_milestone"`

	Description string    `json:"description" gorm:"type:text"`
	Amount      int64     `json:"amount" gorm:"not null"`
	Deadline    time.Time `json:"deadline"`

	// 状态
	State        MilestoneState `json:"state" gorm:"default:'pending'"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	EvidenceHash string         `json:"evidence_hash"`

	// 投票子阶段（仅当裁决为不确定时填充）
	VotingEnd time.Time `json:"voting_end"`
	YesWeight int64     `json:"yes_weight" gorm:"default:0"`
	NoWeight  int64     `json:"no_weight" gorm:"default:0"`

	// 放款信息
	FundsReleased bool   `json:"funds_released" gorm:"default:false"`
	ReleaseTxHash string `json:"release_tx_hash"`
}

// MilestoneState 里程碑状态
type MilestoneState string

const (
	MilestoneStatePending   MilestoneState = "pending"   // 待提交
	MilestoneStateSubmitted MilestoneState = "submitted" // 已提交，等待裁决
	MilestoneStateApproved  MilestoneState = "approved"  // 已批准
	MilestoneStateRejected  MilestoneState = "rejected"  // 已拒绝
)

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}
