package model

import (
	"time"
)

// VerificationRequestModel 验证请求，每次里程碑提交开启一条，用于关联预言机的异步裁决
type VerificationRequestModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RequestId      string `json:"request_id" gorm:"not null;uniqueIndex"`
	CampaignId     int64  `json:"campaign_id" gorm:"not null;index"`
	MilestoneIndex int    `json:"milestone_index" gorm:"not null"`
	Requester      string `json:"requester" gorm:"not null"`
	EvidenceHash   string `json:"evidence_hash"`

	// 派发与处理状态
	DispatchedAt time.Time          `json:"dispatched_at"`
	Attempts     int                `json:"attempts" gorm:"default:0"`
	Status       VerificationStatus `json:"status" gorm:"default:'pending'"`
	IsProcessed  bool               `json:"is_processed" gorm:"default:false"`
	IsApproved   bool               `json:"is_approved" gorm:"default:false"`

	// 预言机回报
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	ReportHash string  `json:"report_hash"`
}

// VerificationStatus 验证请求状态
type VerificationStatus string

const (
	VerificationStatusPending    VerificationStatus = "pending"    // 待派发
	VerificationStatusDispatched VerificationStatus = "dispatched" // 已派发给预言机
	VerificationStatusProcessed  VerificationStatus = "processed"  // 已收到裁决
)

// TableName 自定义表名
func (VerificationRequestModel) TableName() string {
	return "verification_request"
}
