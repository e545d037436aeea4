package event

import (
	"time"
)

// 事实类型
const (
	TypeCampaignCreated      = "CampaignCreated"
	TypeContributionRecorded = "ContributionRecorded"
	TypeMilestoneAdded       = "MilestoneAdded"
	TypeMilestoneSubmitted   = "MilestoneSubmitted"
	TypeMilestoneVerdict     = "MilestoneVerdict"
	TypeVotingOpened         = "VotingOpened"
	TypeVotingFinalized      = "VotingFinalized"
	TypeFundsReleased        = "FundsReleased"
	TypeRefundClaimed        = "RefundClaimed"
)

// AllTypes 返回全部事实类型
func AllTypes() []string {
	return []string{
		TypeCampaignCreated,
		TypeContributionRecorded,
		TypeMilestoneAdded,
		TypeMilestoneSubmitted,
		TypeMilestoneVerdict,
		TypeVotingOpened,
		TypeVotingFinalized,
		TypeFundsReleased,
		TypeRefundClaimed,
	}
}

// CampaignCreated 活动创建事实
type CampaignCreated struct {
	CampaignId int64     `json:"campaignId"`
	Creator    string    `json:"creator"`
	Goal       int64     `json:"goal"`
	EndTime    time.Time `json:"endTime"`
}

// ContributionRecorded 贡献入账事实
type ContributionRecorded struct {
	CampaignId     int64  `json:"campaignId"`
	Backer         string `json:"backer"`
	Amount         int64  `json:"amount"`
	NewRaisedTotal int64  `json:"newRaisedTotal"`
	TxHash         string `json:"txHash"`
}

// MilestoneAdded 新增里程碑事实
type MilestoneAdded struct {
	CampaignId     int64 `json:"campaignId"`
	MilestoneIndex int   `json:"milestoneIndex"`
	Amount         int64 `json:"amount"`
}

// MilestoneSubmitted 里程碑提交事实
type MilestoneSubmitted struct {
	CampaignId     int64  `json:"campaignId"`
	MilestoneIndex int    `json:"milestoneIndex"`
	EvidenceHash   string `json:"evidenceHash"`
	RequestId      string `json:"requestId"`
}

// MilestoneVerdict 预言机裁决事实
type MilestoneVerdict struct {
	CampaignId     int64   `json:"campaignId"`
	MilestoneIndex int     `json:"milestoneIndex"`
	Verdict        string  `json:"verdict"`
	Confidence     float64 `json:"confidence"`
	ReportHash     string  `json:"reportHash"`
}

// VotingOpened 投票开启事实
type VotingOpened struct {
	CampaignId     int64     `json:"campaignId"`
	MilestoneIndex int       `json:"milestoneIndex"`
	VotingEnd      time.Time `json:"votingEnd"`
}

// VotingFinalized 投票定局事实
type VotingFinalized struct {
	CampaignId     int64  `json:"campaignId"`
	MilestoneIndex int    `json:"milestoneIndex"`
	Outcome        string `json:"outcome"`
	YesWeight      int64  `json:"yesWeight"`
	NoWeight       int64  `json:"noWeight"`
}

// FundsReleased 放款事实
type FundsReleased struct {
	CampaignId     int64  `json:"campaignId"`
	MilestoneIndex int    `json:"milestoneIndex"`
	Amount         int64  `json:"amount"`
	Recipient      string `json:"recipient"`
	TxHash         string `json:"txHash"`
}

// RefundClaimed 退款事实
type RefundClaimed struct {
	CampaignId int64  `json:"campaignId"`
	Backer     string `json:"backer"`
	Amount     int64  `json:"amount"`
	TxHash     string `json:"txHash"`
}
