package escrow

import (
	"time"

	"github.com/SairajMN/autocrowd/internal/model"
)

// Summary 活动状态快照
type Summary struct {
	Id          int64
	Creator     string
	CreatorName string
	Title       string
	Description string
	Category    string

	Goal            int64
	Raised          int64
	Released        int64
	EscrowBalance   int64
	MinContribution int64
	MaxContribution int64
	BackerCount     int64

	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time

	Active bool
	Status model.CampaignStatus

	MilestoneCount int
}

// MilestoneSnapshot 里程碑状态快照
type MilestoneSnapshot struct {
	Index       int
	Description string
	Amount      int64
	Deadline    time.Time

	State        model.MilestoneState
	SubmittedAt  time.Time
	EvidenceHash string

	VotingEnd time.Time
	YesWeight int64
	NoWeight  int64
	VoteCount int

	FundsReleased bool
	ReleaseTxHash string
}

// summary 在读锁下生成活动快照
func (c *Campaign) summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summaryLocked()
}

// summaryLocked 生成活动快照，调用方须持有活动锁
func (c *Campaign) summaryLocked() Summary {
	return Summary{
		Id:              c.Id,
		Creator:         c.Creator,
		CreatorName:     c.CreatorName,
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		Goal:            c.Goal,
		Raised:          c.Raised,
		Released:        c.Released,
		EscrowBalance:   c.escrowBalance(),
		MinContribution: c.MinContribution,
		MaxContribution: c.MaxContribution,
		BackerCount:     c.BackerCount,
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		CreatedAt:       c.CreatedAt,
		Active:          c.Active,
		Status:          c.Status,
		MilestoneCount:  len(c.milestones),
	}
}

// snapshot 生成里程碑快照，调用方须持有所属活动的锁
func (m *Milestone) snapshot() MilestoneSnapshot {
	return MilestoneSnapshot{
		Index:         m.Index,
		Description:   m.Description,
		Amount:        m.Amount,
		Deadline:      m.Deadline,
		State:         m.State,
		SubmittedAt:   m.SubmittedAt,
		EvidenceHash:  m.EvidenceHash,
		VotingEnd:     m.VotingEnd,
		YesWeight:     m.YesWeight,
		NoWeight:      m.NoWeight,
		VoteCount:     len(m.votes),
		FundsReleased: m.FundsReleased,
		ReleaseTxHash: m.ReleaseTxHash,
	}
}
