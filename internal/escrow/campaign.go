package escrow

import (
	"sync"
	"time"

	"github.com/SairajMN/autocrowd/internal/model"
)

// Campaign 单个众筹活动的托管状态。所有变更操作持有mu写锁串行执行，
// 读操作在读锁下取快照
type Campaign struct {
	mu sync.RWMutex

	Id        int64
	CreatedAt time.Time

	Creator     string
	CreatorName string
	Title       string
	Description string
	Category    string

	Goal            int64
	Raised          int64
	Released        int64
	MinContribution int64
	MaxContribution int64
	BackerCount     int64

	StartTime time.Time
	EndTime   time.Time

	// Active 是管理用途的粘滞标志；贡献窗口的判断同时要求未过截止时间
	Active bool
	Status model.CampaignStatus

	contributions map[string]*Contribution
	milestones    []*Milestone
}

// Contribution 单个支持者在某活动中的账本条目
type Contribution struct {
	// 累计净贡献，退款后归零
	Amount int64
	// 是否曾经贡献过，退款不清除
	IsBacker bool
}

// Milestone 活动里程碑，序号即身份
type Milestone struct {
	Index       int
	Description string
	Amount      int64
	Deadline    time.Time

	State        model.MilestoneState
	SubmittedAt  time.Time
	EvidenceHash string

	// 投票子阶段，仅当裁决为不确定时填充
	VotingEnd time.Time
	YesWeight int64
	NoWeight  int64
	votes     map[string]bool // 地址 -> 赞成与否，存在即已投票

	FundsReleased bool
	ReleaseTxHash string
}

// canContribute 贡献窗口判断：活动开放且未过截止时间
func (c *Campaign) canContribute(now time.Time) bool {
	return c.Active && now.Before(c.EndTime)
}

// canRefund 退款资格判断：已过截止时间且未达目标。
// 达标的活动没有退款路径，支持者的救济手段是里程碑拒绝
func (c *Campaign) canRefund(now time.Time) bool {
	return !now.Before(c.EndTime) && c.Raised < c.Goal
}

// escrowBalance 托管池余量：已募集减去已放款
func (c *Campaign) escrowBalance() int64 {
	return c.Raised - c.Released
}

// contributionOf 查询某地址的账本条目，不存在时返回零值
func (c *Campaign) contributionOf(addr string) Contribution {
	if entry, ok := c.contributions[addr]; ok {
		return *entry
	}
	return Contribution{}
}

// milestone 按序号取里程碑
func (c *Campaign) milestone(index int) (*Milestone, bool) {
	if index < 0 || index >= len(c.milestones) {
		return nil, false
	}
	return c.milestones[index], true
}

// finalized 里程碑是否已定局
func (m *Milestone) finalized() bool {
	return m.State == model.MilestoneStateApproved || m.State == model.MilestoneStateRejected
}

// votingOpen 投票子阶段是否开启
func (m *Milestone) votingOpen() bool {
	return m.State == model.MilestoneStateSubmitted && !m.VotingEnd.IsZero()
}
