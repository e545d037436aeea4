package event

import (
	"github.com/SairajMN/autocrowd/internal/logger"
)

// LogProcessor 日志事件处理器，把总线上的每条事实写入结构化日志
type LogProcessor struct {
	bus   *Bus
	subId uint64
	ch    <-chan Event
	done  chan struct{}
}

// NewLogProcessor 创建日志事件处理器
func NewLogProcessor(bus *Bus) *LogProcessor {
	subId, ch := bus.Subscribe(AllTypes()...)
	return &LogProcessor{
		bus:   bus,
		subId: subId,
		ch:    ch,
		done:  make(chan struct{}),
	}
}

// Start 启动处理循环
func (p *LogProcessor) Start() {
	go func() {
		defer close(p.done)
		for evt := range p.ch {
			p.process(evt)
		}
	}()
}

// Stop 停止处理循环
func (p *LogProcessor) Stop() {
	p.bus.Unsubscribe(p.subId)
	<-p.done
}

// process 处理单条事实
func (p *LogProcessor) process(evt Event) {
	switch data := evt.Data.(type) {
	case ContributionRecorded:
		logger.Info("Contribution recorded: campaign=%d backer=%s amount=%d raised=%d",
			data.CampaignId, data.Backer, data.Amount, data.NewRaisedTotal)
	case MilestoneSubmitted:
		logger.Info("Milestone submitted: campaign=%d milestone=%d request=%s",
			data.CampaignId, data.MilestoneIndex, data.RequestId)
	case MilestoneVerdict:
		logger.Info("Milestone verdict: campaign=%d milestone=%d verdict=%s confidence=%.2f",
			data.CampaignId, data.MilestoneIndex, data.Verdict, data.Confidence)
	case VotingOpened:
		logger.Info("Voting opened: campaign=%d milestone=%d until=%s",
			data.CampaignId, data.MilestoneIndex, data.VotingEnd.Format("2006-01-02 15:04:05"))
	case VotingFinalized:
		logger.Info("Voting finalized: campaign=%d milestone=%d outcome=%s yes=%d no=%d",
			data.CampaignId, data.MilestoneIndex, data.Outcome, data.YesWeight, data.NoWeight)
	case FundsReleased:
		logger.Info("Funds released: campaign=%d milestone=%d amount=%d recipient=%s",
			data.CampaignId, data.MilestoneIndex, data.Amount, data.Recipient)
	case RefundClaimed:
		logger.Info("Refund claimed: campaign=%d backer=%s amount=%d",
			data.CampaignId, data.Backer, data.Amount)
	case CampaignCreated:
		logger.Info("Campaign created: campaign=%d creator=%s goal=%d",
			data.CampaignId, data.Creator, data.Goal)
	case MilestoneAdded:
		logger.Info("Milestone added: campaign=%d milestone=%d amount=%d",
			data.CampaignId, data.MilestoneIndex, data.Amount)
	default:
		logger.Debug("Event: type=%s", evt.Type)
	}
}
