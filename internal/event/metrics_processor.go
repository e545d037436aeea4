package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	campaignsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_campaigns_created_total",
		Help: "Number of campaigns created",
	})
	contributions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_contributions_total",
		Help: "Number of recorded contributions",
	})
	contributedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_contributed_amount_total",
		Help: "Total contributed amount in base token units",
	})
	refunds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_refunds_total",
		Help: "Number of claimed refunds",
	})
	refundedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_refunded_amount_total",
		Help: "Total refunded amount in base token units",
	})
	milestonesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_milestones_submitted_total",
		Help: "Number of milestone submissions",
	})
	milestoneVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autocrowd_milestone_verdicts_total",
		Help: "Number of oracle verdicts applied, by verdict",
	}, []string{"verdict"})
	votingFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autocrowd_voting_finalized_total",
		Help: "Number of finalized voting rounds, by outcome",
	}, []string{"outcome"})
	fundsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_funds_released_total",
		Help: "Number of milestone payouts",
	})
	releasedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autocrowd_released_amount_total",
		Help: "Total released amount in base token units",
	})
)

// MetricsProcessor 指标事件处理器，把总线上的事实计入 Prometheus 指标
type MetricsProcessor struct {
	bus   *Bus
	subId uint64
	ch    <-chan Event
	done  chan struct{}
}

// NewMetricsProcessor 创建指标事件处理器
func NewMetricsProcessor(bus *Bus) *MetricsProcessor {
	subId, ch := bus.Subscribe(AllTypes()...)
	return &MetricsProcessor{
		bus:   bus,
		subId: subId,
		ch:    ch,
		done:  make(chan struct{}),
	}
}

// Start 启动处理循环
func (p *MetricsProcessor) Start() {
	go func() {
		defer close(p.done)
		for evt := range p.ch {
			p.process(evt)
		}
	}()
}

// Stop 停止处理循环
func (p *MetricsProcessor) Stop() {
	p.bus.Unsubscribe(p.subId)
	<-p.done
}

// process 处理单条事实
func (p *MetricsProcessor) process(evt Event) {
	switch data := evt.Data.(type) {
	case CampaignCreated:
		campaignsCreated.Inc()
	case ContributionRecorded:
		contributions.Inc()
		contributedAmount.Add(float64(data.Amount))
	case RefundClaimed:
		refunds.Inc()
		refundedAmount.Add(float64(data.Amount))
	case MilestoneSubmitted:
		milestonesSubmitted.Inc()
	case MilestoneVerdict:
		milestoneVerdicts.WithLabelValues(data.Verdict).Inc()
	case VotingFinalized:
		votingFinalized.WithLabelValues(data.Outcome).Inc()
	case FundsReleased:
		fundsReleased.Inc()
		releasedAmount.Add(float64(data.Amount))
	}
}
