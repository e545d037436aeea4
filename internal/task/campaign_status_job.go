package task

import (
	"time"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// CampaignStatusJob 活动状态刷新任务，把已过截止时间的活动标记为
// 成功或失败。只维护管理用状态列，不触碰托管判定
type CampaignStatusJob struct {
	engine *escrow.Engine
	config *config.Config
}

// NewCampaignStatusJob 创建活动状态刷新任务
func NewCampaignStatusJob(engine *escrow.Engine, cfg *config.Config) *CampaignStatusJob {
	return &CampaignStatusJob{
		engine: engine,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *CampaignStatusJob) GetName() string {
	return "campaign_status_sweeper"
}

// GetSchedule 获取调度配置
func (j *CampaignStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignStatusJob) Execute() {
	updated := j.engine.SweepStatuses()
	if updated > 0 {
		logger.Info("Campaign status sweep completed. Updated %d campaigns", updated)
	}
}
