package task

import (
	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/oracle"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job 周期任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器，持有调度器和注册的周期任务
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []Job
}

// NewManager 创建任务管理器并装配所有周期任务
func NewManager(db *gorm.DB, engine *escrow.Engine, oracleClient *oracle.Client, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		jobs: []Job{
			NewCampaignStatusJob(engine, cfg),
			NewVerificationDispatchJob(db, engine, oracleClient, cfg),
		},
	}
}

// Start 注册全部任务并启动调度器
func Start(db *gorm.DB, engine *escrow.Engine, oracleClient *oracle.Client, cfg *config.Config) *Manager {
	manager := NewManager(db, engine, oracleClient, cfg)

	for _, job := range manager.jobs {
		manager.register(job)
	}
	manager.scheduler.Start()

	logger.Info("Task manager started with %d jobs", len(manager.jobs))
	return manager
}

// register 把单个任务挂到调度器上。同名任务不并发执行，
// 超时的轮次顺延而不是堆积
func (m *Manager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
