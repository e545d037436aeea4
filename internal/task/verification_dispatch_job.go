package task

import (
	"context"
	"time"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/logic"
	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/SairajMN/autocrowd/internal/oracle"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// 每个调度周期处理的验证请求上限
const dispatchBatchSize = 20

// VerificationDispatchJob 验证派发任务。扫描未处理的验证请求，
// 调用验证服务并把翻译后的裁决应用到引擎。派发失败的请求留待
// 下个周期重试；耗尽尝试次数的请求按不确定裁决转入支持者投票
type VerificationDispatchJob struct {
	db                *gorm.DB
	engine            *escrow.Engine
	oracleClient      *oracle.Client
	verificationLogic *logic.VerificationLogic
	config            *config.Config
}

// NewVerificationDispatchJob 创建验证派发任务
func NewVerificationDispatchJob(db *gorm.DB, engine *escrow.Engine, oracleClient *oracle.Client, cfg *config.Config) *VerificationDispatchJob {
	return &VerificationDispatchJob{
		db:                db,
		engine:            engine,
		oracleClient:      oracleClient,
		verificationLogic: logic.NewVerificationLogic(db),
		config:            cfg,
	}
}

// GetName 获取任务名称
func (j *VerificationDispatchJob) GetName() string {
	return "verification_dispatcher"
}

// GetSchedule 获取调度配置
func (j *VerificationDispatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.DispatchInterval) * time.Second)
}

// Execute 执行任务
func (j *VerificationDispatchJob) Execute() {
	maxAttempts := j.config.Oracle.MaxAttempts

	requests, err := j.verificationLogic.GetDispatchableRequests(maxAttempts, dispatchBatchSize)
	if err != nil {
		logger.Error("Failed to fetch dispatchable verification requests: %v", err)
		return
	}

	dispatched := 0
	for i := range requests {
		if j.dispatch(&requests[i]) {
			dispatched++
		}
	}
	if dispatched > 0 {
		logger.Info("Verification dispatch completed. Processed %d requests", dispatched)
	}

	j.resolveExhausted(maxAttempts)
}

// dispatch 派发单个验证请求，返回裁决是否已应用
func (j *VerificationDispatchJob) dispatch(request *model.VerificationRequestModel) bool {
	ctx := context.Background()

	// 先记一次尝试，进程中途崩溃也不会超出尝试上限
	if err := j.verificationLogic.MarkDispatched(request.Id, time.Now()); err != nil {
		logger.Error("Failed to mark verification request %s dispatched: %v", request.RequestId, err)
		return false
	}

	snapshot, err := j.engine.MilestoneInfo(request.CampaignId, request.MilestoneIndex)
	if err != nil {
		logger.Error("Failed to load milestone for verification request %s: %v", request.RequestId, err)
		return false
	}

	result, err := j.oracleClient.Verify(ctx, oracle.VerifyRequest{
		RequestId:      request.RequestId,
		CampaignId:     request.CampaignId,
		MilestoneIndex: request.MilestoneIndex,
		Description:    snapshot.Description,
		EvidenceHash:   request.EvidenceHash,
	})
	if err != nil {
		logger.Warn("Verification request %s failed (attempt %d/%d): %v",
			request.RequestId, request.Attempts+1, j.config.Oracle.MaxAttempts, err)
		return false
	}

	verdict := j.oracleClient.Translate(result)
	err = j.engine.ApplyVerdict(ctx, escrow.VerdictParams{
		CampaignId:     request.CampaignId,
		MilestoneIndex: request.MilestoneIndex,
		Caller:         j.engine.OracleAddress(),
		Verdict:        verdict,
		Confidence:     result.Confidence,
		ReportHash:     result.ReportHash,
		RequestId:      request.RequestId,
	})
	if err != nil {
		logger.Error("Failed to apply verdict %s for request %s: %v", verdict, request.RequestId, err)
		return false
	}

	logger.Info("Applied verdict %s (confidence %.2f) for campaign %d milestone %d",
		verdict, result.Confidence, request.CampaignId, request.MilestoneIndex)
	return true
}

// resolveExhausted 把耗尽尝试次数的请求按不确定裁决处理，转入投票
func (j *VerificationDispatchJob) resolveExhausted(maxAttempts int) {
	requests, err := j.verificationLogic.GetExhaustedRequests(maxAttempts, dispatchBatchSize)
	if err != nil {
		logger.Error("Failed to fetch exhausted verification requests: %v", err)
		return
	}

	for i := range requests {
		request := &requests[i]
		logger.Warn("Verification request %s exhausted %d attempts, falling back to backer voting",
			request.RequestId, request.Attempts)

		err := j.engine.ApplyVerdict(context.Background(), escrow.VerdictParams{
			CampaignId:     request.CampaignId,
			MilestoneIndex: request.MilestoneIndex,
			Caller:         j.engine.OracleAddress(),
			Verdict:        oracle.VerdictUncertain,
			RequestId:      request.RequestId,
		})
		if err != nil {
			logger.Error("Failed to open voting for exhausted request %s: %v", request.RequestId, err)
		}
	}
}
