package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/SairajMN/autocrowd/internal/event"
	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/SairajMN/autocrowd/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitMilestone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createCampaign(t, 600, 100, 200)

	// 只有创建者可以提交
	_, err := env.engine.SubmitMilestone(ctx, id, 0, backerA, "QmHash")
	assert.ErrorIs(t, err, ErrNotCreator)
	// 证据哈希必填
	_, err = env.engine.SubmitMilestone(ctx, id, 0, creatorAddr, "")
	assert.ErrorIs(t, err, ErrValidation)
	// 序号越界
	_, err = env.engine.SubmitMilestone(ctx, id, 5, creatorAddr, "QmHash")
	assert.ErrorIs(t, err, ErrMilestoneNotFound)

	requestId, err := env.engine.SubmitMilestone(ctx, id, 0, creatorAddr, "QmHash")
	require.NoError(t, err)
	require.NotEmpty(t, requestId)

	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateSubmitted, m.State)
	assert.Equal(t, "QmHash", m.EvidenceHash)
	assert.Equal(t, env.clock.Now(), m.SubmittedAt)

	// 重复提交被拒
	_, err = env.engine.SubmitMilestone(ctx, id, 0, creatorAddr, "QmHash")
	assert.ErrorIs(t, err, ErrMilestoneNotPending)

	// 提交开启一条待派发的验证请求
	var request model.VerificationRequestModel
	require.NoError(t, env.db.Where("request_id = ?", requestId).First(&request).Error)
	assert.Equal(t, id, request.CampaignId)
	assert.Equal(t, 0, request.MilestoneIndex)
	assert.Equal(t, creatorAddr, request.Requester)
	assert.Equal(t, model.VerificationStatusPending, request.Status)
	assert.False(t, request.IsProcessed)

	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeMilestoneSubmitted))
}

func TestAddMilestone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createCampaign(t, 600, 100, 200)

	index, err := env.engine.AddMilestone(ctx, id, creatorAddr, MilestoneParams{
		Description: "shipping",
		Amount:      300,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	snaps, err := env.engine.Milestones(id)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, model.MilestoneStatePending, snaps[2].State)
	assert.Equal(t, int64(300), snaps[2].Amount)

	// 里程碑额度已顶满预算
	_, err = env.engine.AddMilestone(ctx, id, creatorAddr, MilestoneParams{Amount: 1})
	assert.ErrorIs(t, err, ErrMilestoneBudget)

	_, err = env.engine.AddMilestone(ctx, id, backerA, MilestoneParams{Amount: 1})
	assert.ErrorIs(t, err, ErrNotCreator)
	_, err = env.engine.AddMilestone(ctx, id, creatorAddr, MilestoneParams{})
	assert.ErrorIs(t, err, ErrValidation)

	var rows int64
	env.db.Model(&model.MilestoneModel{}).Where("campaign_id = ?", id).Count(&rows)
	assert.Equal(t, int64(3), rows)
	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeMilestoneAdded))

	// 活动截止后不能追加
	late := env.createCampaign(t, 600, 100)
	env.clock.Advance(49 * time.Hour)
	_, err = env.engine.AddMilestone(ctx, late, creatorAddr, MilestoneParams{Amount: 100})
	assert.ErrorIs(t, err, ErrCampaignEnded)
}

func TestApplyVerdictApprovedReleasesFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createCampaign(t, 600, 100, 200, 300)
	env.contribute(t, id, backerA, 600)
	requestId := env.submitMilestone(t, id, 0)

	err := env.engine.ApplyVerdict(ctx, VerdictParams{
		CampaignId:     id,
		MilestoneIndex: 0,
		Caller:         oracleAddr,
		Verdict:        oracle.VerdictApproved,
		Confidence:     0.93,
		ReportHash:     "QmReport",
		RequestId:      requestId,
	})
	require.NoError(t, err)

	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateApproved, m.State)
	assert.True(t, m.FundsReleased)
	assert.NotEmpty(t, m.ReleaseTxHash)

	s, err := env.engine.CampaignSummary(id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), s.Released)
	assert.Equal(t, int64(500), s.EscrowBalance)

	// 资金实际到达创建者
	assert.Equal(t, int64(100), env.balance(t, creatorAddr))
	assert.Equal(t, int64(500), env.balance(t, env.gateway.EscrowAddress()))

	// 验证请求关联了裁决结果
	var request model.VerificationRequestModel
	require.NoError(t, env.db.Where("request_id = ?", requestId).First(&request).Error)
	assert.True(t, request.IsProcessed)
	assert.True(t, request.IsApproved)
	assert.Equal(t, string(oracle.VerdictApproved), request.Verdict)
	assert.Equal(t, "QmReport", request.ReportHash)

	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeMilestoneVerdict))
	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeFundsReleased))

	// 放款状态落库
	var row model.MilestoneModel
	require.NoError(t, env.db.Where("campaign_id = ? AND milestone_index = ?", id, 0).First(&row).Error)
	assert.Equal(t, model.MilestoneStateApproved, row.State)
	assert.True(t, row.FundsReleased)
	assert.Equal(t, m.ReleaseTxHash, row.ReleaseTxHash)
	var campaignRow model.CampaignModel
	require.NoError(t, env.db.First(&campaignRow, id).Error)
	assert.Equal(t, int64(100), campaignRow.ReleasedAmount)

	// 已定局的里程碑拒绝第二次裁决
	err = env.engine.ApplyVerdict(ctx, VerdictParams{
		CampaignId:     id,
		MilestoneIndex: 0,
		Caller:         oracleAddr,
		Verdict:        oracle.VerdictRejected,
	})
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	// 重复放款不会发生
	assert.Equal(t, int64(100), env.balance(t, creatorAddr))
}

func TestApplyVerdictRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createCampaign(t, 600, 100)
	env.contribute(t, id, backerA, 200)
	requestId := env.submitMilestone(t, id, 0)

	err := env.engine.ApplyVerdict(ctx, VerdictParams{
		CampaignId:     id,
		MilestoneIndex: 0,
		Caller:         oracleAddr,
		Verdict:        oracle.VerdictRejected,
		Confidence:     0.1,
		RequestId:      requestId,
	})
	require.NoError(t, err)

	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateRejected, m.State)
	assert.False(t, m.FundsReleased)

	// 资金原地不动
	assert.Equal(t, int64(0), env.balance(t, creatorAddr))
	assert.Equal(t, int64(200), env.balance(t, env.gateway.EscrowAddress()))

	// 拒绝即定局，不能重新提交
	_, err = env.engine.SubmitMilestone(ctx, id, 0, creatorAddr, "QmHash2")
	assert.ErrorIs(t, err, ErrMilestoneNotPending)

	var request model.VerificationRequestModel
	require.NoError(t, env.db.Where("request_id = ?", requestId).First(&request).Error)
	assert.True(t, request.IsProcessed)
	assert.False(t, request.IsApproved)
}

func TestApplyVerdictUncertainOpensVoting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createCampaign(t, 600, 100)
	env.contribute(t, id, backerA, 100)
	env.submitMilestone(t, id, 0)
	env.applyVerdict(t, id, 0, oracle.VerdictUncertain)

	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateSubmitted, m.State)
	assert.Equal(t, env.clock.Now().Add(72*time.Hour), m.VotingEnd)
	assert.False(t, m.FundsReleased)

	// 投票一旦开启，不再接受裁决
	err = env.engine.ApplyVerdict(ctx, VerdictParams{
		CampaignId:     id,
		MilestoneIndex: 0,
		Caller:         oracleAddr,
		Verdict:        oracle.VerdictApproved,
		Confidence:     0.99,
	})
	assert.ErrorIs(t, err, ErrVotingStillOpen)

	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeMilestoneVerdict))
	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeVotingOpened))

	// 投票窗口落库
	var row model.MilestoneModel
	require.NoError(t, env.db.Where("campaign_id = ? AND milestone_index = ?", id, 0).First(&row).Error)
	assert.False(t, row.VotingEnd.IsZero())
}

func TestApplyVerdictGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createCampaign(t, 600, 100)
	env.contribute(t, id, backerA, 600)

	verdict := func(campaignId int64, index int, caller string, v oracle.Verdict) error {
		return env.engine.ApplyVerdict(ctx, VerdictParams{
			CampaignId:     campaignId,
			MilestoneIndex: index,
			Caller:         caller,
			Verdict:        v,
			Confidence:     0.9,
		})
	}

	// 非法裁决值在鉴权前就被拒
	assert.ErrorIs(t, verdict(id, 0, oracleAddr, oracle.Verdict("maybe")), ErrValidation)
	// 非预言机身份
	assert.ErrorIs(t, verdict(id, 0, backerA, oracle.VerdictApproved), ErrNotOracle)
	// 未提交的里程碑没有裁决可言
	assert.ErrorIs(t, verdict(id, 0, oracleAddr, oracle.VerdictApproved), ErrMilestoneNotSubmitted)

	assert.ErrorIs(t, verdict(999, 0, oracleAddr, oracle.VerdictApproved), ErrCampaignNotFound)
	assert.ErrorIs(t, verdict(id, 7, oracleAddr, oracle.VerdictApproved), ErrMilestoneNotFound)
}

func TestApplyVerdictInsufficientEscrow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createCampaign(t, 600, 500)
	env.contribute(t, id, backerA, 100)
	env.submitMilestone(t, id, 0)

	err := env.engine.ApplyVerdict(ctx, VerdictParams{
		CampaignId:     id,
		MilestoneIndex: 0,
		Caller:         oracleAddr,
		Verdict:        oracle.VerdictApproved,
		Confidence:     0.9,
	})
	assert.ErrorIs(t, err, ErrInsufficientEscrow)

	// 托管池不足不改变里程碑状态
	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateSubmitted, m.State)
	assert.Equal(t, int64(0), env.balance(t, creatorAddr))

	// 募集补足后可以重新裁决
	env.contribute(t, id, backerB, 400)
	env.applyVerdict(t, id, 0, oracle.VerdictApproved)
	assert.Equal(t, int64(500), env.balance(t, creatorAddr))

	s, err := env.engine.CampaignSummary(id)
	require.NoError(t, err)
	assert.Equal(t, int64(500), s.Released)
	assert.Equal(t, int64(0), s.EscrowBalance)
}
