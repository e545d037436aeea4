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

// openVoting 铺设一条进入投票子阶段的活动：目标1000，单个里程碑300，
// 出资后提交证据并施加不确定裁决
func openVoting(t *testing.T, env *testEnv, contributions map[string]int64) int64 {
	t.Helper()

	id := env.createCampaign(t, 1000, 300)
	for addr, amount := range contributions {
		env.contribute(t, id, addr, amount)
	}
	env.submitMilestone(t, id, 0)
	env.applyVerdict(t, id, 0, oracle.VerdictUncertain)
	return id
}

func TestCastVote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := openVoting(t, env, map[string]int64{backerA: 200, backerB: 100})

	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerA, true))
	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerB, false))

	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(200), m.YesWeight)
	assert.Equal(t, int64(100), m.NoWeight)
	assert.Equal(t, 2, m.VoteCount)

	// 一人一票
	assert.ErrorIs(t, env.engine.CastVote(ctx, id, 0, backerA, false), ErrAlreadyVoted)
	// 非支持者没有投票资格
	assert.ErrorIs(t, env.engine.CastVote(ctx, id, 0, backerC, true), ErrNotEligibleToVote)
	assert.ErrorIs(t, env.engine.CastVote(ctx, id, 0, "", true), ErrValidation)

	// 投票行与权重列落库
	var votes int64
	env.db.Model(&model.MilestoneVoteModel{}).Where("campaign_id = ? AND milestone_index = ?", id, 0).Count(&votes)
	assert.Equal(t, int64(2), votes)
	var row model.MilestoneModel
	require.NoError(t, env.db.Where("campaign_id = ? AND milestone_index = ?", id, 0).First(&row).Error)
	assert.Equal(t, int64(200), row.YesWeight)
	assert.Equal(t, int64(100), row.NoWeight)
}

func TestCastVoteWindowGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createCampaign(t, 600, 100)
	env.contribute(t, id, backerA, 100)

	// 待提交阶段没有投票
	assert.ErrorIs(t, env.engine.CastVote(ctx, id, 0, backerA, true), ErrVotingNotOpen)

	// 已提交但未进入投票子阶段
	env.submitMilestone(t, id, 0)
	assert.ErrorIs(t, env.engine.CastVote(ctx, id, 0, backerA, true), ErrVotingNotOpen)

	env.applyVerdict(t, id, 0, oracle.VerdictUncertain)
	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerA, true))

	// 窗口结束后投票被拒
	env.clock.Advance(73 * time.Hour)
	assert.ErrorIs(t, env.engine.CastVote(ctx, id, 0, backerA, false), ErrVotingClosed)
}

func TestVoteWeightFixedAtVoteTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := openVoting(t, env, map[string]int64{backerA: 100, backerB: 50})

	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerA, true))

	// 投票后追加出资不改变已计入的权重
	env.contribute(t, id, backerA, 150)
	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), m.YesWeight)

	// 后投票的支持者按投票时刻的余额计权
	env.contribute(t, id, backerB, 100)
	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerB, false))
	m, err = env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(150), m.NoWeight)
}

func TestFinalizeVotingApproves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := openVoting(t, env, map[string]int64{backerA: 200, backerB: 100})

	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerA, true))
	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerB, false))

	// 窗口未结束不能定局
	assert.ErrorIs(t, env.engine.FinalizeVoting(ctx, id, 0), ErrVotingStillOpen)

	env.clock.Advance(73 * time.Hour)
	require.NoError(t, env.engine.FinalizeVoting(ctx, id, 0))

	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateApproved, m.State)
	assert.True(t, m.FundsReleased)

	assert.Equal(t, int64(300), env.balance(t, creatorAddr))
	s, err := env.engine.CampaignSummary(id)
	require.NoError(t, err)
	assert.Equal(t, int64(300), s.Released)
	assert.Equal(t, int64(0), s.EscrowBalance)

	// 重复定局被拒
	assert.ErrorIs(t, env.engine.FinalizeVoting(ctx, id, 0), ErrAlreadyFinalized)
	assert.Equal(t, int64(300), env.balance(t, creatorAddr))

	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeVotingFinalized))
	assert.Equal(t, int64(1), env.eventCount(t, id, event.TypeFundsReleased))
}

func TestFinalizeVotingTieRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := openVoting(t, env, map[string]int64{backerA: 150, backerB: 150})

	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerA, true))
	require.NoError(t, env.engine.CastVote(ctx, id, 0, backerB, false))

	env.clock.Advance(73 * time.Hour)
	require.NoError(t, env.engine.FinalizeVoting(ctx, id, 0))

	// 平票按拒绝处理
	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateRejected, m.State)
	assert.False(t, m.FundsReleased)
	assert.Equal(t, int64(0), env.balance(t, creatorAddr))
	assert.Equal(t, int64(300), env.balance(t, env.gateway.EscrowAddress()))
}

func TestFinalizeVotingNoVotesRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := openVoting(t, env, map[string]int64{backerA: 300})

	env.clock.Advance(73 * time.Hour)
	require.NoError(t, env.engine.FinalizeVoting(ctx, id, 0))

	// 零参与按拒绝处理，资金原地不动
	m, err := env.engine.MilestoneInfo(id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStateRejected, m.State)
	assert.Equal(t, int64(0), env.balance(t, creatorAddr))

	var row model.MilestoneModel
	require.NoError(t, env.db.Where("campaign_id = ? AND milestone_index = ?", id, 0).First(&row).Error)
	assert.Equal(t, model.MilestoneStateRejected, row.State)
}

func TestFinalizeVotingGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createCampaign(t, 600, 100)
	env.contribute(t, id, backerA, 100)

	// 投票未开启无从定局
	assert.ErrorIs(t, env.engine.FinalizeVoting(ctx, id, 0), ErrVotingNotOpen)
	env.submitMilestone(t, id, 0)
	assert.ErrorIs(t, env.engine.FinalizeVoting(ctx, id, 0), ErrVotingNotOpen)

	assert.ErrorIs(t, env.engine.FinalizeVoting(ctx, 999, 0), ErrCampaignNotFound)
	assert.ErrorIs(t, env.engine.FinalizeVoting(ctx, id, 7), ErrMilestoneNotFound)
}
