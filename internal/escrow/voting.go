package escrow

import (
	"context"
	"fmt"

	"github.com/SairajMN/autocrowd/internal/event"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/model"
	"gorm.io/gorm"
)

// CastVote 支持者在投票窗口内对里程碑投票，权重取投票时刻的出资额。
// 每个地址每个里程碑只能投一次
func (e *Engine) CastVote(ctx context.Context, campaignId int64, index int, backer string, approve bool) error {
	if backer == "" {
		return fmt.Errorf("%w: backer address required", ErrValidation)
	}

	c, err := e.getCampaign(campaignId)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.milestone(index)
	if !ok {
		return ErrMilestoneNotFound
	}
	if !m.votingOpen() {
		return ErrVotingNotOpen
	}
	if !e.now().Before(m.VotingEnd) {
		return ErrVotingClosed
	}

	entry := c.contributionOf(backer)
	if entry.Amount <= 0 {
		return ErrNotEligibleToVote
	}
	if _, voted := m.votes[backer]; voted {
		return ErrAlreadyVoted
	}

	weight := entry.Amount
	weightColumn := "no_weight"
	if approve {
		weightColumn = "yes_weight"
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		row := model.MilestoneVoteModel{
			CampaignId:     c.Id,
			MilestoneIndex: index,
			Address:        backer,
			Approve:        approve,
			Weight:         weight,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		return tx.Model(&model.MilestoneModel{}).
			Where("campaign_id = ? AND milestone_index = ?", c.Id, index).
			Update(weightColumn, gorm.Expr(weightColumn+" + ?", weight)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	m.votes[backer] = approve
	if approve {
		m.YesWeight += weight
	} else {
		m.NoWeight += weight
	}

	return nil
}

// FinalizeVoting 投票窗口结束后定局：赞成权重严格大于反对则放款，
// 否则拒绝。平票与零票按拒绝处理。任何人都可调用
func (e *Engine) FinalizeVoting(ctx context.Context, campaignId int64, index int) error {
	c, err := e.getCampaign(campaignId)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.milestone(index)
	if !ok {
		return ErrMilestoneNotFound
	}
	if m.finalized() {
		return ErrAlreadyFinalized
	}
	if !m.votingOpen() {
		return ErrVotingNotOpen
	}
	if e.now().Before(m.VotingEnd) {
		return ErrVotingStillOpen
	}

	approved := m.YesWeight > m.NoWeight
	outcome := model.MilestoneStateRejected
	if approved {
		outcome = model.MilestoneStateApproved
	}

	fact := event.VotingFinalized{
		CampaignId:     c.Id,
		MilestoneIndex: m.Index,
		Outcome:        string(outcome),
		YesWeight:      m.YesWeight,
		NoWeight:       m.NoWeight,
	}

	if !approved {
		err = e.db.Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&model.MilestoneModel{}).
				Where("campaign_id = ? AND milestone_index = ?", c.Id, m.Index).
				Update("state", model.MilestoneStateRejected).Error
			if err != nil {
				return err
			}
			return journalEvent(tx, event.TypeVotingFinalized, c.Id, m.Index, "", 0, fact)
		})
		if err != nil {
			return fmt.Errorf("failed to finalize voting: %w", err)
		}

		m.State = model.MilestoneStateRejected
		e.publish(event.TypeVotingFinalized, fact)
		return nil
	}

	if m.FundsReleased {
		return ErrAlreadyReleased
	}
	if c.escrowBalance() < m.Amount {
		return ErrInsufficientEscrow
	}

	var txHash string
	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := journalEvent(tx, event.TypeVotingFinalized, c.Id, m.Index, "", 0, fact); err != nil {
			return err
		}
		h, err := e.payoutInTx(ctx, tx, c, m)
		if err != nil {
			return err
		}
		txHash = h
		return nil
	})
	if err != nil {
		if txHash != "" {
			// 资金已推送但提交失败：内存按已放款处理，防止重复放款，需人工对账
			logger.Error("CRITICAL: payout transfer %s succeeded but commit failed: campaign=%d milestone=%d amount=%d: %v",
				txHash, c.Id, m.Index, m.Amount, err)
			e.applyPayout(c, m, txHash)
		}
		return fmt.Errorf("failed to finalize voting: %w", err)
	}

	e.applyPayout(c, m, txHash)
	e.publish(event.TypeVotingFinalized, fact)
	e.publish(event.TypeFundsReleased, event.FundsReleased{
		CampaignId:     c.Id,
		MilestoneIndex: m.Index,
		Amount:         m.Amount,
		Recipient:      c.Creator,
		TxHash:         txHash,
	})
	return nil
}
