package escrow

import (
	"context"
	"fmt"
	"strings"

	"github.com/SairajMN/autocrowd/internal/event"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/SairajMN/autocrowd/internal/oracle"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmitMilestone 创建者提交里程碑证据，开启一条验证请求。返回请求ID
func (e *Engine) SubmitMilestone(ctx context.Context, campaignId int64, index int, caller string, evidenceHash string) (string, error) {
	if evidenceHash == "" {
		return "", fmt.Errorf("%w: evidence hash required", ErrValidation)
	}

	c, err := e.getCampaign(campaignId)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.EqualFold(caller, c.Creator) {
		return "", ErrNotCreator
	}
	m, ok := c.milestone(index)
	if !ok {
		return "", ErrMilestoneNotFound
	}
	if m.State != model.MilestoneStatePending {
		return "", ErrMilestoneNotPending
	}

	now := e.now()
	requestId := uuid.NewString()

	err = e.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.MilestoneModel{}).
			Where("campaign_id = ? AND milestone_index = ?", c.Id, index).
			Updates(map[string]interface{}{
				"state":         model.MilestoneStateSubmitted,
				"submitted_at":  now,
				"evidence_hash": evidenceHash,
			}).Error
		if err != nil {
			return err
		}

		request := model.VerificationRequestModel{
			RequestId:      requestId,
			CampaignId:     c.Id,
			MilestoneIndex: index,
			Requester:      caller,
			EvidenceHash:   evidenceHash,
			Status:         model.VerificationStatusPending,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		fact := event.MilestoneSubmitted{
			CampaignId:     c.Id,
			MilestoneIndex: index,
			EvidenceHash:   evidenceHash,
			RequestId:      requestId,
		}
		return journalEvent(tx, event.TypeMilestoneSubmitted, c.Id, index, caller, 0, fact)
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit milestone: %w", err)
	}

	m.State = model.MilestoneStateSubmitted
	m.SubmittedAt = now
	m.EvidenceHash = evidenceHash

	e.publish(event.TypeMilestoneSubmitted, event.MilestoneSubmitted{
		CampaignId:     c.Id,
		MilestoneIndex: index,
		EvidenceHash:   evidenceHash,
		RequestId:      requestId,
	})

	return requestId, nil
}

// AddMilestone 创建者在活动截止前追加一个待提交里程碑。返回新序号
func (e *Engine) AddMilestone(ctx context.Context, campaignId int64, caller string, params MilestoneParams) (int, error) {
	if params.Amount <= 0 {
		return 0, fmt.Errorf("%w: milestone amount must be positive", ErrValidation)
	}

	c, err := e.getCampaign(campaignId)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.EqualFold(caller, c.Creator) {
		return 0, ErrNotCreator
	}
	if !e.now().Before(c.EndTime) {
		return 0, ErrCampaignEnded
	}

	var allocated int64
	for _, m := range c.milestones {
		allocated += m.Amount
	}
	if allocated+params.Amount > c.Goal {
		return 0, ErrMilestoneBudget
	}

	index := len(c.milestones)

	err = e.db.Transaction(func(tx *gorm.DB) error {
		row := model.MilestoneModel{
			CampaignId:     c.Id,
			MilestoneIndex: index,
			Description:    params.Description,
			Amount:         params.Amount,
			Deadline:       params.Deadline,
			State:          model.MilestoneStatePending,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		fact := event.MilestoneAdded{
			CampaignId:     c.Id,
			MilestoneIndex: index,
			Amount:         params.Amount,
		}
		return journalEvent(tx, event.TypeMilestoneAdded, c.Id, index, caller, params.Amount, fact)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add milestone: %w", err)
	}

	c.milestones = append(c.milestones, &Milestone{
		Index:       index,
		Description: params.Description,
		Amount:      params.Amount,
		Deadline:    params.Deadline,
		State:       model.MilestoneStatePending,
		votes:       make(map[string]bool),
	})

	e.publish(event.TypeMilestoneAdded, event.MilestoneAdded{
		CampaignId:     c.Id,
		MilestoneIndex: index,
		Amount:         params.Amount,
	})

	return index, nil
}

// VerdictParams 预言机裁决参数
type VerdictParams struct {
	CampaignId     int64
	MilestoneIndex int
	Caller         string
	Verdict        oracle.Verdict
	Confidence     float64
	ReportHash     string
	// RequestId 可选，给出时只标记匹配的验证请求
	RequestId string
}

// ApplyVerdict 应用预言机裁决。批准触发放款，拒绝定局，
// 不确定开启投票窗口。仅配置的预言机身份可调用
func (e *Engine) ApplyVerdict(ctx context.Context, params VerdictParams) error {
	switch params.Verdict {
	case oracle.VerdictApproved, oracle.VerdictRejected, oracle.VerdictUncertain:
	default:
		return fmt.Errorf("%w: unknown verdict %q", ErrValidation, params.Verdict)
	}
	if !strings.EqualFold(params.Caller, e.oracleAddress) {
		return ErrNotOracle
	}

	c, err := e.getCampaign(params.CampaignId)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.milestone(params.MilestoneIndex)
	if !ok {
		return ErrMilestoneNotFound
	}
	if m.finalized() {
		return ErrAlreadyFinalized
	}
	if m.State != model.MilestoneStateSubmitted {
		return ErrMilestoneNotSubmitted
	}
	// 投票一旦开启，唯一出口是finalizeVoting，不再接受裁决
	if m.votingOpen() {
		return ErrVotingStillOpen
	}

	verdictFact := event.MilestoneVerdict{
		CampaignId:     c.Id,
		MilestoneIndex: m.Index,
		Verdict:        string(params.Verdict),
		Confidence:     params.Confidence,
		ReportHash:     params.ReportHash,
	}

	switch params.Verdict {
	case oracle.VerdictApproved:
		if m.FundsReleased {
			return ErrAlreadyReleased
		}
		if c.escrowBalance() < m.Amount {
			return ErrInsufficientEscrow
		}

		var txHash string
		err = e.db.Transaction(func(tx *gorm.DB) error {
			if err := journalEvent(tx, event.TypeMilestoneVerdict, c.Id, m.Index, params.Caller, 0, verdictFact); err != nil {
				return err
			}
			if err := markRequestProcessed(tx, c.Id, m.Index, params.RequestId, params.Verdict, params.Confidence, params.ReportHash); err != nil {
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
			return fmt.Errorf("failed to apply verdict: %w", err)
		}

		e.applyPayout(c, m, txHash)
		e.publish(event.TypeMilestoneVerdict, verdictFact)
		e.publish(event.TypeFundsReleased, event.FundsReleased{
			CampaignId:     c.Id,
			MilestoneIndex: m.Index,
			Amount:         m.Amount,
			Recipient:      c.Creator,
			TxHash:         txHash,
		})
		return nil

	case oracle.VerdictRejected:
		err = e.db.Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&model.MilestoneModel{}).
				Where("campaign_id = ? AND milestone_index = ?", c.Id, m.Index).
				Update("state", model.MilestoneStateRejected).Error
			if err != nil {
				return err
			}
			if err := journalEvent(tx, event.TypeMilestoneVerdict, c.Id, m.Index, params.Caller, 0, verdictFact); err != nil {
				return err
			}
			return markRequestProcessed(tx, c.Id, m.Index, params.RequestId, params.Verdict, params.Confidence, params.ReportHash)
		})
		if err != nil {
			return fmt.Errorf("failed to apply verdict: %w", err)
		}

		m.State = model.MilestoneStateRejected
		e.publish(event.TypeMilestoneVerdict, verdictFact)
		return nil

	default: // 不确定，开启投票
		votingEnd := e.now().Add(e.votingPeriod)
		votingFact := event.VotingOpened{
			CampaignId:     c.Id,
			MilestoneIndex: m.Index,
			VotingEnd:      votingEnd,
		}

		err = e.db.Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&model.MilestoneModel{}).
				Where("campaign_id = ? AND milestone_index = ?", c.Id, m.Index).
				Update("voting_end", votingEnd).Error
			if err != nil {
				return err
			}
			if err := journalEvent(tx, event.TypeMilestoneVerdict, c.Id, m.Index, params.Caller, 0, verdictFact); err != nil {
				return err
			}
			if err := journalEvent(tx, event.TypeVotingOpened, c.Id, m.Index, "", 0, votingFact); err != nil {
				return err
			}
			return markRequestProcessed(tx, c.Id, m.Index, params.RequestId, params.Verdict, params.Confidence, params.ReportHash)
		})
		if err != nil {
			return fmt.Errorf("failed to apply verdict: %w", err)
		}

		m.VotingEnd = votingEnd
		e.publish(event.TypeMilestoneVerdict, verdictFact)
		e.publish(event.TypeVotingOpened, votingFact)
		return nil
	}
}

// payoutInTx 在调用方事务内执行放款：写状态行，向创建者推送资金，
// 记录交易哈希与放款事实。推送失败时整个事务回滚。
// 调用方须持有活动写锁并已通过AlreadyReleased与余量校验
func (e *Engine) payoutInTx(ctx context.Context, tx *gorm.DB, c *Campaign, m *Milestone) (string, error) {
	err := tx.Model(&model.MilestoneModel{}).
		Where("campaign_id = ? AND milestone_index = ?", c.Id, m.Index).
		Updates(map[string]interface{}{
			"state":          model.MilestoneStateApproved,
			"funds_released": true,
		}).Error
	if err != nil {
		return "", err
	}

	err = tx.Model(&model.CampaignModel{}).
		Where("id = ?", c.Id).
		Update("released_amount", gorm.Expr("released_amount + ?", m.Amount)).Error
	if err != nil {
		return "", err
	}

	txHash, err := e.gateway.Transfer(ctx, c.Creator, m.Amount)
	if err != nil {
		return "", err
	}

	err = tx.Model(&model.MilestoneModel{}).
		Where("campaign_id = ? AND milestone_index = ?", c.Id, m.Index).
		Update("release_tx_hash", txHash).Error
	if err != nil {
		return txHash, err
	}

	fact := event.FundsReleased{
		CampaignId:     c.Id,
		MilestoneIndex: m.Index,
		Amount:         m.Amount,
		Recipient:      c.Creator,
		TxHash:         txHash,
	}
	if err := journalEvent(tx, event.TypeFundsReleased, c.Id, m.Index, c.Creator, m.Amount, fact); err != nil {
		return txHash, err
	}

	return txHash, nil
}

// applyPayout 把放款结果写入内存状态，调用方须持有活动写锁
func (e *Engine) applyPayout(c *Campaign, m *Milestone, txHash string) {
	m.State = model.MilestoneStateApproved
	m.FundsReleased = true
	m.ReleaseTxHash = txHash
	c.Released += m.Amount
}

// markRequestProcessed 标记匹配的验证请求为已处理
func markRequestProcessed(tx *gorm.DB, campaignId int64, index int, requestId string, verdict oracle.Verdict, confidence float64, reportHash string) error {
	q := tx.Model(&model.VerificationRequestModel{}).
		Where("campaign_id = ? AND milestone_index = ? AND is_processed = ?", campaignId, index, false)
	if requestId != "" {
		q = q.Where("request_id = ?", requestId)
	}
	return q.Updates(map[string]interface{}{
		"status":       model.VerificationStatusProcessed,
		"is_processed": true,
		"is_approved":  verdict == oracle.VerdictApproved,
		"verdict":      string(verdict),
		"confidence":   confidence,
		"report_hash":  reportHash,
	}).Error
}
