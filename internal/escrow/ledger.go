package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/SairajMN/autocrowd/internal/event"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/SairajMN/autocrowd/internal/token"
	"gorm.io/gorm"
)

// Contribute 向活动贡献amount。先经网关从支持者拉取资金，再在单个
// 数据库事务中记账；记账失败时把已拉取的资金原路退回
func (e *Engine) Contribute(ctx context.Context, campaignId int64, backer string, amount int64) error {
	if backer == "" {
		return fmt.Errorf("%w: backer address required", ErrValidation)
	}

	c, err := e.getCampaign(campaignId)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if amount <= 0 {
		return ErrZeroAmount
	}
	if !c.canContribute(e.now()) {
		return ErrCampaignClosed
	}
	if c.MinContribution > 0 && amount < c.MinContribution {
		return ErrBelowMinimum
	}
	if c.MaxContribution > 0 && amount > c.MaxContribution {
		return ErrAboveMaximum
	}

	// 网关拉取，授权不足或转账失败原样返回
	txHash, err := e.gateway.TransferFrom(ctx, backer, e.gateway.EscrowAddress(), amount)
	if err != nil {
		return err
	}

	entry := c.contributions[backer]
	firstTime := entry == nil || !entry.IsBacker

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if entry == nil {
			row := model.BackerModel{
				CampaignId: c.Id,
				Address:    backer,
				Amount:     amount,
				IsBacker:   true,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else {
			err := tx.Model(&model.BackerModel{}).
				Where("campaign_id = ? AND address = ?", c.Id, backer).
				Updates(map[string]interface{}{
					"amount":    gorm.Expr("amount + ?", amount),
					"is_backer": true,
				}).Error
			if err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"raised_amount": gorm.Expr("raised_amount + ?", amount),
		}
		if firstTime {
			updates["backer_count"] = gorm.Expr("backer_count + 1")
		}
		err := tx.Model(&model.CampaignModel{}).Where("id = ?", c.Id).Updates(updates).Error
		if err != nil {
			return err
		}

		record := model.ContributionRecordModel{
			CampaignId: c.Id,
			Address:    backer,
			Amount:     amount,
			TxHash:     txHash,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		fact := event.ContributionRecorded{
			CampaignId:     c.Id,
			Backer:         backer,
			Amount:         amount,
			NewRaisedTotal: c.Raised + amount,
			TxHash:         txHash,
		}
		return journalEvent(tx, event.TypeContributionRecorded, c.Id, -1, backer, amount, fact)
	})
	if err != nil {
		// 资金已拉取但记账失败，原路退回。请求上下文可能已取消，退回用独立上下文
		if _, cerr := e.gateway.Transfer(context.Background(), backer, amount); cerr != nil {
			logger.Error("CRITICAL: failed to return contribution after commit failure: campaign=%d backer=%s amount=%d pull_tx=%s: %v",
				c.Id, backer, amount, txHash, cerr)
		} else {
			logger.Warn("Returned contribution after commit failure: campaign=%d backer=%s amount=%d", c.Id, backer, amount)
		}
		return fmt.Errorf("failed to record contribution: %w", err)
	}

	if entry == nil {
		entry = &Contribution{}
		c.contributions[backer] = entry
	}
	entry.Amount += amount
	entry.IsBacker = true
	c.Raised += amount
	if firstTime {
		c.BackerCount++
	}

	e.publish(event.TypeContributionRecorded, event.ContributionRecorded{
		CampaignId:     c.Id,
		Backer:         backer,
		Amount:         amount,
		NewRaisedTotal: c.Raised,
		TxHash:         txHash,
	})

	return nil
}

// ClaimRefund 在活动失败后全额退款，返回退款金额。状态行、网关推送与
// 流水行在同一事务内完成，推送失败则整体回滚，不留下部分效果
func (e *Engine) ClaimRefund(ctx context.Context, campaignId int64, backer string) (int64, error) {
	if backer == "" {
		return 0, fmt.Errorf("%w: backer address required", ErrValidation)
	}

	c, err := e.getCampaign(campaignId)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.canRefund(e.now()) {
		return 0, ErrRefundNotYetAvailable
	}
	entry := c.contributions[backer]
	if entry == nil || entry.Amount == 0 {
		return 0, ErrNothingToRefund
	}
	amount := entry.Amount

	var txHash string
	err = e.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.BackerModel{}).
			Where("campaign_id = ? AND address = ?", c.Id, backer).
			Update("amount", 0).Error
		if err != nil {
			return err
		}

		err = tx.Model(&model.CampaignModel{}).
			Where("id = ?", c.Id).
			Update("raised_amount", gorm.Expr("raised_amount - ?", amount)).Error
		if err != nil {
			return err
		}

		// 推送退款，失败则回滚上面的状态行
		h, err := e.gateway.Transfer(ctx, backer, amount)
		if err != nil {
			return err
		}
		txHash = h

		record := model.RefundRecordModel{
			CampaignId: c.Id,
			Address:    backer,
			Amount:     amount,
			TxHash:     txHash,
			Status:     model.RefundStatusSuccess,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		fact := event.RefundClaimed{
			CampaignId: c.Id,
			Backer:     backer,
			Amount:     amount,
			TxHash:     txHash,
		}
		return journalEvent(tx, event.TypeRefundClaimed, c.Id, -1, backer, amount, fact)
	})
	if err != nil {
		if txHash != "" {
			// 资金已推送但记账未提交，无法拉回。内存按已退款处理，
			// 防止同一支持者重复退款，需人工对账
			logger.Error("CRITICAL: refund transfer %s succeeded but record commit failed: campaign=%d backer=%s amount=%d: %v",
				txHash, c.Id, backer, amount, err)
			entry.Amount = 0
			c.Raised -= amount
		} else if errors.Is(err, token.ErrInsufficientBalance) || errors.Is(err, token.ErrTransferFailed) {
			// 推送被网关拒绝，账本已回滚。失败尝试留痕，退款可重试
			attempt := model.RefundRecordModel{
				CampaignId: c.Id,
				Address:    backer,
				Amount:     amount,
				Status:     model.RefundStatusFailed,
			}
			if dbErr := e.db.Create(&attempt).Error; dbErr != nil {
				logger.Warn("Failed to record refund attempt: campaign=%d backer=%s: %v", c.Id, backer, dbErr)
			}
		}
		return 0, fmt.Errorf("failed to claim refund: %w", err)
	}

	entry.Amount = 0
	c.Raised -= amount

	e.publish(event.TypeRefundClaimed, event.RefundClaimed{
		CampaignId: c.Id,
		Backer:     backer,
		Amount:     amount,
		TxHash:     txHash,
	})

	return amount, nil
}
