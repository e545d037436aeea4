package escrow

import (
	"encoding/json"
	"fmt"

	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/model"
	"gorm.io/gorm"
)

// journalEvent 在事务内追加一条托管事实，作为事实流的权威记录。
// milestoneIndex 为 -1 表示活动级事实
func journalEvent(tx *gorm.DB, evtType string, campaignId int64, milestoneIndex int, address string, amount int64, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", evtType, err)
	}
	row := model.EscrowEventModel{
		EventType:      evtType,
		CampaignId:     campaignId,
		MilestoneIndex: milestoneIndex,
		Address:        address,
		Amount:         amount,
		Payload:        string(body),
	}
	return tx.Create(&row).Error
}

// loadFromDatabase 启动时把全部活动状态恢复到内存。
// 引擎构造完成前没有并发访问，不需要加锁
func (e *Engine) loadFromDatabase() error {
	var campaignRows []model.CampaignModel
	if err := e.db.Order("id").Find(&campaignRows).Error; err != nil {
		return fmt.Errorf("failed to load campaigns: %w", err)
	}

	for i := range campaignRows {
		row := &campaignRows[i]
		c := &Campaign{
			Id:              row.Id,
			CreatedAt:       row.CreatedAt,
			Creator:         row.CreatorAddress,
			CreatorName:     row.CreatorName,
			Title:           row.Title,
			Description:     row.Description,
			Category:        row.Category,
			Goal:            row.GoalAmount,
			Raised:          row.RaisedAmount,
			Released:        row.ReleasedAmount,
			MinContribution: row.MinContribution,
			MaxContribution: row.MaxContribution,
			BackerCount:     row.BackerCount,
			StartTime:       row.StartTime,
			EndTime:         row.EndTime,
			Active:          row.Active,
			Status:          row.Status,
			contributions:   make(map[string]*Contribution),
		}

		if err := e.loadMilestones(c); err != nil {
			return err
		}
		if err := e.loadBackers(c); err != nil {
			return err
		}

		e.campaigns[c.Id] = c
		e.order = append(e.order, c.Id)
		e.byCreator[c.Creator] = append(e.byCreator[c.Creator], c.Id)
	}

	if len(campaignRows) > 0 {
		logger.Info("restored %d campaigns from database", len(campaignRows))
	}
	return nil
}

func (e *Engine) loadMilestones(c *Campaign) error {
	var rows []model.MilestoneModel
	err := e.db.Where("campaign_id = ?", c.Id).Order("milestone_index").Find(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load milestones for campaign %d: %w", c.Id, err)
	}

	for i := range rows {
		row := &rows[i]
		c.milestones = append(c.milestones, &Milestone{
			Index:         row.MilestoneIndex,
			Description:   row.Description,
			Amount:        row.Amount,
			Deadline:      row.Deadline,
			State:         row.State,
			SubmittedAt:   row.SubmittedAt,
			EvidenceHash:  row.EvidenceHash,
			VotingEnd:     row.VotingEnd,
			YesWeight:     row.YesWeight,
			NoWeight:      row.NoWeight,
			FundsReleased: row.FundsReleased,
			ReleaseTxHash: row.ReleaseTxHash,
			votes:         make(map[string]bool),
		})
	}

	var voteRows []model.MilestoneVoteModel
	err = e.db.Where("campaign_id = ?", c.Id).Find(&voteRows).Error
	if err != nil {
		return fmt.Errorf("failed to load votes for campaign %d: %w", c.Id, err)
	}
	for _, v := range voteRows {
		if m, ok := c.milestone(v.MilestoneIndex); ok {
			m.votes[v.Address] = v.Approve
		}
	}
	return nil
}

func (e *Engine) loadBackers(c *Campaign) error {
	var rows []model.BackerModel
	err := e.db.Where("campaign_id = ?", c.Id).Find(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load backers for campaign %d: %w", c.Id, err)
	}
	for _, b := range rows {
		c.contributions[b.Address] = &Contribution{
			Amount:   b.Amount,
			IsBacker: b.IsBacker,
		}
	}
	return nil
}
