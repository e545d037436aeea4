package logic

import (
	"fmt"

	"github.com/SairajMN/autocrowd/internal/model"
	"gorm.io/gorm"
)

// ContributionRecordLogic 出资流水查询逻辑
type ContributionRecordLogic struct {
	db *gorm.DB
}

// NewContributionRecordLogic 创建出资流水查询逻辑
func NewContributionRecordLogic(db *gorm.DB) *ContributionRecordLogic {
	return &ContributionRecordLogic{db: db}
}

// GetCampaignContributionRecords 获取活动的出资流水
func (c *ContributionRecordLogic) GetCampaignContributionRecords(campaignId int64, page, pageSize int) ([]model.ContributionRecordModel, int64, error) {
	var records []model.ContributionRecordModel
	var total int64

	// 获取总数
	if err := c.db.Model(&model.ContributionRecordModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取出资流水总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := c.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取出资流水失败: %w", err)
	}

	return records, total, nil
}

// GetAddressContributionRecords 获取某地址的全部出资流水
func (c *ContributionRecordLogic) GetAddressContributionRecords(address string, page, pageSize int) ([]model.ContributionRecordModel, int64, error) {
	var records []model.ContributionRecordModel
	var total int64

	// 获取总数
	if err := c.db.Model(&model.ContributionRecordModel{}).Where("address = ?", address).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取出资流水总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := c.db.Where("address = ?", address).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取出资流水失败: %w", err)
	}

	return records, total, nil
}

// GetContributionStats 获取活动出资统计信息
func (c *ContributionRecordLogic) GetContributionStats(campaignId int64) (map[string]interface{}, error) {
	var stats struct {
		TotalRecords  int64   `json:"total_records"`
		TotalAmount   int64   `json:"total_amount"`
		UniqueBackers int64   `json:"unique_backers"`
		AverageAmount float64 `json:"average_amount"`
	}

	// 总流水数
	if err := c.db.Model(&model.ContributionRecordModel{}).Where("campaign_id = ?", campaignId).Count(&stats.TotalRecords).Error; err != nil {
		return nil, fmt.Errorf("获取总流水数失败: %w", err)
	}

	// 总出资金额
	if err := c.db.Model(&model.ContributionRecordModel{}).Where("campaign_id = ?", campaignId).Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取总出资金额失败: %w", err)
	}

	// 唯一支持者数量
	if err := c.db.Model(&model.ContributionRecordModel{}).Where("campaign_id = ?", campaignId).Select("COUNT(DISTINCT address)").Scan(&stats.UniqueBackers).Error; err != nil {
		return nil, fmt.Errorf("获取唯一支持者数量失败: %w", err)
	}

	// 平均出资金额
	if stats.TotalRecords > 0 {
		stats.AverageAmount = float64(stats.TotalAmount) / float64(stats.TotalRecords)
	}

	return map[string]interface{}{
		"total_records":  stats.TotalRecords,
		"total_amount":   stats.TotalAmount,
		"unique_backers": stats.UniqueBackers,
		"average_amount": stats.AverageAmount,
	}, nil
}
