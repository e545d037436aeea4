package logic

import (
	"fmt"

	"github.com/SairajMN/autocrowd/internal/model"
	"gorm.io/gorm"
)

// RefundRecordLogic 退款流水查询逻辑
type RefundRecordLogic struct {
	db *gorm.DB
}

// NewRefundRecordLogic 创建退款流水查询逻辑
func NewRefundRecordLogic(db *gorm.DB) *RefundRecordLogic {
	return &RefundRecordLogic{db: db}
}

// GetCampaignRefundRecords 获取活动的退款流水
func (r *RefundRecordLogic) GetCampaignRefundRecords(campaignId int64, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	var records []model.RefundRecordModel
	var total int64

	// 获取总数
	if err := r.db.Model(&model.RefundRecordModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款流水总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := r.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款流水失败: %w", err)
	}

	return records, total, nil
}

// GetAddressRefundRecords 获取某地址的全部退款流水
func (r *RefundRecordLogic) GetAddressRefundRecords(address string, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	var records []model.RefundRecordModel
	var total int64

	// 获取总数
	if err := r.db.Model(&model.RefundRecordModel{}).Where("address = ?", address).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款流水总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := r.db.Where("address = ?", address).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款流水失败: %w", err)
	}

	return records, total, nil
}

// GetRefundStats 获取活动退款统计信息。金额口径只算成功的退款，
// 失败的推送尝试单独计数
func (r *RefundRecordLogic) GetRefundStats(campaignId int64) (map[string]interface{}, error) {
	var stats struct {
		TotalRefunds   int64 `json:"total_refunds"`
		TotalAmount    int64 `json:"total_amount"`
		FailedAttempts int64 `json:"failed_attempts"`
	}

	// 成功退款笔数
	if err := r.db.Model(&model.RefundRecordModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.RefundStatusSuccess).
		Count(&stats.TotalRefunds).Error; err != nil {
		return nil, fmt.Errorf("获取总退款笔数失败: %w", err)
	}

	// 成功退款金额
	if err := r.db.Model(&model.RefundRecordModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.RefundStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取总退款金额失败: %w", err)
	}

	// 失败尝试笔数
	if err := r.db.Model(&model.RefundRecordModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.RefundStatusFailed).
		Count(&stats.FailedAttempts).Error; err != nil {
		return nil, fmt.Errorf("获取失败尝试笔数失败: %w", err)
	}

	return map[string]interface{}{
		"total_refunds":   stats.TotalRefunds,
		"total_amount":    stats.TotalAmount,
		"failed_attempts": stats.FailedAttempts,
	}, nil
}
