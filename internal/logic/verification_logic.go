package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/SairajMN/autocrowd/internal/model"
	"gorm.io/gorm"
)

// VerificationLogic 验证请求队列逻辑
type VerificationLogic struct {
	db *gorm.DB
}

// NewVerificationLogic 创建验证请求队列逻辑
func NewVerificationLogic(db *gorm.DB) *VerificationLogic {
	return &VerificationLogic{db: db}
}

// GetDispatchableRequests 获取可派发的验证请求，按创建时间先后排序。
// 已达最大尝试次数的请求不在其列
func (v *VerificationLogic) GetDispatchableRequests(maxAttempts, limit int) ([]model.VerificationRequestModel, error) {
	var requests []model.VerificationRequestModel
	if err := v.db.Where("is_processed = ? AND attempts < ?", false, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("获取待派发验证请求失败: %w", err)
	}

	return requests, nil
}

// GetExhaustedRequests 获取已耗尽尝试次数但仍未处理的验证请求
func (v *VerificationLogic) GetExhaustedRequests(maxAttempts, limit int) ([]model.VerificationRequestModel, error) {
	var requests []model.VerificationRequestModel
	if err := v.db.Where("is_processed = ? AND attempts >= ?", false, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("获取超次验证请求失败: %w", err)
	}

	return requests, nil
}

// MarkDispatched 记录一次派发尝试
func (v *VerificationLogic) MarkDispatched(id int64, at time.Time) error {
	err := v.db.Model(&model.VerificationRequestModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.VerificationStatusDispatched,
			"dispatched_at": at,
			"attempts":      gorm.Expr("attempts + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("更新派发状态失败: %w", err)
	}

	return nil
}

// GetByRequestId 根据请求ID获取验证请求
func (v *VerificationLogic) GetByRequestId(requestId string) (*model.VerificationRequestModel, error) {
	var request model.VerificationRequestModel
	if err := v.db.Where("request_id = ?", requestId).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("验证请求不存在")
		}
		return nil, fmt.Errorf("获取验证请求失败: %w", err)
	}

	return &request, nil
}

// GetRequests 获取验证请求列表，campaignId与status为可选过滤条件
func (v *VerificationLogic) GetRequests(campaignId int64, status string, page, pageSize int) ([]model.VerificationRequestModel, int64, error) {
	var requests []model.VerificationRequestModel
	var total int64

	// 构建查询条件
	query := v.db.Model(&model.VerificationRequestModel{})
	if campaignId > 0 {
		query = query.Where("campaign_id = ?", campaignId)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取验证请求总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("获取验证请求列表失败: %w", err)
	}

	return requests, total, nil
}
