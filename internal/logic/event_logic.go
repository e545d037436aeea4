package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/SairajMN/autocrowd/internal/model"
	"gorm.io/gorm"
)

// EventLogic 托管事实流查询逻辑
type EventLogic struct {
	db *gorm.DB
}

// NewEventLogic 创建事实流查询逻辑
func NewEventLogic(db *gorm.DB) *EventLogic {
	return &EventLogic{db: db}
}

// GetEvents 获取事实列表，campaignId与eventType为可选过滤条件
func (e *EventLogic) GetEvents(campaignId int64, eventType string, page, pageSize int) ([]model.EscrowEventModel, int64, error) {
	var events []model.EscrowEventModel
	var total int64

	// 构建查询条件
	query := e.db.Model(&model.EscrowEventModel{})
	if campaignId > 0 {
		query = query.Where("campaign_id = ?", campaignId)
	}
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("id DESC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实列表失败: %w", err)
	}

	return events, total, nil
}

// GetEvent 获取单条事实
func (e *EventLogic) GetEvent(id int64) (*model.EscrowEventModel, error) {
	var evt model.EscrowEventModel
	if err := e.db.First(&evt, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("事实不存在")
		}
		return nil, fmt.Errorf("获取事实失败: %w", err)
	}

	return &evt, nil
}

// GetMilestoneEvents 获取某个里程碑的事实流
func (e *EventLogic) GetMilestoneEvents(campaignId int64, milestoneIndex int, page, pageSize int) ([]model.EscrowEventModel, int64, error) {
	var events []model.EscrowEventModel
	var total int64

	// 获取总数
	if err := e.db.Model(&model.EscrowEventModel{}).
		Where("campaign_id = ? AND milestone_index = ?", campaignId, milestoneIndex).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := e.db.Where("campaign_id = ? AND milestone_index = ?", campaignId, milestoneIndex).
		Offset(offset).
		Limit(pageSize).
		Order("id DESC").
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实列表失败: %w", err)
	}

	return events, total, nil
}

// GetAddressEvents 获取涉及某地址的事实流
func (e *EventLogic) GetAddressEvents(address string, page, pageSize int) ([]model.EscrowEventModel, int64, error) {
	var events []model.EscrowEventModel
	var total int64

	// 获取总数
	if err := e.db.Model(&model.EscrowEventModel{}).Where("address = ?", address).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := e.db.Where("address = ?", address).
		Offset(offset).
		Limit(pageSize).
		Order("id DESC").
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实列表失败: %w", err)
	}

	return events, total, nil
}

// GetEventsByTimeRange 根据时间范围获取事实
func (e *EventLogic) GetEventsByTimeRange(startTime, endTime time.Time, page, pageSize int) ([]model.EscrowEventModel, int64, error) {
	var events []model.EscrowEventModel
	var total int64

	// 获取总数
	if err := e.db.Model(&model.EscrowEventModel{}).Where("created_at BETWEEN ? AND ?", startTime, endTime).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实总数失败: %w", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := e.db.Where("created_at BETWEEN ? AND ?", startTime, endTime).
		Offset(offset).
		Limit(pageSize).
		Order("id DESC").
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事实列表失败: %w", err)
	}

	return events, total, nil
}

// GetEventStatistics 获取事实流统计信息，按类型分组计数
func (e *EventLogic) GetEventStatistics(campaignId int64) (map[string]interface{}, error) {
	var total int64
	countQuery := e.db.Model(&model.EscrowEventModel{})
	if campaignId > 0 {
		countQuery = countQuery.Where("campaign_id = ?", campaignId)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("获取总事实数失败: %w", err)
	}

	var rows []struct {
		EventType string `json:"event_type"`
		Count     int64  `json:"count"`
	}
	groupQuery := e.db.Model(&model.EscrowEventModel{}).Select("event_type, COUNT(*) as count").Group("event_type")
	if campaignId > 0 {
		groupQuery = groupQuery.Where("campaign_id = ?", campaignId)
	}
	if err := groupQuery.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("获取分类事实数失败: %w", err)
	}

	byType := make(map[string]int64, len(rows))
	for _, row := range rows {
		byType[row.EventType] = row.Count
	}

	return map[string]interface{}{
		"total_events": total,
		"by_type":      byType,
	}, nil
}
