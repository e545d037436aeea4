package escrow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/event"
	"github.com/SairajMN/autocrowd/internal/kyc"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/SairajMN/autocrowd/internal/token"
	"gorm.io/gorm"
)

// Engine 托管引擎，持有全部活动的权威内存状态并负责落库与事实发布。
// 引擎级锁只保护注册表本身，单个活动的互斥由活动自身的锁承担
type Engine struct {
	mu        sync.RWMutex
	campaigns map[int64]*Campaign
	order     []int64            // 创建顺序，列表查询按此遍历
	byCreator map[string][]int64 // 创建者索引，只追加

	db      *gorm.DB
	gateway token.Gateway
	bus     *event.Bus
	kycGate kyc.Gate

	votingPeriod      time.Duration
	oracleAddress     string
	defaultMinContrib int64
	defaultMaxContrib int64

	// 注入时钟，测试用
	now func() time.Time
}

// NewEngine 创建托管引擎并从数据库恢复状态
func NewEngine(db *gorm.DB, gateway token.Gateway, bus *event.Bus, kycGate kyc.Gate, cfg *config.Config) (*Engine, error) {
	e := &Engine{
		campaigns:         make(map[int64]*Campaign),
		byCreator:         make(map[string][]int64),
		db:                db,
		gateway:           gateway,
		bus:               bus,
		kycGate:           kycGate,
		votingPeriod:      time.Duration(cfg.Escrow.VotingPeriodHours) * time.Hour,
		oracleAddress:     cfg.Oracle.Address,
		defaultMinContrib: cfg.Escrow.MinContribution,
		defaultMaxContrib: cfg.Escrow.MaxContribution,
		now:               time.Now,
	}

	if err := e.loadFromDatabase(); err != nil {
		return nil, fmt.Errorf("failed to load escrow state: %w", err)
	}

	return e, nil
}

// MilestoneParams 创建活动时的里程碑参数
type MilestoneParams struct {
	Description string
	Amount      int64
	Deadline    time.Time
}

// CreateCampaignParams 创建活动参数
type CreateCampaignParams struct {
	Creator         string
	CreatorName     string
	Title           string
	Description     string
	Category        string
	Goal            int64
	MinContribution int64
	MaxContribution int64
	StartTime       time.Time
	EndTime         time.Time
	Milestones      []MilestoneParams
}

// CreateCampaign 创建活动。创建者须通过KYC；里程碑金额合计不得超过目标金额
func (e *Engine) CreateCampaign(ctx context.Context, params CreateCampaignParams) (*Summary, error) {
	if params.Creator == "" {
		return nil, fmt.Errorf("%w: creator address required", ErrValidation)
	}
	if params.Title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}
	if params.Goal <= 0 {
		return nil, fmt.Errorf("%w: goal must be positive", ErrValidation)
	}

	now := e.now()
	start := params.StartTime
	if start.IsZero() {
		start = now
	}
	if !params.EndTime.After(start) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	if !params.EndTime.After(now) {
		return nil, fmt.Errorf("%w: end time must be in the future", ErrValidation)
	}

	minContrib := params.MinContribution
	if minContrib == 0 {
		minContrib = e.defaultMinContrib
	}
	maxContrib := params.MaxContribution
	if maxContrib == 0 {
		maxContrib = e.defaultMaxContrib
	}
	if maxContrib > 0 && minContrib > maxContrib {
		return nil, fmt.Errorf("%w: min contribution above max contribution", ErrValidation)
	}

	var milestoneSum int64
	for i, m := range params.Milestones {
		if m.Amount <= 0 {
			return nil, fmt.Errorf("%w: milestone %d amount must be positive", ErrValidation, i)
		}
		milestoneSum += m.Amount
	}
	if milestoneSum > params.Goal {
		return nil, ErrMilestoneBudget
	}

	eligible, err := e.kycGate.IsEligible(ctx, params.Creator)
	if err != nil {
		return nil, fmt.Errorf("kyc check failed: %w", err)
	}
	if !eligible {
		return nil, ErrCreatorNotEligible
	}

	campaignRow := model.CampaignModel{
		Title:           params.Title,
		Description:     params.Description,
		Category:        params.Category,
		GoalAmount:      params.Goal,
		MinContribution: minContrib,
		MaxContribution: maxContrib,
		StartTime:       start,
		EndTime:         params.EndTime,
		Active:          true,
		Status:          model.CampaignStatusActive,
		CreatorAddress:  params.Creator,
		CreatorName:     params.CreatorName,
	}

	tx := e.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&campaignRow).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	for i, m := range params.Milestones {
		row := model.MilestoneModel{
			CampaignId:     campaignRow.Id,
			MilestoneIndex: i,
			Description:    m.Description,
			Amount:         m.Amount,
			Deadline:       m.Deadline,
			State:          model.MilestoneStatePending,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create milestone %d: %w", i, err)
		}
	}

	created := event.CampaignCreated{
		CampaignId: campaignRow.Id,
		Creator:    params.Creator,
		Goal:       params.Goal,
		EndTime:    params.EndTime,
	}
	if err := journalEvent(tx, event.TypeCampaignCreated, campaignRow.Id, -1, params.Creator, params.Goal, created); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit campaign: %w", err)
	}

	c := &Campaign{
		Id:              campaignRow.Id,
		CreatedAt:       campaignRow.CreatedAt,
		Creator:         params.Creator,
		CreatorName:     params.CreatorName,
		Title:           params.Title,
		Description:     params.Description,
		Category:        params.Category,
		Goal:            params.Goal,
		MinContribution: minContrib,
		MaxContribution: maxContrib,
		StartTime:       start,
		EndTime:         params.EndTime,
		Active:          true,
		Status:          model.CampaignStatusActive,
		contributions:   make(map[string]*Contribution),
	}
	for i, m := range params.Milestones {
		c.milestones = append(c.milestones, &Milestone{
			Index:       i,
			Description: m.Description,
			Amount:      m.Amount,
			Deadline:    m.Deadline,
			State:       model.MilestoneStatePending,
			votes:       make(map[string]bool),
		})
	}

	e.mu.Lock()
	e.campaigns[c.Id] = c
	e.order = append(e.order, c.Id)
	e.byCreator[params.Creator] = append(e.byCreator[params.Creator], c.Id)
	e.mu.Unlock()

	e.publish(event.TypeCampaignCreated, created)

	summary := c.summary()
	return &summary, nil
}

// getCampaign 按ID取活动
func (e *Engine) getCampaign(campaignId int64) (*Campaign, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.campaigns[campaignId]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return c, nil
}

// publish 向总线发布事实
func (e *Engine) publish(evtType string, data interface{}) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(event.Event{Type: evtType, Timestamp: e.now(), Data: data})
}

// OracleAddress 配置的预言机身份
func (e *Engine) OracleAddress() string {
	return e.oracleAddress
}

// CampaignSummary 活动状态快照
func (e *Engine) CampaignSummary(campaignId int64) (*Summary, error) {
	c, err := e.getCampaign(campaignId)
	if err != nil {
		return nil, err
	}
	s := c.summary()
	return &s, nil
}

// MilestoneInfo 里程碑状态快照
func (e *Engine) MilestoneInfo(campaignId int64, index int) (*MilestoneSnapshot, error) {
	c, err := e.getCampaign(campaignId)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.milestone(index)
	if !ok {
		return nil, ErrMilestoneNotFound
	}
	snap := m.snapshot()
	return &snap, nil
}

// Milestones 活动全部里程碑快照
func (e *Engine) Milestones(campaignId int64) ([]MilestoneSnapshot, error) {
	c, err := e.getCampaign(campaignId)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	snaps := make([]MilestoneSnapshot, 0, len(c.milestones))
	for _, m := range c.milestones {
		snaps = append(snaps, m.snapshot())
	}
	return snaps, nil
}

// ContributionOf 查询某地址在活动中的账本条目
func (e *Engine) ContributionOf(campaignId int64, addr string) (Contribution, error) {
	c, err := e.getCampaign(campaignId)
	if err != nil {
		return Contribution{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contributionOf(addr), nil
}

// ListFilter 活动列表过滤条件
type ListFilter struct {
	Creator  string
	Status   string
	Page     int
	PageSize int
}

// ListCampaigns 按创建顺序分页列出活动。偏移超出总数视为非法，
// 恰好等于总数时返回空页
func (e *Engine) ListCampaigns(filter ListFilter) ([]Summary, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	e.mu.RLock()
	var ids []int64
	if filter.Creator != "" {
		ids = append(ids, e.byCreator[filter.Creator]...)
	} else {
		ids = append(ids, e.order...)
	}
	e.mu.RUnlock()

	var matched []Summary
	for _, id := range ids {
		c, err := e.getCampaign(id)
		if err != nil {
			continue
		}
		s := c.summary()
		if filter.Status != "" && string(s.Status) != filter.Status {
			continue
		}
		matched = append(matched, s)
	}

	total := int64(len(matched))
	offset := (page - 1) * pageSize
	if offset > len(matched) {
		return nil, 0, ErrInvalidOffset
	}
	if offset == len(matched) {
		return []Summary{}, total, nil
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// SweepStatuses 刷新已过截止时间活动的管理状态，返回更新条数。
// 仅更新Status列，Active标志保持粘滞
func (e *Engine) SweepStatuses() int {
	e.mu.RLock()
	ids := append([]int64(nil), e.order...)
	e.mu.RUnlock()

	now := e.now()
	updated := 0
	for _, id := range ids {
		c, err := e.getCampaign(id)
		if err != nil {
			continue
		}

		c.mu.Lock()
		if c.Status != model.CampaignStatusActive || now.Before(c.EndTime) {
			c.mu.Unlock()
			continue
		}

		newStatus := model.CampaignStatusFailed
		if c.Raised >= c.Goal {
			newStatus = model.CampaignStatusSuccessful
		}

		err = e.db.Model(&model.CampaignModel{}).
			Where("id = ?", c.Id).
			Update("status", newStatus).Error
		if err != nil {
			logger.Error("Failed to update campaign %d status to %s: %v", c.Id, newStatus, err)
			c.mu.Unlock()
			continue
		}

		c.Status = newStatus
		c.mu.Unlock()

		logger.Info("Campaign %d ended with status: %s", id, newStatus)
		updated++
	}
	return updated
}
