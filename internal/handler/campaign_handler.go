package handler

import (
	"net/http"
	"strconv"

	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	engine            *escrow.Engine
	contributionLogic *logic.ContributionRecordLogic
	refundLogic       *logic.RefundRecordLogic
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(engine *escrow.Engine, db *gorm.DB) *CampaignHandler {
	return &CampaignHandler{
		engine:            engine,
		contributionLogic: logic.NewContributionRecordLogic(db),
		refundLogic:       logic.NewRefundRecordLogic(db),
	}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	params := escrow.CreateCampaignParams{
		Creator:         req.Creator,
		CreatorName:     req.CreatorName,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Goal:            req.Goal,
		MinContribution: req.MinContribution,
		MaxContribution: req.MaxContribution,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
	}
	for _, m := range req.Milestones {
		params.Milestones = append(params.Milestones, escrow.MilestoneParams{
			Description: m.Description,
			Amount:      m.Amount,
			Deadline:    m.Deadline,
		})
	}

	summary, err := h.engine.CreateCampaign(c.Request.Context(), params)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功", CreateCampaignResponse{
		Campaign: ToCampaignResponse(summary),
	})
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	creator := c.Query("creator")
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	summaries, total, err := h.engine.ListCampaigns(escrow.ListFilter{
		Creator:  creator,
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动列表成功", GetCampaignsResponse{
		Campaigns:  ToCampaignResponseList(summaries),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	summary, err := h.engine.CampaignSummary(campaignId)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动详情成功", GetCampaignResponse{
		Campaign: ToCampaignResponse(summary),
	})
}

// GetCampaignStats 获取活动统计信息，汇总账本快照与流水统计
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	summary, err := h.engine.CampaignSummary(campaignId)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	contributionStats, err := h.contributionLogic.GetContributionStats(campaignId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	refundStats, err := h.refundLogic.GetRefundStats(campaignId)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	stats := map[string]interface{}{
		"goal":          summary.Goal,
		"raised":        summary.Raised,
		"released":      summary.Released,
		"escrowBalance": summary.EscrowBalance,
		"backerCount":   summary.BackerCount,
		"status":        string(summary.Status),
		"contributions": contributionStats,
		"refunds":       refundStats,
	}

	SuccessResponse(c, http.StatusOK, "获取活动统计成功", GetCampaignStatsResponse{Stats: stats})
}
