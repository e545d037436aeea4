package handler

import (
	"net/http"
	"strconv"

	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContributionHandler 出资处理器
type ContributionHandler struct {
	engine            *escrow.Engine
	contributionLogic *logic.ContributionRecordLogic
}

// NewContributionHandler 创建出资处理器
func NewContributionHandler(engine *escrow.Engine, db *gorm.DB) *ContributionHandler {
	return &ContributionHandler{
		engine:            engine,
		contributionLogic: logic.NewContributionRecordLogic(db),
	}
}

// Contribute 向活动出资
func (h *ContributionHandler) Contribute(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Contribute(c.Request.Context(), campaignId, req.Address, req.Amount); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	summary, err := h.engine.CampaignSummary(campaignId)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "出资成功", GetCampaignResponse{
		Campaign: ToCampaignResponse(summary),
	})
}

// GetContributionRecords 获取活动出资流水
func (h *ContributionHandler) GetContributionRecords(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.contributionLogic.GetCampaignContributionRecords(campaignId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取出资流水成功", GetContributionRecordsResponse{
		Records:    ToContributionRecordResponseList(records),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetContributionEntry 获取某地址在活动中的账本条目
func (h *ContributionHandler) GetContributionEntry(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}
	address := c.Param("address")

	entry, err := h.engine.ContributionOf(campaignId, address)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取账本条目成功", ContributionEntryResponse{
		CampaignId: campaignId,
		Address:    address,
		Amount:     entry.Amount,
		IsBacker:   entry.IsBacker,
	})
}
