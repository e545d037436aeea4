package handler

import (
	"net/http"
	"strconv"

	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RefundHandler 退款处理器
type RefundHandler struct {
	engine      *escrow.Engine
	refundLogic *logic.RefundRecordLogic
}

// NewRefundHandler 创建退款处理器
func NewRefundHandler(engine *escrow.Engine, db *gorm.DB) *RefundHandler {
	return &RefundHandler{
		engine:      engine,
		refundLogic: logic.NewRefundRecordLogic(db),
	}
}

// ClaimRefund 申领退款
func (h *RefundHandler) ClaimRefund(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req ClaimRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.engine.ClaimRefund(c.Request.Context(), campaignId, req.Address)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "退款成功", ClaimRefundResponse{
		CampaignId: campaignId,
		Address:    req.Address,
		Amount:     amount,
	})
}

// GetCampaignRefunds 获取活动退款流水
func (h *RefundHandler) GetCampaignRefunds(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.refundLogic.GetCampaignRefundRecords(campaignId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取退款流水成功", GetRefundsResponse{
		Refunds:    ToRefundRecordResponseList(records),
		Pagination: NewPagination(page, pageSize, total),
	})
}
