package handler

import (
	"net/http"
	"strconv"

	"github.com/SairajMN/autocrowd/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VerificationHandler 验证请求查询处理器
type VerificationHandler struct {
	verificationLogic *logic.VerificationLogic
}

// NewVerificationHandler 创建验证请求查询处理器
func NewVerificationHandler(db *gorm.DB) *VerificationHandler {
	return &VerificationHandler{
		verificationLogic: logic.NewVerificationLogic(db),
	}
}

// GetVerifications 获取验证请求列表
func (h *VerificationHandler) GetVerifications(c *gin.Context) {
	campaignId, _ := strconv.ParseInt(c.DefaultQuery("campaign_id", "0"), 10, 64)
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	requests, total, err := h.verificationLogic.GetRequests(campaignId, status, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取验证请求列表成功", GetVerificationsResponse{
		Requests:   ToVerificationRequestResponseList(requests),
		Pagination: NewPagination(page, pageSize, total),
	})
}

// GetVerification 根据请求ID获取验证请求详情
func (h *VerificationHandler) GetVerification(c *gin.Context) {
	requestId := c.Param("requestId")

	request, err := h.verificationLogic.GetByRequestId(requestId)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取验证请求成功", GetVerificationResponse{
		Request: ToVerificationRequestResponse(request),
	})
}
