package handler

import (
	"net/http"
	"strconv"

	"github.com/SairajMN/autocrowd/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EventHandler 事实流查询处理器
type EventHandler struct {
	eventLogic *logic.EventLogic
}

// NewEventHandler 创建事实流查询处理器
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		eventLogic: logic.NewEventLogic(db),
	}
}

// GetCampaignEvents 获取活动事实流，可按类型或里程碑序号过滤
func (h *EventHandler) GetCampaignEvents(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	eventType := c.Query("type")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if idxStr := c.Query("milestone_index"); idxStr != "" {
		index, err := strconv.Atoi(idxStr)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的里程碑序号")
			return
		}
		events, total, err := h.eventLogic.GetMilestoneEvents(campaignId, index, page, pageSize)
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}
		SuccessResponse(c, http.StatusOK, "获取事实流成功", GetEventsResponse{
			Events:     ToEscrowEventResponseList(events),
			Pagination: NewPagination(page, pageSize, total),
		})
		return
	}

	events, total, err := h.eventLogic.GetEvents(campaignId, eventType, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取事实流成功", GetEventsResponse{
		Events:     ToEscrowEventResponseList(events),
		Pagination: NewPagination(page, pageSize, total),
	})
}
