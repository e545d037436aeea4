package handler

import (
	"net/http"
	"strconv"

	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/gin-gonic/gin"
)

// MilestoneHandler 里程碑处理器
type MilestoneHandler struct {
	engine *escrow.Engine
}

// NewMilestoneHandler 创建里程碑处理器
func NewMilestoneHandler(engine *escrow.Engine) *MilestoneHandler {
	return &MilestoneHandler{engine: engine}
}

// milestoneParams 解析路径中的活动ID与里程碑序号
func milestoneParams(c *gin.Context) (int64, int, bool) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, 0, false
	}
	index, err := strconv.Atoi(c.Param("idx"))
	if err != nil || index < 0 {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑序号")
		return 0, 0, false
	}
	return campaignId, index, true
}

// GetMilestones 获取活动里程碑列表
func (h *MilestoneHandler) GetMilestones(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	snapshots, err := h.engine.Milestones(campaignId)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取里程碑列表成功", GetMilestonesResponse{
		Milestones: ToMilestoneResponseList(snapshots),
	})
}

// GetMilestone 获取里程碑详情
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	campaignId, index, ok := milestoneParams(c)
	if !ok {
		return
	}

	snapshot, err := h.engine.MilestoneInfo(campaignId, index)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取里程碑详情成功", GetMilestoneResponse{
		Milestone: ToMilestoneResponse(snapshot),
	})
}

// AddMilestone 追加里程碑
func (h *MilestoneHandler) AddMilestone(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req AddMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	index, err := h.engine.AddMilestone(c.Request.Context(), campaignId, req.Caller, escrow.MilestoneParams{
		Description: req.Description,
		Amount:      req.Amount,
		Deadline:    req.Deadline,
	})
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	snapshot, err := h.engine.MilestoneInfo(campaignId, index)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "里程碑追加成功", AddMilestoneResponse{
		Index:     index,
		Milestone: ToMilestoneResponse(snapshot),
	})
}

// SubmitMilestone 提交里程碑证据
func (h *MilestoneHandler) SubmitMilestone(c *gin.Context) {
	campaignId, index, ok := milestoneParams(c)
	if !ok {
		return
	}

	var req SubmitMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	requestId, err := h.engine.SubmitMilestone(c.Request.Context(), campaignId, index, req.Caller, req.EvidenceHash)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	snapshot, err := h.engine.MilestoneInfo(campaignId, index)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "里程碑提交成功", SubmitMilestoneResponse{
		RequestId: requestId,
		Milestone: ToMilestoneResponse(snapshot),
	})
}

// CastVote 对里程碑投票
func (h *MilestoneHandler) CastVote(c *gin.Context) {
	campaignId, index, ok := milestoneParams(c)
	if !ok {
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.CastVote(c.Request.Context(), campaignId, index, req.Address, *req.Approve); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	snapshot, err := h.engine.MilestoneInfo(campaignId, index)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投票成功", GetMilestoneResponse{
		Milestone: ToMilestoneResponse(snapshot),
	})
}

// FinalizeVoting 结算投票
func (h *MilestoneHandler) FinalizeVoting(c *gin.Context) {
	campaignId, index, ok := milestoneParams(c)
	if !ok {
		return
	}

	if err := h.engine.FinalizeVoting(c.Request.Context(), campaignId, index); err != nil {
		EngineErrorResponse(c, err)
		return
	}

	snapshot, err := h.engine.MilestoneInfo(campaignId, index)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "投票结算成功", GetMilestoneResponse{
		Milestone: ToMilestoneResponse(snapshot),
	})
}
