package handler

import (
	"net/http"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/oracle"
	"github.com/gin-gonic/gin"
)

// OracleHandler 预言机回调处理器
type OracleHandler struct {
	engine *escrow.Engine
	cfg    *config.OracleConfig
}

// NewOracleHandler 创建预言机回调处理器
func NewOracleHandler(engine *escrow.Engine, cfg *config.OracleConfig) *OracleHandler {
	return &OracleHandler{engine: engine, cfg: cfg}
}

// PostVerdict 接收预言机裁决。配置了api_key时要求X-API-Key匹配。
// 请求未携带verdict字段时按approved与confidence经阈值折算
func (h *OracleHandler) PostVerdict(c *gin.Context) {
	if h.cfg.ApiKey != "" && c.GetHeader("X-API-Key") != h.cfg.ApiKey {
		ErrorResponse(c, http.StatusForbidden, "无效的API密钥")
		return
	}

	var req VerdictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var verdict oracle.Verdict
	if req.Verdict == "" {
		verdict = oracle.Translate(*h.cfg, req.Approved, req.Confidence)
	} else {
		parsed, ok := oracle.ParseVerdict(req.Verdict)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "无效的裁决值")
			return
		}
		verdict = parsed
	}

	caller := req.Address
	if caller == "" {
		caller = h.engine.OracleAddress()
	}

	err := h.engine.ApplyVerdict(c.Request.Context(), escrow.VerdictParams{
		CampaignId:     req.CampaignId,
		MilestoneIndex: *req.MilestoneIndex,
		Caller:         caller,
		Verdict:        verdict,
		Confidence:     req.Confidence,
		ReportHash:     req.ReportHash,
		RequestId:      req.RequestId,
	})
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	snapshot, err := h.engine.MilestoneInfo(req.CampaignId, *req.MilestoneIndex)
	if err != nil {
		EngineErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "裁决已应用", GetMilestoneResponse{
		Milestone: ToMilestoneResponse(snapshot),
	})
}
