package handler

import (
	"encoding/json"
	"time"

	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 活动相关请求模型

// MilestoneParamsRequest 创建活动时的里程碑参数
type MilestoneParamsRequest struct {
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Deadline    time.Time `json:"deadline"`
}

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Creator         string                   `json:"creator" binding:"required"`
	CreatorName     string                   `json:"creatorName"`
	Title           string                   `json:"title" binding:"required"`
	Description     string                   `json:"description"`
	Category        string                   `json:"category"`
	Goal            int64                    `json:"goal" binding:"required"`
	MinContribution int64                    `json:"minContribution"`
	MaxContribution int64                    `json:"maxContribution"`
	StartTime       time.Time                `json:"startTime"`
	EndTime         time.Time                `json:"endTime" binding:"required"`
	Milestones      []MilestoneParamsRequest `json:"milestones"`
}

// ContributeRequest 出资请求
type ContributeRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

// ClaimRefundRequest 退款请求
type ClaimRefundRequest struct {
	Address string `json:"address" binding:"required"`
}

// AddMilestoneRequest 追加里程碑请求
type AddMilestoneRequest struct {
	Caller      string    `json:"caller" binding:"required"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount" binding:"required"`
	Deadline    time.Time `json:"deadline"`
}

// SubmitMilestoneRequest 提交里程碑证据请求
type SubmitMilestoneRequest struct {
	Caller       string `json:"caller" binding:"required"`
	EvidenceHash string `json:"evidenceHash" binding:"required"`
}

// CastVoteRequest 投票请求
type CastVoteRequest struct {
	Address string `json:"address" binding:"required"`
	Approve *bool  `json:"approve" binding:"required"`
}

// VerdictRequest 预言机裁决请求。未给出verdict时按approved与
// confidence经阈值折算
type VerdictRequest struct {
	RequestId      string  `json:"requestId"`
	CampaignId     int64   `json:"campaignId" binding:"required"`
	MilestoneIndex *int    `json:"milestoneIndex" binding:"required"`
	Address        string  `json:"address"`
	Verdict        string  `json:"verdict"`
	Approved       bool    `json:"approved"`
	Confidence     float64 `json:"confidence"`
	ReportHash     string  `json:"reportHash"`
}

// 活动相关响应模型

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	ID              int64     `json:"id"`
	Creator         string    `json:"creator"`
	CreatorName     string    `json:"creatorName"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Goal            int64     `json:"goal"`
	Raised          int64     `json:"raised"`
	Released        int64     `json:"released"`
	EscrowBalance   int64     `json:"escrowBalance"`
	MinContribution int64     `json:"minContribution"`
	MaxContribution int64     `json:"maxContribution"`
	BackerCount     int64     `json:"backerCount"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	CreatedAt       time.Time `json:"createdAt"`
	Active          bool      `json:"active"`
	Status          string    `json:"status"`
	MilestoneCount  int       `json:"milestoneCount"`
}

// CreateCampaignResponse 创建活动响应
type CreateCampaignResponse struct {
	Campaign CampaignResponse `json:"campaign"`
}

// GetCampaignsResponse 获取活动列表响应
type GetCampaignsResponse struct {
	Campaigns  []CampaignResponse `json:"campaigns"`
	Pagination Pagination         `json:"pagination"`
}

// GetCampaignResponse 获取活动详情响应
type GetCampaignResponse struct {
	Campaign CampaignResponse `json:"campaign"`
}

// GetCampaignStatsResponse 获取活动统计响应
type GetCampaignStatsResponse struct {
	Stats map[string]interface{} `json:"stats"`
}

// 里程碑相关响应模型

// MilestoneResponse 里程碑响应模型
type MilestoneResponse struct {
	Index         int       `json:"index"`
	Description   string    `json:"description"`
	Amount        int64     `json:"amount"`
	Deadline      time.Time `json:"deadline"`
	State         string    `json:"state"`
	SubmittedAt   time.Time `json:"submittedAt"`
	EvidenceHash  string    `json:"evidenceHash"`
	VotingEnd     time.Time `json:"votingEnd"`
	YesWeight     int64     `json:"yesWeight"`
	NoWeight      int64     `json:"noWeight"`
	VoteCount     int       `json:"voteCount"`
	FundsReleased bool      `json:"fundsReleased"`
	ReleaseTxHash string    `json:"releaseTxHash"`
}

// GetMilestonesResponse 获取里程碑列表响应
type GetMilestonesResponse struct {
	Milestones []MilestoneResponse `json:"milestones"`
}

// GetMilestoneResponse 获取里程碑详情响应
type GetMilestoneResponse struct {
	Milestone MilestoneResponse `json:"milestone"`
}

// AddMilestoneResponse 追加里程碑响应
type AddMilestoneResponse struct {
	Index     int               `json:"index"`
	Milestone MilestoneResponse `json:"milestone"`
}

// SubmitMilestoneResponse 提交里程碑响应
type SubmitMilestoneResponse struct {
	RequestId string            `json:"requestId"`
	Milestone MilestoneResponse `json:"milestone"`
}

// 出资与退款相关响应模型

// ContributionEntryResponse 账本条目响应模型
type ContributionEntryResponse struct {
	CampaignId int64  `json:"campaignId"`
	Address    string `json:"address"`
	Amount     int64  `json:"amount"`
	IsBacker   bool   `json:"isBacker"`
}

// ContributionRecordResponse 出资流水响应模型
type ContributionRecordResponse struct {
	ID         int64     `json:"id"`
	CampaignId int64     `json:"campaignId"`
	Address    string    `json:"address"`
	Amount     int64     `json:"amount"`
	TxHash     string    `json:"txHash"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetContributionRecordsResponse 获取出资流水响应
type GetContributionRecordsResponse struct {
	Records    []ContributionRecordResponse `json:"records"`
	Pagination Pagination                   `json:"pagination"`
}

// RefundRecordResponse 退款流水响应模型
type RefundRecordResponse struct {
	ID         int64     `json:"id"`
	CampaignId int64     `json:"campaignId"`
	Address    string    `json:"address"`
	Amount     int64     `json:"amount"`
	TxHash     string    `json:"txHash"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetRefundsResponse 获取退款流水响应
type GetRefundsResponse struct {
	Refunds    []RefundRecordResponse `json:"refunds"`
	Pagination Pagination             `json:"pagination"`
}

// ClaimRefundResponse 退款响应
type ClaimRefundResponse struct {
	CampaignId int64  `json:"campaignId"`
	Address    string `json:"address"`
	Amount     int64  `json:"amount"`
}

// 事实流相关响应模型

// EscrowEventResponse 托管事实响应模型
type EscrowEventResponse struct {
	ID             int64           `json:"id"`
	EventType      string          `json:"eventType"`
	CampaignId     int64           `json:"campaignId"`
	MilestoneIndex int             `json:"milestoneIndex"`
	Address        string          `json:"address"`
	Amount         int64           `json:"amount"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// GetEventsResponse 获取事实流响应
type GetEventsResponse struct {
	Events     []EscrowEventResponse `json:"events"`
	Pagination Pagination            `json:"pagination"`
}

// 验证请求相关响应模型

// VerificationRequestResponse 验证请求响应模型
type VerificationRequestResponse struct {
	ID             int64     `json:"id"`
	RequestId      string    `json:"requestId"`
	CampaignId     int64     `json:"campaignId"`
	MilestoneIndex int       `json:"milestoneIndex"`
	Requester      string    `json:"requester"`
	EvidenceHash   string    `json:"evidenceHash"`
	Status         string    `json:"status"`
	Attempts       int       `json:"attempts"`
	DispatchedAt   time.Time `json:"dispatchedAt"`
	IsProcessed    bool      `json:"isProcessed"`
	IsApproved     bool      `json:"isApproved"`
	Verdict        string    `json:"verdict"`
	Confidence     float64   `json:"confidence"`
	ReportHash     string    `json:"reportHash"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GetVerificationsResponse 获取验证请求列表响应
type GetVerificationsResponse struct {
	Requests   []VerificationRequestResponse `json:"requests"`
	Pagination Pagination                    `json:"pagination"`
}

// GetVerificationResponse 获取验证请求详情响应
type GetVerificationResponse struct {
	Request VerificationRequestResponse `json:"request"`
}

// 转换函数

// ToCampaignResponse 将引擎快照转换为响应模型
func ToCampaignResponse(s *escrow.Summary) CampaignResponse {
	return CampaignResponse{
		ID:              s.Id,
		Creator:         s.Creator,
		CreatorName:     s.CreatorName,
		Title:           s.Title,
		Description:     s.Description,
		Category:        s.Category,
		Goal:            s.Goal,
		Raised:          s.Raised,
		Released:        s.Released,
		EscrowBalance:   s.EscrowBalance,
		MinContribution: s.MinContribution,
		MaxContribution: s.MaxContribution,
		BackerCount:     s.BackerCount,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		CreatedAt:       s.CreatedAt,
		Active:          s.Active,
		Status:          string(s.Status),
		MilestoneCount:  s.MilestoneCount,
	}
}

// ToCampaignResponseList 将引擎快照列表转换为响应模型列表
func ToCampaignResponseList(summaries []escrow.Summary) []CampaignResponse {
	result := make([]CampaignResponse, len(summaries))
	for i := range summaries {
		result[i] = ToCampaignResponse(&summaries[i])
	}
	return result
}

// ToMilestoneResponse 将里程碑快照转换为响应模型
func ToMilestoneResponse(m *escrow.MilestoneSnapshot) MilestoneResponse {
	return MilestoneResponse{
		Index:         m.Index,
		Description:   m.Description,
		Amount:        m.Amount,
		Deadline:      m.Deadline,
		State:         string(m.State),
		SubmittedAt:   m.SubmittedAt,
		EvidenceHash:  m.EvidenceHash,
		VotingEnd:     m.VotingEnd,
		YesWeight:     m.YesWeight,
		NoWeight:      m.NoWeight,
		VoteCount:     m.VoteCount,
		FundsReleased: m.FundsReleased,
		ReleaseTxHash: m.ReleaseTxHash,
	}
}

// ToMilestoneResponseList 将里程碑快照列表转换为响应模型列表
func ToMilestoneResponseList(snapshots []escrow.MilestoneSnapshot) []MilestoneResponse {
	result := make([]MilestoneResponse, len(snapshots))
	for i := range snapshots {
		result[i] = ToMilestoneResponse(&snapshots[i])
	}
	return result
}

// ToContributionRecordResponse 将出资流水数据库模型转换为响应模型
func ToContributionRecordResponse(record *model.ContributionRecordModel) ContributionRecordResponse {
	return ContributionRecordResponse{
		ID:         record.Id,
		CampaignId: record.CampaignId,
		Address:    record.Address,
		Amount:     record.Amount,
		TxHash:     record.TxHash,
		CreatedAt:  record.CreatedAt,
	}
}

// ToContributionRecordResponseList 将出资流水列表转换为响应模型列表
func ToContributionRecordResponseList(records []model.ContributionRecordModel) []ContributionRecordResponse {
	result := make([]ContributionRecordResponse, len(records))
	for i := range records {
		result[i] = ToContributionRecordResponse(&records[i])
	}
	return result
}

// ToRefundRecordResponse 将退款流水数据库模型转换为响应模型
func ToRefundRecordResponse(record *model.RefundRecordModel) RefundRecordResponse {
	return RefundRecordResponse{
		ID:         record.Id,
		CampaignId: record.CampaignId,
		Address:    record.Address,
		Amount:     record.Amount,
		TxHash:     record.TxHash,
		Status:     string(record.Status),
		CreatedAt:  record.CreatedAt,
	}
}

// ToRefundRecordResponseList 将退款流水列表转换为响应模型列表
func ToRefundRecordResponseList(records []model.RefundRecordModel) []RefundRecordResponse {
	result := make([]RefundRecordResponse, len(records))
	for i := range records {
		result[i] = ToRefundRecordResponse(&records[i])
	}
	return result
}

// ToEscrowEventResponse 将事实数据库模型转换为响应模型
func ToEscrowEventResponse(evt *model.EscrowEventModel) EscrowEventResponse {
	return EscrowEventResponse{
		ID:             evt.Id,
		EventType:      evt.EventType,
		CampaignId:     evt.CampaignId,
		MilestoneIndex: evt.MilestoneIndex,
		Address:        evt.Address,
		Amount:         evt.Amount,
		Payload:        json.RawMessage(evt.Payload),
		CreatedAt:      evt.CreatedAt,
	}
}

// ToEscrowEventResponseList 将事实列表转换为响应模型列表
func ToEscrowEventResponseList(events []model.EscrowEventModel) []EscrowEventResponse {
	result := make([]EscrowEventResponse, len(events))
	for i := range events {
		result[i] = ToEscrowEventResponse(&events[i])
	}
	return result
}

// ToVerificationRequestResponse 将验证请求数据库模型转换为响应模型
func ToVerificationRequestResponse(request *model.VerificationRequestModel) VerificationRequestResponse {
	return VerificationRequestResponse{
		ID:             request.Id,
		RequestId:      request.RequestId,
		CampaignId:     request.CampaignId,
		MilestoneIndex: request.MilestoneIndex,
		Requester:      request.Requester,
		EvidenceHash:   request.EvidenceHash,
		Status:         string(request.Status),
		Attempts:       request.Attempts,
		DispatchedAt:   request.DispatchedAt,
		IsProcessed:    request.IsProcessed,
		IsApproved:     request.IsApproved,
		Verdict:        request.Verdict,
		Confidence:     request.Confidence,
		ReportHash:     request.ReportHash,
		CreatedAt:      request.CreatedAt,
	}
}

// ToVerificationRequestResponseList 将验证请求列表转换为响应模型列表
func ToVerificationRequestResponseList(requests []model.VerificationRequestModel) []VerificationRequestResponse {
	result := make([]VerificationRequestResponse, len(requests))
	for i := range requests {
		result[i] = ToVerificationRequestResponse(&requests[i])
	}
	return result
}

// NewPagination 计算分页信息
func NewPagination(page, pageSize int, total int64) Pagination {
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}
