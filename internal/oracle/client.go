package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/logger"
)

// VerifyRequest 发给验证服务的里程碑验证请求
type VerifyRequest struct {
	RequestId      string `json:"requestId"`
	CampaignId     int64  `json:"campaignId"`
	MilestoneIndex int    `json:"milestoneIndex"`
	Description    string `json:"description"`
	EvidenceHash   string `json:"evidenceHash"`
}

// VerifyResult 验证服务的回报
type VerifyResult struct {
	Approved   bool    `json:"approved"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	ReportHash string  `json:"reportHash"`
}

// Client 验证服务客户端
type Client struct {
	cfg        config.OracleConfig
	httpClient *http.Client
}

// NewClient 创建验证服务客户端
func NewClient(cfg config.OracleConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Verify 请求验证服务分析证据。未配置服务地址时返回模拟回报，
// 与验证代理的开发模式行为一致
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if c.cfg.BaseUrl == "" {
		logger.Warn("Oracle endpoint not configured, using mock verification for request %s", req.RequestId)
		return &VerifyResult{
			Approved:   true,
			Confidence: 0.85,
			Reasoning:  "mock verification: oracle endpoint not configured",
			ReportHash: "mock-" + req.RequestId,
		}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseUrl+"/v1/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.ApiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle service returned status %d", resp.StatusCode)
	}

	var result VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode oracle response: %w", err)
	}

	return &result, nil
}

// Translate 按客户端配置翻译回报
func (c *Client) Translate(result *VerifyResult) Verdict {
	return Translate(c.cfg, result.Approved, result.Confidence)
}
