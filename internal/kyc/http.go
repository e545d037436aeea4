package kyc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SairajMN/autocrowd/internal/config"
)

// HTTPGate 调用外部KYC服务的校验器
type HTTPGate struct {
	baseUrl    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPGate 创建外部KYC校验器
func NewHTTPGate(cfg config.KycConfig) *HTTPGate {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGate{
		baseUrl:    cfg.BaseUrl,
		apiKey:     cfg.ApiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	Address string `json:"address"`
}

type checkResponse struct {
	Eligible bool `json:"eligible"`
}

// IsEligible 校验创建者地址是否通过KYC
func (g *HTTPGate) IsEligible(ctx context.Context, addr string) (bool, error) {
	body, err := json.Marshal(checkRequest{Address: addr})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseUrl+"/v1/kyc/check", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("kyc request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("kyc service returned status %d", resp.StatusCode)
	}

	var result checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode kyc response: %w", err)
	}

	return result.Eligible, nil
}
