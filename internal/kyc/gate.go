package kyc

import (
	"context"
	"strings"

	"github.com/SairajMN/autocrowd/internal/config"
)

// Gate KYC资格校验，活动创建前消费一次
type Gate interface {
	// IsEligible 校验创建者地址是否通过KYC
	IsEligible(ctx context.Context, addr string) (bool, error)
}

// NewGate 根据配置创建KYC校验器
func NewGate(cfg config.KycConfig) Gate {
	switch cfg.Mode {
	case "static":
		return NewStaticGate(cfg.Allowlist)
	case "http":
		return NewHTTPGate(cfg)
	default:
		return AllowAllGate{}
	}
}

// AllowAllGate 放行所有地址，开发模式用
type AllowAllGate struct{}

// IsEligible 校验创建者地址是否通过KYC
func (AllowAllGate) IsEligible(ctx context.Context, addr string) (bool, error) {
	return true, nil
}

// StaticGate 基于静态白名单的校验器
type StaticGate struct {
	allowlist map[string]struct{}
}

// NewStaticGate 创建静态白名单校验器
func NewStaticGate(addrs []string) *StaticGate {
	allowlist := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		allowlist[strings.ToLower(addr)] = struct{}{}
	}
	return &StaticGate{allowlist: allowlist}
}

// IsEligible 校验创建者地址是否通过KYC
func (g *StaticGate) IsEligible(ctx context.Context, addr string) (bool, error) {
	_, ok := g.allowlist[strings.ToLower(addr)]
	return ok, nil
}
