package token

import (
	"context"
	"errors"
)

// 网关错误，托管核心原样向上传递
var (
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrTransferFailed        = errors.New("transfer failed")
)

// Gateway 代币网关，金额一律为代币最小单位
type Gateway interface {
	// BalanceOf 查询地址余额
	BalanceOf(ctx context.Context, addr string) (int64, error)
	// Allowance 查询owner授权给spender的额度
	Allowance(ctx context.Context, owner string, spender string) (int64, error)
	// TransferFrom 从owner拉取amount到to，要求owner已授权托管账户
	TransferFrom(ctx context.Context, owner string, to string, amount int64) (string, error)
	// Transfer 从托管账户推送amount到to
	Transfer(ctx context.Context, to string, amount int64) (string, error)
	// EscrowAddress 托管账户地址
	EscrowAddress() string
}
