package token

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultEscrowAddress memory模式下托管账户的固定地址
const DefaultEscrowAddress = "0x00000000000000000000000000000000e5c20000"

// MemoryGateway 进程内代币网关，用于开发模式与测试
type MemoryGateway struct {
	mu         sync.Mutex
	balances   map[string]int64
	allowances map[string]map[string]int64 // owner -> spender -> amount
	escrowAddr string
}

// NewMemoryGateway 创建进程内代币网关
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		balances:   make(map[string]int64),
		allowances: make(map[string]map[string]int64),
		escrowAddr: DefaultEscrowAddress,
	}
}

// Mint 铸造余额，开发与测试用
func (g *MemoryGateway) Mint(addr string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[addr] += amount
}

// Approve 设置owner授权给spender的额度，开发与测试用
func (g *MemoryGateway) Approve(owner string, spender string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.allowances[owner] == nil {
		g.allowances[owner] = make(map[string]int64)
	}
	g.allowances[owner][spender] = amount
}

// BalanceOf 查询地址余额
func (g *MemoryGateway) BalanceOf(ctx context.Context, addr string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[addr], nil
}

// Allowance 查询owner授权给spender的额度
func (g *MemoryGateway) Allowance(ctx context.Context, owner string, spender string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allowances[owner][spender], nil
}

// TransferFrom 从owner拉取amount到to，消耗授权额度
func (g *MemoryGateway) TransferFrom(ctx context.Context, owner string, to string, amount int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.allowances[owner][g.escrowAddr] < amount {
		return "", ErrInsufficientAllowance
	}
	if g.balances[owner] < amount {
		return "", ErrInsufficientBalance
	}

	g.allowances[owner][g.escrowAddr] -= amount
	g.balances[owner] -= amount
	g.balances[to] += amount

	return "mem-" + uuid.NewString(), nil
}

// Transfer 从托管账户推送amount到to
func (g *MemoryGateway) Transfer(ctx context.Context, to string, amount int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.balances[g.escrowAddr] < amount {
		return "", ErrInsufficientBalance
	}

	g.balances[g.escrowAddr] -= amount
	g.balances[to] += amount

	return "mem-" + uuid.NewString(), nil
}

// EscrowAddress 托管账户地址
func (g *MemoryGateway) EscrowAddress() string {
	return g.escrowAddr
}
