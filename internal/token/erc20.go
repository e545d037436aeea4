package token

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ERC-20合约ABI定义（仅托管所需的方法）
const erc20ABI = `[
	{
		"constant": true,
		"inputs": [{"name": "owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"name": "transferFrom",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

// ERC20Gateway 基于ERC-20合约的代币网关，托管账户即服务自身的链上账户
type ERC20Gateway struct {
	client        *ethclient.Client
	contract      *bind.BoundContract
	privateKey    *ecdsa.PrivateKey
	escrowAddr    common.Address
	chainId       *big.Int
	confirmations int
}

// NewERC20Gateway 创建ERC-20代币网关
func NewERC20Gateway(cfg config.TokenConfig) (*ERC20Gateway, error) {
	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC-20 ABI: %w", err)
	}

	contractAddr := common.HexToAddress(cfg.ContractAddr)
	contract := bind.NewBoundContract(contractAddr, parsedABI, client, client, client)

	return &ERC20Gateway{
		client:        client,
		contract:      contract,
		privateKey:    privateKey,
		escrowAddr:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainId:       big.NewInt(cfg.ChainId),
		confirmations: cfg.Confirmations,
	}, nil
}

// BalanceOf 查询地址余额
func (g *ERC20Gateway) BalanceOf(ctx context.Context, addr string) (int64, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(addr))
	if err != nil {
		return 0, fmt.Errorf("balanceOf call failed: %w", err)
	}
	return bigToInt64(out[0].(*big.Int))
}

// Allowance 查询owner授权给spender的额度
func (g *ERC20Gateway) Allowance(ctx context.Context, owner string, spender string) (int64, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "allowance",
		common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return 0, fmt.Errorf("allowance call failed: %w", err)
	}
	return bigToInt64(out[0].(*big.Int))
}

// TransferFrom 从owner拉取amount到to
func (g *ERC20Gateway) TransferFrom(ctx context.Context, owner string, to string, amount int64) (string, error) {
	// 先检查授权额度，额度不足直接拒绝，不上链
	allowance, err := g.Allowance(ctx, owner, g.escrowAddr.Hex())
	if err != nil {
		return "", err
	}
	if allowance < amount {
		return "", ErrInsufficientAllowance
	}

	return g.transact(ctx, "transferFrom",
		common.HexToAddress(owner), common.HexToAddress(to), big.NewInt(amount))
}

// Transfer 从托管账户推送amount到to
func (g *ERC20Gateway) Transfer(ctx context.Context, to string, amount int64) (string, error) {
	return g.transact(ctx, "transfer", common.HexToAddress(to), big.NewInt(amount))
}

// EscrowAddress 托管账户地址
func (g *ERC20Gateway) EscrowAddress() string {
	return g.escrowAddr.Hex()
}

// transact 发送合约交易并等待上链，回执失败视为转账失败
func (g *ERC20Gateway) transact(ctx context.Context, method string, params ...interface{}) (string, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(g.privateKey, g.chainId)
	if err != nil {
		return "", fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	tx, err := g.contract.Transact(auth, method, params...)
	if err != nil {
		return "", fmt.Errorf("%s transaction failed: %w", method, err)
	}

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		return "", fmt.Errorf("failed to wait for %s transaction: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", ErrTransferFailed
	}

	if err := g.waitConfirmed(ctx, receipt); err != nil {
		return "", fmt.Errorf("failed to wait for %s confirmations: %w", method, err)
	}

	return tx.Hash().Hex(), nil
}

// waitConfirmed 等待交易达到配置的确认深度
func (g *ERC20Gateway) waitConfirmed(ctx context.Context, receipt *types.Receipt) error {
	if g.confirmations <= 1 {
		return nil
	}
	target := receipt.BlockNumber.Uint64() + uint64(g.confirmations) - 1

	for {
		latest, err := g.client.BlockNumber(ctx)
		if err != nil {
			return err
		}
		if latest >= target {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// bigToInt64 金额转换，超出int64视为错误
func bigToInt64(v *big.Int) (int64, error) {
	if !v.IsInt64() {
		return 0, fmt.Errorf("amount %s overflows int64", v.String())
	}
	return v.Int64(), nil
}
