package main

import (
	"log"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/event"
	"github.com/SairajMN/autocrowd/internal/kyc"
	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/SairajMN/autocrowd/internal/oracle"
	"github.com/SairajMN/autocrowd/internal/repository"
	"github.com/SairajMN/autocrowd/internal/router"
	"github.com/SairajMN/autocrowd/internal/task"
	"github.com/SairajMN/autocrowd/internal/token"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化代币网关
	gateway, err := setupGateway(cfg.Token)
	if err != nil {
		log.Fatalf("Failed to initialize token gateway: %v", err)
	}

	// 初始化KYC校验
	kycGate := kyc.NewGate(cfg.Kyc)

	// 初始化事实总线与订阅者
	bus := event.NewBus()
	logProcessor := event.NewLogProcessor(bus)
	logProcessor.Start()
	defer logProcessor.Stop()
	metricsProcessor := event.NewMetricsProcessor(bus)
	metricsProcessor.Start()
	defer metricsProcessor.Stop()

	// 初始化托管引擎
	engine, err := escrow.NewEngine(db, gateway, bus, kycGate, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize escrow engine: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, engine, cfg)

	// 启动定时任务
	oracleClient := oracle.NewClient(cfg.Oracle)
	manager := task.Start(db, engine, oracleClient, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupGateway 按配置选择代币网关实现
func setupGateway(cfg config.TokenConfig) (token.Gateway, error) {
	switch cfg.Mode {
	case "erc20":
		return token.NewERC20Gateway(cfg)
	default:
		logger.Warn("Token gateway running in memory mode, transfers are simulated")
		return token.NewMemoryGateway(), nil
	}
}
