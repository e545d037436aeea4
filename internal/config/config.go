package config

import (
	"strings"

	"github.com/SairajMN/autocrowd/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Escrow   EscrowConfig   `mapstructure:"escrow"`
	Token    TokenConfig    `mapstructure:"token"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
	Kyc      KycConfig      `mapstructure:"kyc"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // 数据库类型 (postgres, sqlite)
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 数据库文件路径
}

// EscrowConfig 托管引擎配置
type EscrowConfig struct {
	MinContribution   int64 `mapstructure:"min_contribution"`   // 默认单笔最小贡献金额
	MaxContribution   int64 `mapstructure:"max_contribution"`   // 默认单笔最大贡献金额（0表示不限制）
	VotingPeriodHours int   `mapstructure:"voting_period_hours"` // 投票窗口时长（小时）
}

// TokenConfig 代币网关配置
type TokenConfig struct {
	Mode          string `mapstructure:"mode"`          // 网关模式 (memory, erc20)
	RpcUrl        string `mapstructure:"rpc_url"`       // RPC节点URL
	ChainId       int64  `mapstructure:"chain_id"`      // 链ID
	PrivateKey    string `mapstructure:"private_key"`   // 托管账户私钥
	ContractAddr  string `mapstructure:"contract_addr"` // ERC-20代币合约地址
	Confirmations int    `mapstructure:"confirmations"` // 交易确认数
}

// OracleConfig 预言机配置
type OracleConfig struct {
	BaseUrl            string  `mapstructure:"base_url"`            // 验证服务地址
	ApiKey             string  `mapstructure:"api_key"`             // 验证服务密钥
	Address            string  `mapstructure:"address"`             // 允许提交裁决的预言机身份
	TimeoutSeconds     int     `mapstructure:"timeout_seconds"`     // 请求超时（秒）
	ApprovalThreshold  float64 `mapstructure:"approval_threshold"`  // 批准所需的最低置信度
	RejectionThreshold float64 `mapstructure:"rejection_threshold"` // 低于该置信度直接拒绝
	MaxAttempts        int     `mapstructure:"max_attempts"`        // 派发重试上限，超过后按不确定处理
}

// KycConfig KYC配置
type KycConfig struct {
	Mode           string   `mapstructure:"mode"`            // 校验模式 (allowall, static, http)
	BaseUrl        string   `mapstructure:"base_url"`        // KYC服务地址
	ApiKey         string   `mapstructure:"api_key"`         // KYC服务密钥
	TimeoutSeconds int      `mapstructure:"timeout_seconds"` // 请求超时（秒）
	Allowlist      []string `mapstructure:"allowlist"`       // static模式下的白名单地址
}

type TaskConfig struct {
	Interval         int `mapstructure:"interval"`          // 活动状态任务间隔（秒）
	DispatchInterval int `mapstructure:"dispatch_interval"` // 验证请求派发任务间隔（秒）
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// Load 读取配置。查找路径上的config.yaml可缺省，缺省时全部用默认值；
// 环境变量以AUTOCROWD_为前缀覆盖同名配置项
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/autocrowd")

	setDefaults()

	// 环境变量覆盖：AUTOCROWD_SERVER_PORT -> server.port
	viper.SetEnvPrefix("autocrowd")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "autocrowd")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.path", "data/autocrowd.db")
	viper.SetDefault("escrow.min_contribution", 1)
	viper.SetDefault("escrow.max_contribution", 0)
	viper.SetDefault("escrow.voting_period_hours", 72)
	viper.SetDefault("token.mode", "memory")
	viper.SetDefault("token.chain_id", 1)
	viper.SetDefault("token.confirmations", 12)
	viper.SetDefault("oracle.timeout_seconds", 30)
	viper.SetDefault("oracle.approval_threshold", 0.8)
	viper.SetDefault("oracle.rejection_threshold", 0.2)
	viper.SetDefault("oracle.max_attempts", 3)
	viper.SetDefault("kyc.mode", "allowall")
	viper.SetDefault("kyc.timeout_seconds", 10)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.dispatch_interval", 30)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")
}
