package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir 等价于 testing.T.Chdir（需Go 1.24），当前工具链不支持故自行实现：
// 切换工作目录并在测试结束时恢复
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			panic("chdir cleanup: " + err.Error())
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "autocrowd", cfg.Database.DBName)
	assert.Equal(t, int64(1), cfg.Escrow.MinContribution)
	assert.Equal(t, int64(0), cfg.Escrow.MaxContribution)
	assert.Equal(t, 72, cfg.Escrow.VotingPeriodHours)
	assert.Equal(t, "memory", cfg.Token.Mode)
	assert.Equal(t, 12, cfg.Token.Confirmations)
	assert.InDelta(t, 0.8, cfg.Oracle.ApprovalThreshold, 1e-9)
	assert.InDelta(t, 0.2, cfg.Oracle.RejectionThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Oracle.MaxAttempts)
	assert.Equal(t, "allowall", cfg.Kyc.Mode)
	assert.Equal(t, 60, cfg.Task.Interval)
	assert.Equal(t, 30, cfg.Task.DispatchInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("AUTOCROWD_SERVER_PORT", "7070")
	t.Setenv("AUTOCROWD_ESCROW_MIN_CONTRIBUTION", "5")

	cfg := Load()

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, int64(5), cfg.Escrow.MinContribution)
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	content := []byte("server:\n  port: \"9090\"\nescrow:\n  voting_period_hours: 24\nkyc:\n  mode: static\n  allowlist:\n    - \"0xAbC\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	chdir(t, dir)

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24, cfg.Escrow.VotingPeriodHours)
	assert.Equal(t, "static", cfg.Kyc.Mode)
	assert.Equal(t, []string{"0xAbC"}, cfg.Kyc.Allowlist)

	// 未覆盖的键保持默认值
	assert.Equal(t, "memory", cfg.Token.Mode)
	assert.Equal(t, 3, cfg.Oracle.MaxAttempts)
	assert.Equal(t, int64(1), cfg.Escrow.MinContribution)
}
