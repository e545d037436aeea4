package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfig struct {
	level  string
	output string
	file   string
}

func (s stubConfig) GetLevel() string  { return s.level }
func (s stubConfig) GetOutput() string { return s.output }
func (s stubConfig) GetFile() string   { return s.file }

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, INFO, ParseLogLevel("info"))
	assert.Equal(t, WARN, ParseLogLevel("warn"))
	assert.Equal(t, WARN, ParseLogLevel("warning"))
	assert.Equal(t, ERROR, ParseLogLevel("ERROR"))
	assert.Equal(t, FATAL, ParseLogLevel("fatal"))

	// 未知级别回落到 info
	assert.Equal(t, INFO, ParseLogLevel("verbose"))
	assert.Equal(t, INFO, ParseLogLevel(""))
}

func TestNewWithFileRotation(t *testing.T) {
	l, err := NewWithFileRotation(INFO, t.TempDir()+"/app.log")
	assert.NoError(t, err)
	assert.NotNil(t, l)

	// 写一条日志不应出错
	l.Info("rotation logger smoke test %d", 1)
	l.Sync()
}

func TestSetup(t *testing.T) {
	require.NoError(t, Setup(stubConfig{level: "warn", output: "stdout"}))

	// 文件模式经过全局入口写入并可读回
	logFile := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Setup(stubConfig{level: "info", output: "file", file: logFile}))
	Info("file sink smoke test")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink smoke test")

	// 其余用例回到标准输出
	require.NoError(t, Setup(stubConfig{level: "info", output: "stdout"}))
}
