package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建写入文件的 JSON 日志，TUI 占用终端时使用
func New(path string) (*zap.Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("日志文件路径为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig = encoderConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}

	return config.Build()
}

// NewConsole 创建写入 stderr 的日志，非交互模式使用
func NewConsole(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig = encoderConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	return config.Build()
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	return cfg
}
