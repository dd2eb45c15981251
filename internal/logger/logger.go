package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDirName    = "logs"
	defaultLogFilename   = "checkout.log"
	defaultLogMaxSizeMB  = 100
	defaultLogMaxBackups = 7
	defaultLogMaxAgeDays = 30
)

// Options 日志初始化参数
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// L 进程级日志实例
var L *zap.Logger

var (
	fallbackOnce sync.Once
	fallbackLog  *zap.Logger
)

// Init 初始化全局日志并替换 zap 全局实例
func Init(mode string, options Options) *zap.Logger {
	L = New(mode, options)
	if L == nil {
		L = fallbackLogger()
	}
	zap.ReplaceGlobals(L)
	return L
}

// New 按配置构建日志实例
// debug 模式输出控制台格式到 stdout，其余模式输出 JSON 到滚动文件。
func New(mode string, options Options) *zap.Logger {
	var (
		encoder zapcore.Encoder
		sink    zapcore.WriteSyncer
		level   zapcore.Level
	)
	if strings.EqualFold(strings.TrimSpace(mode), "debug") {
		encoder = zapcore.NewConsoleEncoder(newEncoderConfig())
		sink = zapcore.AddSync(os.Stdout)
		level = zap.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(newEncoderConfig())
		level = zap.InfoLevel
		fileSink, err := newFileWriteSyncer(options)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger init failed, fallback to stdout: %v\n", err)
			fileSink = zapcore.AddSync(os.Stdout)
		}
		sink = fileSink
	}
	return buildLogger(encoder, sink, level)
}

// StdLogger 适配标准库 log 接口
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Z 返回可用的结构化日志实例，Init 之前返回兜底实例
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	return fallbackLogger()
}

// S 返回全局 SugaredLogger，未初始化时兜底
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// SW 返回附加了固定字段的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

// Debugw 写 debug 日志
func Debugw(message string, kv ...interface{}) { S().Debugw(message, kv...) }

// Infow 写 info 日志
func Infow(message string, kv ...interface{}) { S().Infow(message, kv...) }

// Warnw 写 warn 日志
func Warnw(message string, kv ...interface{}) { S().Warnw(message, kv...) }

// Errorw 写 error 日志
func Errorw(message string, kv ...interface{}) { S().Errorw(message, kv...) }

func newEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func fallbackLogger() *zap.Logger {
	fallbackOnce.Do(func() {
		fallbackLog = buildLogger(
			zapcore.NewConsoleEncoder(newEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zap.InfoLevel,
		)
	})
	return fallbackLog
}

func buildLogger(encoder zapcore.Encoder, sink zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func newFileWriteSyncer(options Options) (zapcore.WriteSyncer, error) {
	path, err := resolveLogFilePath(options)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(options.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: positiveOr(options.MaxBackups, defaultLogMaxBackups),
		MaxAge:     positiveOr(options.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   options.Compress,
	}), nil
}

// resolveLogFilePath 确定日志文件路径，目录不存在时创建并验证可写
func resolveLogFilePath(options Options) (string, error) {
	dir, err := logDir(options.Dir)
	if err != nil {
		return "", err
	}
	filename := strings.TrimSpace(options.Filename)
	if filename == "" {
		filename = defaultLogFilename
	}
	path := filepath.Join(dir, filename)
	if err := probeWritable(path); err != nil {
		return "", err
	}
	return path, nil
}

func logDir(configured string) (string, error) {
	dir := strings.TrimSpace(configured)
	if dir == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir failed: %w", err)
		}
		dir = filepath.Join(workDir, defaultLogDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir failed: %w", err)
	}
	return dir, nil
}

func probeWritable(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file failed: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close log file failed: %w", err)
	}
	return nil
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
