package logger

import (
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/d60-Lab/gymfeed/config"
)

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// Init 构建全局 logger：stdout + 可选的 lumberjack 文件切割
func Init(cfg config.Log) *zap.Logger {
	var lvl zapcore.Level
	if err := lvl.Set(cfg.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	var enc zapcore.Encoder
	if cfg.JSON {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "ts"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)}
	if cfg.File != "" {
		rot := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    max(1, cfg.MaxSizeMB),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAgeDays),
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rot), lvl))
	}

	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	Set(l)
	return l
}

// Set replaces the global logger; tests use it with zaptest or zap.NewNop.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// L returns the global logger without the package caller skip.
func L() *zap.Logger { return global.Load().WithOptions(zap.AddCallerSkip(-1)) }

func Debug(msg string, fields ...zap.Field) { global.Load().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { global.Load().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { global.Load().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { global.Load().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { global.Load().Fatal(msg, fields...) }

func Sync() { _ = global.Load().Sync() }
