package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wyfcoding/spotexchange/pkg/logger"
)

// GormLogger 将 GORM 日志桥接到 slog
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

// NewGormLogger 创建 GORM 日志适配器
func NewGormLogger(slowThreshold time.Duration) *GormLogger {
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      gormlogger.Warn,
	}
}

// LogMode 设置日志级别
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info 输出 info 日志
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		logger.Info(ctx, msg, "data", data)
	}
}

// Warn 输出 warn 日志
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		logger.Warn(ctx, msg, "data", data)
	}
}

// Error 输出 error 日志
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		logger.Error(ctx, msg, "data", data)
	}
}

// Trace 记录 SQL 执行情况，慢查询与错误单独标记
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		logger.Error(ctx, "sql execution failed",
			"sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > l.SlowThreshold:
		logger.Warn(ctx, "slow sql detected",
			"sql", sql, "rows", rows, "elapsed", elapsed, "threshold", l.SlowThreshold)
	case l.LogLevel >= gormlogger.Info:
		logger.Debug(ctx, "sql executed",
			"sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
