// File: pkg/logger/gorm_logger.go
package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger는 gorm의 logger.Interface를 구현하며, 모든 GORM 로그를 zap 으로 기록합니다.
type GormLogger struct {
	logger *zap.Logger
	// LogLevel 기록할 최소 레벨 (gormlogger.Silent, Error, Warn, Info)
	LogLevel gormlogger.LogLevel
	// SlowThreshold 이 시간보다 오래 걸린 쿼리는 Warn 레벨로 기록 (0이면 사용 안 함)
	SlowThreshold time.Duration
	// IgnoreRecordNotFoundError true이면 gorm.ErrRecordNotFound 는 기록하지 않음
	IgnoreRecordNotFoundError bool
}

// NewGormLogger는 지정한 옵션을 가진 GormLogger 인스턴스를 생성합니다.
func NewGormLogger(logger *zap.Logger, level gormlogger.LogLevel, slowThreshold time.Duration, ignoreRecordNotFoundError bool) *GormLogger {
	return &GormLogger{
		logger:                    logger.Named("gorm"),
		LogLevel:                  level,
		SlowThreshold:             slowThreshold,
		IgnoreRecordNotFoundError: ignoreRecordNotFoundError,
	}
}

// LogMode는 로그 레벨을 변경한 새로운 로거 인스턴스를 반환합니다.
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *g
	newLogger.LogLevel = level
	return &newLogger
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel >= gormlogger.Info {
		g.logger.Sugar().Infof(msg, data...)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel >= gormlogger.Warn {
		g.logger.Sugar().Warnf(msg, data...)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel >= gormlogger.Error {
		g.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace는 쿼리 실행 시간, SQL, 영향을 받은 행 수, 에러를 기록합니다.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && g.LogLevel >= gormlogger.Error &&
		(!g.IgnoreRecordNotFoundError || !errors.Is(err, gorm.ErrRecordNotFound)):
		g.logger.Error("GORM query error",
			zap.Error(err),
			zap.Duration("elapsed", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	case g.SlowThreshold != 0 && elapsed > g.SlowThreshold && g.LogLevel >= gormlogger.Warn:
		g.logger.Warn("GORM slow query",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", g.SlowThreshold),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	case g.LogLevel >= gormlogger.Info:
		g.logger.Debug("GORM query",
			zap.Duration("elapsed", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	}
}
