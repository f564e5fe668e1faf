// File: pkg/logger/zap.go
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 로거 설정
type Config struct {
	// Level 로그 레벨 (debug, info, warn, error, dpanic, panic, fatal)
	Level string
	// Format 로그 포맷 (json, console)
	Format string
	// Output 로그 출력 대상 (stdout, stderr, file 등)
	Output string
	// FilePath 파일로 출력할 경우 파일 경로
	FilePath string
	// Development 개발 모드 여부
	Development bool
	// Service 모든 로그에 붙는 service 필드 값
	Service string
}

// parseLevel 알 수 없는 레벨은 info로 처리합니다
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewZapLogger 새로운 zap 로거를 생성합니다.
func NewZapLogger(config Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(parseLevel(config.Level))

	// 로그 인코더 설정
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.LevelKey = "log.level"
	encoderConfig.MessageKey = "message"
	encoderConfig.CallerKey = "caller"

	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	// 로그 출력 설정
	var writeSyncer zapcore.WriteSyncer
	switch config.Output {
	case "stderr":
		writeSyncer = zapcore.AddSync(os.Stderr)
	case "file":
		if config.FilePath == "" {
			writeSyncer = zapcore.AddSync(os.Stdout)
		} else {
			file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return nil, err
			}
			writeSyncer = zapcore.AddSync(file)
		}
	default:
		writeSyncer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	logger := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))

	// 개발 모드이면 호출자 정보 추가
	if config.Development {
		logger = logger.WithOptions(zap.AddCaller())
	}

	if config.Service != "" {
		logger = logger.With(zap.String("service", config.Service))
	}

	return logger, nil
}

// DefaultZapLogger 기본 설정으로 zap 로거를 생성합니다.
func DefaultZapLogger() *zap.Logger {
	logger, err := NewZapLogger(Config{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		// 로거 생성 실패 시 기본 로거 반환
		return zap.NewExample()
	}
	return logger
}
