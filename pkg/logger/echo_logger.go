// File: pkg/logger/echo_logger.go
package logger

import (
	"io"
	"net/http"

	"github.com/SOMALeoAfrica/Webhook-Server/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// 로그에 남길 때 값 일부만 보여주는 헤더
var maskedHeaders = map[string]bool{
	"Authorization":        true,
	"X-Paystack-Signature": true,
}

// NewEchoRequestLogger는 Echo 서버를 위한 Request Logger를 생성합니다.
// zap을 사용하여 HTTP 요청과 응답을 로깅합니다.
func NewEchoRequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	config := middleware.RequestLoggerConfig{
		// 헬스 체크 경로는 로그에서 제외
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/" || p == "/health"
		},
		HandleError: true,

		LogLatency:       true,
		LogRemoteIP:      true,
		LogMethod:        true,
		LogURI:           true,
		LogRoutePath:     true,
		LogRequestID:     true,
		LogUserAgent:     true,
		LogStatus:        true,
		LogError:         true,
		LogContentLength: true,
		LogResponseSize:  true,
		LogHeaders:       []string{"Content-Type", "X-Paystack-Signature", "Authorization"},

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request.remote_ip", v.RemoteIP),
				zap.String("request.method", v.Method),
				zap.String("request.uri", v.URI),
				zap.String("request.route", v.RoutePath),
				zap.String("request.user_agent", v.UserAgent),
				zap.String("request.request_id", v.RequestID),
				zap.String("request.content_length", v.ContentLength),
				zap.Int("response.status", v.Status),
				zap.Duration("response.latency", v.Latency),
				zap.Int64("response.response_size", v.ResponseSize),
			}

			if len(v.Headers) > 0 {
				headers := make(map[string]string)
				for k, values := range v.Headers {
					if len(values) == 0 {
						continue
					}
					headers[k] = maskHeader(k, values[0])
				}
				fields = append(fields, zap.Any("request.headers", headers))
			}

			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				logger.Error("Request failed", fields...)
				return nil
			}

			// 4XX 에러는 Warn 레벨로 기록
			if v.Status >= 400 && v.Status < 500 {
				logger.Warn("Client error", fields...)
				return nil
			}

			// 5XX 에러는 Error 레벨로 기록
			if v.Status >= 500 {
				logger.Error("Server error", fields...)
				return nil
			}

			logger.Info("Request completed", fields...)
			return nil
		},
	}

	return middleware.RequestLoggerWithConfig(config)
}

// maskHeader 서명/토큰 값은 앞뒤 일부만 남깁니다
func maskHeader(name, value string) string {
	if !maskedHeaders[name] {
		return value
	}
	if len(value) > 15 {
		return value[:10] + "..." + value[len(value)-5:]
	}
	return "[MASKED]"
}

// WithEchoLogger Echo에 대한 커스텀 에러 핸들러를 설정합니다.
// 응답 본문은 평문이며 내부 에러 메시지는 노출하지 않습니다.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		httpErr := errors.ToHTTPError(err)

		logger.Error("HTTP error",
			zap.Error(err),
			zap.Int("status", httpErr.Code),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.String("ip", c.RealIP()),
		)

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.Code)
		} else {
			msg, ok := httpErr.Message.(string)
			if !ok {
				msg = http.StatusText(httpErr.Code)
			}
			err = c.String(httpErr.Code, msg)
		}
		if err != nil {
			logger.Error("Failed to send error response", zap.Error(err))
		}
	}
}

// EchoZapLogger는 echo.Logger 인터페이스를 구현한 zap 로거 래퍼입니다.
// 레벨/헤더/프리픽스 설정은 zap 설정을 따르므로 무시됩니다.
type EchoZapLogger struct {
	Logger *zap.Logger
}

// NewEchoZapLogger는 Echo의 Logger 인터페이스를 구현한 zap 로거 래퍼를 생성합니다.
func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	return &EchoZapLogger{Logger: logger}
}

func (l *EchoZapLogger) Output() io.Writer       { return &zapWriter{logger: l.Logger} }
func (l *EchoZapLogger) SetOutput(w io.Writer)   {}
func (l *EchoZapLogger) Level() log.Lvl          { return log.INFO }
func (l *EchoZapLogger) SetLevel(v log.Lvl)      {}
func (l *EchoZapLogger) SetHeader(h string)      {}
func (l *EchoZapLogger) Prefix() string          { return "" }
func (l *EchoZapLogger) SetPrefix(p string)      {}
func (l *EchoZapLogger) Print(i ...interface{})  { l.Logger.Sugar().Info(i...) }
func (l *EchoZapLogger) Debug(i ...interface{})  { l.Logger.Sugar().Debug(i...) }
func (l *EchoZapLogger) Info(i ...interface{})   { l.Logger.Sugar().Info(i...) }
func (l *EchoZapLogger) Warn(i ...interface{})   { l.Logger.Sugar().Warn(i...) }
func (l *EchoZapLogger) Error(i ...interface{})  { l.Logger.Sugar().Error(i...) }
func (l *EchoZapLogger) Fatal(i ...interface{})  { l.Logger.Sugar().Fatal(i...) }
func (l *EchoZapLogger) Panic(i ...interface{})  { l.Logger.Sugar().Panic(i...) }
func (l *EchoZapLogger) Printj(j log.JSON)       { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Debugj(j log.JSON)       { l.Logger.Debug("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Infoj(j log.JSON)        { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Warnj(j log.JSON)        { l.Logger.Warn("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Errorj(j log.JSON)       { l.Logger.Error("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Fatalj(j log.JSON)       { l.Logger.Fatal("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Panicj(j log.JSON)       { l.Logger.Panic("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Printf(format string, i ...interface{}) { l.Logger.Sugar().Infof(format, i...) }
func (l *EchoZapLogger) Debugf(format string, i ...interface{}) { l.Logger.Sugar().Debugf(format, i...) }
func (l *EchoZapLogger) Infof(format string, i ...interface{})  { l.Logger.Sugar().Infof(format, i...) }
func (l *EchoZapLogger) Warnf(format string, i ...interface{})  { l.Logger.Sugar().Warnf(format, i...) }
func (l *EchoZapLogger) Errorf(format string, i ...interface{}) { l.Logger.Sugar().Errorf(format, i...) }
func (l *EchoZapLogger) Fatalf(format string, i ...interface{}) { l.Logger.Sugar().Fatalf(format, i...) }
func (l *EchoZapLogger) Panicf(format string, i ...interface{}) { l.Logger.Sugar().Panicf(format, i...) }

// zapWriter는 io.Writer 인터페이스를 구현한 zap 로거 래퍼입니다.
type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Write(p []byte) (n int, err error) {
	w.logger.Info(string(p))
	return len(p), nil
}
