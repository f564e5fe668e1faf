package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// 헬스 체크는 로드밸런서가 자주 호출하므로 Debug 레벨로만 기록합니다
const grpcHealthService = "grpc.health.v1.Health"

// NewGrpcUnaryServerInterceptor는 단일 요청/응답 gRPC 메서드에 대한 로깅 인터셉터를 생성합니다.
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		startTime := time.Now()

		resp, err := handler(ctx, req)

		logGrpcResult(logger, "gRPC 요청", info.FullMethod, time.Since(startTime), err)
		return resp, err
	}
}

// NewGrpcStreamServerInterceptor는 스트리밍 gRPC 메서드에 대한 로깅 인터셉터를 생성합니다.
func NewGrpcStreamServerInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		startTime := time.Now()

		// ServerStream을 래핑하여 메시지 카운팅
		wrappedStream := &wrappedServerStream{ServerStream: ss}

		err := handler(srv, wrappedStream)

		logGrpcResult(logger, "gRPC 스트림", info.FullMethod, time.Since(startTime), err,
			zap.Int("grpc.recv_count", wrappedStream.recvCount),
			zap.Int("grpc.send_count", wrappedStream.sendCount),
		)
		return err
	}
}

// logGrpcResult는 상태 코드에 따라 로그 레벨을 결정해 기록합니다
func logGrpcResult(logger *zap.Logger, kind, fullMethod string, duration time.Duration, err error, extra ...zap.Field) {
	service := path.Dir(fullMethod)[1:]
	method := path.Base(fullMethod)

	statusCode := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code()
		} else {
			statusCode = codes.Unknown
		}
	}

	fields := []zap.Field{
		zap.String("grpc.service", service),
		zap.String("grpc.method", method),
		zap.String("grpc.code", statusCode.String()),
		zap.Duration("grpc.duration", duration),
	}
	fields = append(fields, extra...)

	switch statusCode {
	case codes.OK:
		if service == grpcHealthService {
			logger.Debug(kind+" 완료", fields...)
			return
		}
		logger.Info(kind+" 완료", fields...)
	case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted,
		codes.Aborted, codes.Unavailable, codes.DataLoss:
		logger.Warn(kind+" 실패", append(fields, zap.Error(err))...)
	default:
		logger.Error(kind+" 오류", append(fields, zap.Error(err))...)
	}
}

// wrappedServerStream은 ServerStream을 래핑하여 메시지 송수신 횟수를 추적합니다.
type wrappedServerStream struct {
	grpc.ServerStream
	recvCount int
	sendCount int
}

// RecvMsg는 메시지 수신 횟수를 추적합니다.
func (w *wrappedServerStream) RecvMsg(m interface{}) error {
	err := w.ServerStream.RecvMsg(m)
	if err == nil {
		w.recvCount++
	}
	return err
}

// SendMsg는 메시지 송신 횟수를 추적합니다.
func (w *wrappedServerStream) SendMsg(m interface{}) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sendCount++
	}
	return err
}

// GrpcServerOptions는 로깅 인터셉터를 설정하는 서버 옵션을 반환합니다.
func GrpcServerOptions(logger *zap.Logger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(NewGrpcUnaryServerInterceptor(logger)),
		grpc.ChainStreamInterceptor(NewGrpcStreamServerInterceptor(logger)),
	}
}
