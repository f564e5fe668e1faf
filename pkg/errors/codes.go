package errors

// 공통 에러 코드 정의
const (
	// 일반적인 에러 코드
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrTimeout         = "TIMEOUT"

	// 웹훅 처리 에러 코드
	ErrInvalidSignature = "INVALID_SIGNATURE" // 서명 불일치: 재시도 없음, 상태 변경 없음
	ErrMalformedPayload = "MALFORMED_PAYLOAD" // 검증된 본문 파싱 실패
	ErrUnavailable      = "UNAVAILABLE"       // 저장소/클레임 백엔드 일시 장애
	ErrRetriesExhausted = "RETRIES_EXHAUSTED" // 최대 재시도 후 최종 실패
	ErrSweepFailed      = "SWEEP_FAILED"      // 만료 스윕 조회/커밋 실패
)
