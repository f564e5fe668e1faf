package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToHTTPStatus는 에러 코드를 HTTP 상태 코드로 변환합니다
func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// HTTPStatusOf는 에러를 응답 상태 코드로 변환합니다
func HTTPStatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr.Code
	}
	return ToHTTPStatus(CodeOf(err))
}

// ToHTTPError는 에러를 Echo HTTP 에러로 변환합니다
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		httpStatus := ToHTTPStatus(appErr.Code())
		return echo.NewHTTPError(httpStatus, appErr.Message()).SetInternal(err)
	}

	// Echo 에러인 경우 그대로 반환
	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr
	}

	// 기본 에러는 500으로 처리하고 내부 메시지는 노출하지 않습니다
	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
}
