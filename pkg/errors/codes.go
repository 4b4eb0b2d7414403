package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are stable strings so they
// can be logged, returned in API payloads, and used as metric labels.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every module.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
)

// Client module error codes.
const (
	ErrCodeClientNotFound      ErrorCode = "CLT_001"
	ErrCodeClientAlreadyExists ErrorCode = "CLT_002"
	ErrCodeClientStatusInvalid ErrorCode = "CLT_003"
)

// Transaction module error codes.
const (
	ErrCodeTransactionNotFound    ErrorCode = "TXN_001"
	ErrCodeTransactionTypeInvalid ErrorCode = "TXN_002"
	ErrCodeTransactionDateInvalid ErrorCode = "TXN_003"
)

// Portfolio module error codes.
const (
	ErrCodePortfolioEmpty        ErrorCode = "PORT_001"
	ErrCodePeriodInvalid         ErrorCode = "PORT_002"
	ErrCodePortfolioComputeError ErrorCode = "PORT_003"
)

// Schedule module error codes.
const (
	ErrCodeTaskNotFound        ErrorCode = "SCH_001"
	ErrCodeAppointmentNotFound ErrorCode = "SCH_002"
	ErrCodeScheduleConflict    ErrorCode = "SCH_003"
)

// Insights module error codes.
const (
	ErrCodeMetricUnknown ErrorCode = "INS_001"
)

// CodeOK is the sentinel returned by GetCode for a nil error.
const CodeOK ErrorCode = "OK"

// CodeUnknown is returned by GetCode when no AppError is in the chain.
const CodeUnknown ErrorCode = "UNKNOWN"

// errorCodeHTTPStatus maps every ErrorCode to an HTTP status.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,

	ErrCodeClientNotFound:      http.StatusNotFound,
	ErrCodeClientAlreadyExists: http.StatusConflict,
	ErrCodeClientStatusInvalid: http.StatusBadRequest,

	ErrCodeTransactionNotFound:    http.StatusNotFound,
	ErrCodeTransactionTypeInvalid: http.StatusBadRequest,
	ErrCodeTransactionDateInvalid: http.StatusBadRequest,

	ErrCodePortfolioEmpty:        http.StatusOK,
	ErrCodePeriodInvalid:         http.StatusBadRequest,
	ErrCodePortfolioComputeError: http.StatusInternalServerError,

	ErrCodeTaskNotFound:        http.StatusNotFound,
	ErrCodeAppointmentNotFound: http.StatusNotFound,
	ErrCodeScheduleConflict:    http.StatusConflict,

	ErrCodeMetricUnknown: http.StatusBadRequest,
}

// HTTPStatusForCode returns the HTTP status for an ErrorCode, defaulting to
// 500 for codes that have no explicit mapping.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}
