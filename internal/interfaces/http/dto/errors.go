package dto

import "net/http"

// API error codes. Every code the API answers with is ERR_ prefixed.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeTimeout    = "ERR_TIMEOUT"
	ErrCodeValidation = "ERR_VALIDATION"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"

	ErrCodeInvalidCode     = "ERR_INVALID_CODE"
	ErrCodeInvalidTitle    = "ERR_INVALID_TITLE"
	ErrCodeInvalidCount    = "ERR_INVALID_COUNT"
	ErrCodeInvalidSettings = "ERR_INVALID_SETTINGS"
	ErrCodeCodeCollision   = "ERR_CODE_COLLISION"

	ErrCodeEmptyJob          = "ERR_EMPTY_JOB"
	ErrCodeJobTooLarge       = "ERR_JOB_TOO_LARGE"
	ErrCodeInvalidPaperSize  = "ERR_INVALID_PAPER_SIZE"
	ErrCodeInvalidLayoutMode = "ERR_INVALID_LAYOUT_MODE"
	ErrCodeInvalidLayout     = "ERR_INVALID_LAYOUT"

	ErrCodeRenderFailed        = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout       = "ERR_RENDER_TIMEOUT"
	ErrCodeRendererUnavailable = "ERR_RENDERER_UNAVAILABLE"
)

var httpStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeTimeout:    http.StatusGatewayTimeout,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeInvalidCode:     http.StatusBadRequest,
	ErrCodeInvalidTitle:    http.StatusBadRequest,
	ErrCodeInvalidCount:    http.StatusBadRequest,
	ErrCodeInvalidSettings: http.StatusBadRequest,
	ErrCodeCodeCollision:   http.StatusConflict,

	ErrCodeEmptyJob:          http.StatusUnprocessableEntity,
	ErrCodeJobTooLarge:       http.StatusUnprocessableEntity,
	ErrCodeInvalidPaperSize:  http.StatusBadRequest,
	ErrCodeInvalidLayoutMode: http.StatusBadRequest,
	ErrCodeInvalidLayout:     http.StatusUnprocessableEntity,

	ErrCodeRenderFailed:        http.StatusInternalServerError,
	ErrCodeRenderTimeout:       http.StatusGatewayTimeout,
	ErrCodeRendererUnavailable: http.StatusServiceUnavailable,
}

// domainCodes translates domain and renderer error codes that do not map
// to an API code by prefixing alone
var domainCodes = map[string]string{
	"VALIDATION_ERROR":  ErrCodeValidation,
	"INTERNAL_ERROR":    ErrCodeInternal,
	"INVALID_PAGE_SIZE": ErrCodeInvalidLayout,
	"INVALID_JOB_KIND":  ErrCodeInvalidInput,
	"INVALID_OUTPUT":    ErrCodeInvalidState,
	"RASTERIZE_FAILED":  ErrCodeRenderFailed,
	"INVALID_HTML":      ErrCodeRenderFailed,
	"STORAGE_FAILED":    ErrCodeRenderFailed,
	"BINARY_NOT_FOUND":  ErrCodeRendererUnavailable,
	"OUTPUT_NOT_FOUND":  ErrCodeNotFound,
}

// NormalizeErrorCode maps a domain code such as NOT_FOUND or RENDER_FAILED
// to its API code. Unknown codes come back unchanged.
func NormalizeErrorCode(code string) string {
	if api, ok := domainCodes[code]; ok {
		return api
	}
	if _, ok := httpStatus["ERR_"+code]; ok {
		return "ERR_" + code
	}
	return code
}

// GetHTTPStatus returns the status for an API code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
