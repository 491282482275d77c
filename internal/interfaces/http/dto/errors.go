package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// Checkout and coupon error codes. These are part of the public API
// contract: clients branch on them, so they pass through unchanged.
const (
	ErrCodeCouponNotFound    = "COUPON_NOT_FOUND"
	ErrCodeCouponInactive    = "COUPON_INACTIVE"
	ErrCodeBelowMinimum      = "BELOW_MINIMUM"
	ErrCodeNewUsersOnly      = "NEW_USERS_ONLY"
	ErrCodeUsageExceeded     = "USAGE_EXCEEDED"
	ErrCodeVendorConflict    = "VENDOR_CONFLICT"
	ErrCodeStaleSnapshot     = "STALE_SNAPSHOT"
	ErrCodeOrderExpired      = "ORDER_EXPIRED"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeRateLimited:   http.StatusTooManyRequests,

	ErrCodeCouponNotFound:    http.StatusNotFound,
	ErrCodeCouponInactive:    http.StatusUnprocessableEntity,
	ErrCodeBelowMinimum:      http.StatusUnprocessableEntity,
	ErrCodeNewUsersOnly:      http.StatusUnprocessableEntity,
	ErrCodeUsageExceeded:     http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeVendorConflict:    http.StatusConflict,
	ErrCodeStaleSnapshot:     http.StatusConflict,
	ErrCodeOrderExpired:      http.StatusGone,

	// Domain input guards surface as 422: the request was well-formed but
	// violated a business rule.
	"INVALID_QUANTITY":       http.StatusUnprocessableEntity,
	"INVALID_COUPON_CODE":    http.StatusUnprocessableEntity,
	"INVALID_COUPON_NAME":    http.StatusUnprocessableEntity,
	"INVALID_COUPON_TARGET":  http.StatusUnprocessableEntity,
	"INVALID_DISCOUNT":       http.StatusUnprocessableEntity,
	"INVALID_DISCOUNT_TYPE":  http.StatusUnprocessableEntity,
	"INVALID_DISCOUNT_VALUE": http.StatusUnprocessableEntity,
	"INVALID_DISCOUNT_CAP":   http.StatusUnprocessableEntity,
	"INVALID_MINIMUM_AMOUNT": http.StatusUnprocessableEntity,
	"INVALID_USAGE_LIMIT":    http.StatusUnprocessableEntity,
	"INVALID_ADDRESS":        http.StatusUnprocessableEntity,
	"INVALID_EMAIL":          http.StatusUnprocessableEntity,
	"INVALID_PASSWORD":       http.StatusUnprocessableEntity,
	"INVALID_NAME":           http.StatusUnprocessableEntity,
	"INVALID_PRICE":          http.StatusUnprocessableEntity,
	"INVALID_STOCK":          http.StatusUnprocessableEntity,
	"INVALID_PRODUCT":        http.StatusUnprocessableEntity,
	"INVALID_PRODUCT_NAME":   http.StatusUnprocessableEntity,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"INVALID_STATUS":         http.StatusUnprocessableEntity,
	"INVALID_ROLE":           http.StatusUnprocessableEntity,
	"INVALID_USER":           http.StatusUnprocessableEntity,
	"INVALID_VENDOR":         http.StatusUnprocessableEntity,
	"INVALID_PAYMENT_ORDER":  http.StatusUnprocessableEntity,
	"INVALID_ORDER_NUMBER":   http.StatusUnprocessableEntity,
	"EMPTY_CART":             http.StatusUnprocessableEntity,
	"EMPTY_ORDER":            http.StatusUnprocessableEntity,
	"DUPLICATE_ITEM":         http.StatusUnprocessableEntity,
	"COUPON_ALREADY_APPLIED": http.StatusUnprocessableEntity,
	"INVALID_INPUT":          http.StatusBadRequest,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 so a missing entry fails loud in monitoring
// rather than leaking as a misleading 4xx.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
