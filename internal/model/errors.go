package model

import (
	"fmt"
	"net/http"
)

// BizError 业务错误
// Code 为 API 响应中的短错误码，Status 为对应的 HTTP 状态码。
// 所有操作在第一个被违反的前置条件处快速失败，错误顺序即校验顺序。
type BizError struct {
	Code   string
	Status int
	Detail string
	Extra  map[string]interface{}
}

func (e *BizError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return e.Code
}

// Is 按错误码比较，使 WithDetail/WithExtra 的副本仍能与哨兵错误匹配
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	return ok && t.Code == e.Code
}

// WithDetail 返回携带补充说明的副本，不修改原错误
func (e *BizError) WithDetail(format string, args ...interface{}) *BizError {
	clone := *e
	clone.Detail = fmt.Sprintf(format, args...)
	return &clone
}

// WithExtra 返回附带额外响应字段的副本（如限额超标时的当日累计金额）
func (e *BizError) WithExtra(key string, value interface{}) *BizError {
	clone := *e
	clone.Extra = map[string]interface{}{key: value}
	for k, v := range e.Extra {
		clone.Extra[k] = v
	}
	return &clone
}

// 参数校验类（400）
var (
	ErrValidation = &BizError{Code: "ValidationError", Status: http.StatusBadRequest}
	ErrInvalidPin = &BizError{Code: "InvalidPin", Status: http.StatusBadRequest}
	ErrSameAccount = &BizError{Code: "SameAccount", Status: http.StatusBadRequest}
)

// 资源不存在类（404）
var (
	ErrCustomerNotFound = &BizError{Code: "CustomerNotFound", Status: http.StatusNotFound}
	ErrAccountNotFound  = &BizError{Code: "AccountNotFound", Status: http.StatusNotFound}
)

// 权限类（401/403）
var (
	ErrUnauthenticated = &BizError{Code: "Unauthenticated", Status: http.StatusUnauthorized}
	ErrBadTellerCode   = &BizError{Code: "BadTellerCode", Status: http.StatusForbidden}
	ErrNotOwner        = &BizError{Code: "NotOwner", Status: http.StatusForbidden}
	ErrNotEnrolled     = &BizError{Code: "NotEnrolled", Status: http.StatusForbidden}
)

// 业务规则冲突类（409）
var (
	ErrAccountBlocked        = &BizError{Code: "AccountBlocked", Status: http.StatusConflict}
	ErrPaymentStopped        = &BizError{Code: "PaymentStopped", Status: http.StatusConflict}
	ErrInsufficientFunds     = &BizError{Code: "InsufficientFunds", Status: http.StatusConflict}
	ErrLimitAccountTxnLimit  = &BizError{Code: "LimitAccountTxnLimit", Status: http.StatusConflict}
	ErrLimitAccountDailyLimit = &BizError{Code: "LimitAccountDailyLimit", Status: http.StatusConflict}
)

// 系统内部错误（500）
var ErrInternal = &BizError{Code: "InternalError", Status: http.StatusInternalServerError}
