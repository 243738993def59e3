package service

import "errors"

type ErrorCode string

const (
	ErrorCodeValidation    ErrorCode = "validation"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeForbidden     ErrorCode = "forbidden"
	ErrorCodeConflict      ErrorCode = "conflict"
	ErrorCodeNotFound      ErrorCode = "not_found"
	ErrorCodeUnprocessable ErrorCode = "unprocessable"
	ErrorCodeInternal      ErrorCode = "internal"
)

// Reason 冲突类错误的单条原因，Code 为业务错误码（如 4091 username conflict）。
type Reason struct {
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail"`
}

type ServiceError struct {
	Code    ErrorCode
	Message string
	Reasons []Reason // 唯一性冲突可能同时命中多条
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewServiceError(code ErrorCode, message string) error {
	return &ServiceError{Code: code, Message: message}
}

func NewValidationError(message string) error {
	return NewServiceError(ErrorCodeValidation, message)
}

func NewUnauthorizedError(message string) error {
	return NewServiceError(ErrorCodeUnauthorized, message)
}

func NewForbiddenError(message string) error {
	return NewServiceError(ErrorCodeForbidden, message)
}

func NewConflictError(message string, reasons ...Reason) error {
	return &ServiceError{Code: ErrorCodeConflict, Message: message, Reasons: reasons}
}

func NewNotFoundError(message string) error {
	return NewServiceError(ErrorCodeNotFound, message)
}

func NewUnprocessableError(message string) error {
	return NewServiceError(ErrorCodeUnprocessable, message)
}

func NewInternalError(message string) error {
	return NewServiceError(ErrorCodeInternal, message)
}

func AsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}
