package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine readable code sent in every error body.
type ErrorCode string

const (
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	CodeSecretError      ErrorCode = "SECRET_ERROR"
	CodeDataNotFound     ErrorCode = "DATA_NOT_FOUND"
	CodeAttributeMissing ErrorCode = "ATTRIBUTE_MISSING"
	CodeInvalidData      ErrorCode = "INVALID_DATA"
	CodeGenericError     ErrorCode = "GENERIC_ERROR"
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeConflict         ErrorCode = "CONFLICT"
)

// CustomError carries the HTTP status, the error code and the message
// returned to clients. Err keeps the underlying cause for logging.
type CustomError struct {
	Status    int       `json:"-"`
	ErrorCode ErrorCode `json:"error_code"`
	Message   string    `json:"message"`
	Err       error     `json:"-"`
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %s: %v", e.Status, e.ErrorCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.ErrorCode, e.Message)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func newError(status int, code ErrorCode, message string, cause error) *CustomError {
	return &CustomError{Status: status, ErrorCode: code, Message: message, Err: cause}
}

// InvalidInput reports malformed or missing request fields.
func InvalidInput(message string) *CustomError {
	return newError(http.StatusBadRequest, CodeInvalidInput, message, nil)
}

// InvalidData reports a request body that parsed but is not an acceptable descriptor.
func InvalidData(message string) *CustomError {
	return newError(http.StatusBadRequest, CodeInvalidData, message, nil)
}

// AttributeMissing reports a required attribute absent from the request.
func AttributeMissing(attribute string) *CustomError {
	return newError(http.StatusBadRequest, CodeAttributeMissing, fmt.Sprintf("Attribute '%s' is missing", attribute), nil)
}

func Unauthenticated(message string) *CustomError {
	return newError(http.StatusUnauthorized, CodeUnauthenticated, message, nil)
}

func Forbidden(message string) *CustomError {
	return newError(http.StatusForbidden, CodeForbidden, message, nil)
}

func SecretError(message string) *CustomError {
	return newError(http.StatusForbidden, CodeSecretError, message, nil)
}

func UserNotFound(message string) *CustomError {
	return newError(http.StatusNotFound, CodeUserNotFound, message, nil)
}

func DataNotFound(message string) *CustomError {
	return newError(http.StatusNotFound, CodeDataNotFound, message, nil)
}

func Conflict(message string, cause error) *CustomError {
	return newError(http.StatusConflict, CodeConflict, message, cause)
}

// Generic reports a server side failure with a fixed message.
func Generic(message string, cause error) *CustomError {
	return newError(http.StatusInternalServerError, CodeGenericError, message, cause)
}

// Unexpected reports a server side failure using the cause's own text.
func Unexpected(cause error) *CustomError {
	return newError(http.StatusInternalServerError, CodeGenericError, cause.Error(), cause)
}

// AsCustomError returns err as a *CustomError, converting anything else
// into an Unexpected error so the original message reaches the client.
func AsCustomError(err error) *CustomError {
	if err == nil {
		return nil
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return Unexpected(err)
}
