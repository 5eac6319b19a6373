package chttp

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes. Binding and dispatch faults carry a
// code so the transport layer can render them structurally instead of defaulting everything to a
// 500 response.
type Code int

const (
	CodeUnknown              Code = 0
	CodeBadRequest           Code = http.StatusBadRequest
	CodeUnauthorized         Code = http.StatusUnauthorized
	CodeForbidden            Code = http.StatusForbidden
	CodeNotFound             Code = http.StatusNotFound
	CodeMethodNotAllowed     Code = http.StatusMethodNotAllowed
	CodeRequestTimeout       Code = http.StatusRequestTimeout
	CodeConflict             Code = http.StatusConflict
	CodeUnsupportedMediaType Code = http.StatusUnsupportedMediaType
	CodeUnprocessableEntity  Code = http.StatusUnprocessableEntity
	CodeTooManyRequests      Code = http.StatusTooManyRequests

	CodeInternalServerError Code = http.StatusInternalServerError
	CodeNotImplemented      Code = http.StatusNotImplemented
	CodeBadGateway          Code = http.StatusBadGateway
	CodeServiceUnavailable  Code = http.StatusServiceUnavailable
	CodeGatewayTimeout      Code = http.StatusGatewayTimeout
)

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code { return e.code }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and [CodeUnknown]
// otherwise.
func CodeOf(err error) Code {
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Code()
	}

	return CodeUnknown
}
