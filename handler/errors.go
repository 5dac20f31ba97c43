package handler

import (
	"errors"
	"net/http"
)

// HTTPError is an error with a status code and a stable machine-readable code.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e HTTPError) Error() string { return e.Message }

// NewHTTPError builds an HTTPError whose message is err's text.
func NewHTTPError(status int, code string, err error) HTTPError {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	return HTTPError{Status: status, Code: code, Message: msg}
}

var (
	ErrBadRequest   = HTTPError{Status: http.StatusBadRequest, Code: "bad_request", Message: "Bad request"}
	ErrUnauthorized = HTTPError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Unauthorized"}
	ErrInternal     = HTTPError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "Internal server error"}
)

// StatusOf returns the HTTPError carried by err, or ErrInternal.
func StatusOf(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return ErrInternal
}

// DefaultErrorHandler renders StatusOf(err) as the JSON error envelope.
// Messages of internal errors are never exposed.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := StatusOf(err)
	_ = ErrorJSON(httpErr).Render(w, r)
}
