package handler

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"` // Per-field validation messages
}

type jsonResponse struct {
	status int
	body   Envelope
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON renders v as {"data": v} with 200.
func JSON(v any) Response {
	return jsonResponse{status: http.StatusOK, body: Envelope{Data: v}}
}

// JSONWithStatus renders v as {"data": v} with status.
func JSONWithStatus(status int, v any) Response {
	return jsonResponse{status: status, body: Envelope{Data: v}}
}

// ErrorJSON renders e as {"error": {...}} with e.Status.
func ErrorJSON(e HTTPError) Response {
	return jsonResponse{status: e.Status, body: Envelope{Error: &ErrorDetail{Code: e.Code, Message: e.Message}}}
}

// FieldErrorJSON is ErrorJSON with per-field messages attached.
func FieldErrorJSON(e HTTPError, fields map[string][]string) Response {
	return jsonResponse{status: e.Status, body: Envelope{Error: &ErrorDetail{Code: e.Code, Message: e.Message, Fields: fields}}}
}

type emptyResponse struct{ status int }

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty renders 204 No Content.
func Empty() Response { return emptyResponse{status: http.StatusNoContent} }

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error defers to the ErrorHandler configured on Wrap.
func Error(err error) Response { return errorResponse{err: err} }
