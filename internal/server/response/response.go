// Package response provides the JSON envelope shared by every docsync API
// endpoint. Successful responses carry errorCode -1; failures carry one of
// the numeric codes below and an HTTP status chosen by the handler.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/docsync/pkg/logging"
)

// Error codes returned in the envelope.
const (
	CodeNone             = -1
	CodeGeneric          = 1000
	CodeFetchFailed      = 1001
	CodeMissingBatch     = 1002
	CodeInvalidCandidate = 1002
	CodeMissingCleaned   = 1003
	CodeInvalidRecords   = 1004
	CodeSubmitFailed     = 1005
	CodeRateLimited      = 1006
)

// Messages used by the API.
const (
	MessageSuccess          = "Success"
	MessageGeneric          = "Something went wrong"
	MessageInvalidCandidate = "Invalid candidate."
	MessageRateLimited      = "Too many requests, please slow down"
)

// Response is the envelope written by every endpoint.
type Response struct {
	HasError  bool   `json:"hasError"`
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

// Success builds a success envelope. An empty message becomes "Success".
func Success(data any, message string) Response {
	if message == "" {
		message = MessageSuccess
	}
	return Response{
		HasError:  false,
		ErrorCode: CodeNone,
		Message:   message,
		Data:      orEmpty(data),
	}
}

// Failure builds an error envelope. A zero code becomes CodeGeneric.
func Failure(code int, message string, data any) Response {
	if code == 0 {
		code = CodeGeneric
	}
	if message == "" {
		message = MessageGeneric
	}
	return Response{
		HasError:  true,
		ErrorCode: code,
		Message:   message,
		Data:      orEmpty(data),
	}
}

// JSON writes resp with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Warn().Err(err).Msg("Failed to write response body")
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusOK, Success(data, message))
}

// Fail writes an error envelope with the given status.
func Fail(w http.ResponseWriter, status, code int, message string, data any) {
	JSON(w, status, Failure(code, message, data))
}

// BadRequest writes a 400 error envelope.
func BadRequest(w http.ResponseWriter, code int, message string) {
	Fail(w, http.StatusBadRequest, code, message, nil)
}

// Forbidden writes a 403 invalid candidate envelope.
func Forbidden(w http.ResponseWriter) {
	Fail(w, http.StatusForbidden, CodeInvalidCandidate, MessageInvalidCandidate, nil)
}

// MethodNotAllowed writes a 405 error envelope.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	Fail(w, http.StatusMethodNotAllowed, CodeGeneric, "Method "+method+" not allowed", nil)
}

// RateLimited writes a 429 error envelope.
func RateLimited(w http.ResponseWriter) {
	Fail(w, http.StatusTooManyRequests, CodeRateLimited, MessageRateLimited, nil)
}

// InternalError writes a 500 error envelope without exposing err.
func InternalError(w http.ResponseWriter, code int, message string) {
	Fail(w, http.StatusInternalServerError, code, message, nil)
}

func orEmpty(data any) any {
	if data == nil {
		return map[string]any{}
	}
	return data
}
