package common

import (
	"encoding/json"
	"net/http"

	apperrors "goodnight/pkg/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Data  interface{}     `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error *ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Messages []string `json:"messages"`
	Status   int      `json:"status"`
}

// RespondJSON sends a success response wrapping data in the standard envelope
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{Data: data})
}

// RespondPage sends a success response carrying page metadata alongside data
func RespondPage(w http.ResponseWriter, status int, data interface{}, meta *PaginationMeta) {
	writeJSON(w, status, APIResponse{Data: data, Meta: meta})
}

// RespondError sends an error response with one or more messages
func RespondError(w http.ResponseWriter, status int, messages ...string) {
	writeJSON(w, status, APIResponse{
		Error: &ErrorInfo{
			Messages: messages,
			Status:   status,
		},
	})
}

// RespondAppError maps an application error onto the response envelope.
// Internal errors are elided to a generic message unless debug is set.
func RespondAppError(w http.ResponseWriter, err error, debug bool) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.NewInternalError("something went wrong").WithCause(err)
	}

	messages := appErr.Messages
	if appErr.Type == apperrors.ErrorTypeInternal && !debug {
		messages = []string{"something went wrong"}
	}

	RespondError(w, appErr.HTTPStatus, messages...)
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ParseJSONBody parses JSON request body with size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return apperrors.NewInvalidError("invalid request body").WithCause(err)
	}
	return nil
}
