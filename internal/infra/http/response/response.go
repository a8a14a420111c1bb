// Package response writes the JSON envelope every lead endpoint answers with.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const (
	MsgUnauthorized        = "Unauthorized"
	MsgInternalServerError = "Internal Server Error"
	MsgInvalidJSON         = "Invalid JSON"
	MsgTooManyRequests     = "Too many requests. Please try again later."
)

type Operation int

const (
	OperationRead Operation = iota
	OperationCreate
	OperationUpdate
	OperationDelete
)

// Outcome maps an operation to the success message and status it answers with.
func (op Operation) Outcome() (string, int) {
	switch op {
	case OperationCreate:
		return "Created", http.StatusCreated
	case OperationUpdate:
		return "Updated", http.StatusOK
	case OperationDelete:
		return "Deleted", http.StatusOK
	default:
		return "Read", http.StatusOK
	}
}

func (op Operation) String() string {
	switch op {
	case OperationCreate:
		return "create"
	case OperationUpdate:
		return "update"
	case OperationDelete:
		return "delete"
	default:
		return "read"
	}
}

type Envelope struct {
	Success    bool                      `json:"success"`
	Message    string                    `json:"message"`
	StatusCode int                       `json:"statusCode"`
	Data       any                       `json:"data,omitempty"`
	Errors     []usecase.ValidationError `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func Success(w http.ResponseWriter, op Operation, data any) {
	message, status := op.Outcome()
	JSON(w, status, Envelope{
		Success:    true,
		Message:    message,
		StatusCode: status,
		Data:       data,
	})
}

func Error(w http.ResponseWriter, status int, message string, errs []usecase.ValidationError) {
	JSON(w, status, Envelope{
		Success:    false,
		Message:    message,
		StatusCode: status,
		Errors:     errs,
	})
}

// ValidationFailure answers with the result's code and message, falling back
// to 403 Unauthorized when the validator left them unset.
func ValidationFailure(w http.ResponseWriter, result usecase.ValidationResult) {
	status := result.Code
	if status == 0 {
		status = http.StatusForbidden
	}
	message := result.Message
	if message == "" {
		message = MsgUnauthorized
	}
	Error(w, status, message, result.Errors)
}

func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, MsgInternalServerError, nil)
}
