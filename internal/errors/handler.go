package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/render"
)

// Problem is the JSON error payload returned by the API, loosely
// following RFC 7807.
type Problem struct {
	Status int    `json:"status"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// Render implements render.Renderer.
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// statusFor maps an error category to an HTTP status code.
func statusFor(errType ErrorType) int {
	switch errType {
	case ErrTypeValidation, ErrTypeParsing:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeConfig:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToProblem converts any error into a renderable Problem. Unrecognized
// errors become opaque internal errors so no internals leak to clients.
func ToProblem(err error) *Problem {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &Problem{
			Status: statusFor(appErr.Type),
			Type:   string(appErr.Type),
			Detail: appErr.Message,
		}
	}
	return &Problem{
		Status: http.StatusInternalServerError,
		Type:   string(ErrTypeInternal),
		Detail: "internal server error",
	}
}

// WriteError renders an error as the API's JSON problem payload.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	render.Render(w, r, ToProblem(err))
}
