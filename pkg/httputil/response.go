package httputil

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	rerrors "github.com/matzehuels/rsolver/pkg/errors"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code      rerrors.Code `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code rerrors.Code) int {
	switch code {
	case rerrors.ErrCodeInvalidInput, rerrors.ErrCodeInvalidNetlist, rerrors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case rerrors.ErrCodeInvalidFormat:
		return http.StatusUnsupportedMediaType
	case rerrors.ErrCodeNotFound, rerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case rerrors.ErrCodeNotReducible:
		return http.StatusUnprocessableEntity
	case rerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case rerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as an indented JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// WriteError writes err as an [ErrorBody]. Errors without a code are
// reported as INTERNAL_ERROR with a generic message so that internals do
// not leak to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	body := ErrorBody{
		Code:      rerrors.GetCode(err),
		RequestID: RequestIDFrom(r.Context()),
	}
	if body.Code == "" {
		body.Code = rerrors.ErrCodeInternal
		body.Message = "internal server error"
	} else {
		body.Message = rerrors.UserMessage(err)
	}
	WriteJSON(w, StatusFor(body.Code), body)
}

type requestIDKey struct{}

// RequestID is middleware that assigns every request an id. A valid UUID
// supplied by the client in X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the id assigned by [RequestID], or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
