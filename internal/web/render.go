package web

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hpungsan/hookcard/internal/errors"
)

// renderJSON writes a JSON response. HTML escaping is off so card text
// such as "<#channel>" comes back exactly as sent.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// renderPNG writes an image response.
func renderPNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// errorBody builds the {"error":{...}} envelope for err. INTERNAL errors
// carry a generic message and no details.
func errorBody(err error) (int, map[string]any) {
	hErr, ok := errors.As(err)
	if !ok {
		hErr = errors.NewInternal(err)
	}

	errorObj := map[string]any{
		"code":    string(hErr.Code),
		"message": hErr.Message,
		"status":  hErr.Status,
	}
	if hErr.Code == errors.ErrInternal {
		errorObj["message"] = "an internal error occurred"
	} else if hErr.Details != nil {
		errorObj["details"] = hErr.Details
	}
	return hErr.Status, map[string]any{"error": errorObj}
}

// renderError writes err as a JSON error response with its HookError status.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context(), h.logger).Warn("request failed", errorFields(err)...)
	}
	renderJSON(w, status, body)
}

// decodeBody reads a JSON object request body into T. Bodies larger than
// MaxBodyBytes are rejected.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var result T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&result); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.As(err, &maxErr):
			return result, errors.NewInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes))
		case stderrors.Is(err, io.EOF):
			return result, errors.NewInvalidRequest("request body is required")
		default:
			return result, errors.NewInvalidRequest("request body must be a JSON object")
		}
	}
	return result, nil
}
