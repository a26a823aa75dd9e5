package api

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// writeError maps err to a status code and writes the error body. Server
// errors are logged; their details stay out of the response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = errs.ErrCodeNodeNotFound
	case errors.Is(err, node.ErrUnknownAttribute):
		code = errs.ErrCodeUnknownAttribute
	case code == "":
		code = errs.ErrCodeInternal
	}

	status := statusFor(code)
	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if code == errs.ErrCodeInternal {
			msg = http.StatusText(status)
		}
	}
	writeErr(w, status, string(code), msg)
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidName,
		errs.ErrCodeInvalidWeight, errs.ErrCodeInvalidScale:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeNodeNotFound, errs.ErrCodeFileNotFound,
		errs.ErrCodeUnknownAttribute:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errs.ErrCodeStorage, errs.ErrCodeNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
