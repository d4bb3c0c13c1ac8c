package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/donna/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type envelope map[string]any

// maxBodyBytes caps request bodies; chat messages are the largest input.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorConflict):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorBody maps err to a status and the message shown to the client.
// Internal failures are logged and reported generically; model failures
// keep their text since the chat UI shows it.
func (s *Server) errorBody(r *http.Request, err error) (int, string) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		return status, err.Error()
	}

	s.logger.Error(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)

	if errors.Is(err, common.ErrUpstream) {
		return status, err.Error()
	}
	return status, "Internal server error"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := s.errorBody(r, err)
	writeJSON(w, status, envelope{"success": false, "error": msg})
}

// writeAuthError is writeError for the login and registration routes,
// whose clients read "message".
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := s.errorBody(r, err)
	writeJSON(w, status, envelope{"success": false, "error": msg, "message": msg})
}

var errBadBody = common.Detail(common.ErrorValidation, "Invalid request body")

// decodeJSON reads a JSON body into dst and validates it. An empty body
// leaves dst untouched.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return common.Detailf(common.ErrorValidation, "%s is invalid (%s)", fe.Field(), fe.Tag())
		}
		return errBadBody
	}
	return nil
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.Detailf(common.ErrorValidation, "invalid id %q", raw)
	}
	return id, nil
}
