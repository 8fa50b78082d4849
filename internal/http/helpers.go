package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pondo/internal/core"
	applog "pondo/internal/log"
	"pondo/internal/services"
)

type (
	requestIDKey struct{}
	usernameKey  struct{}
)

// usernameFrom returns the authenticated username stored by withAuth.
func usernameFrom(r *http.Request) string {
	if v, ok := r.Context().Value(usernameKey{}).(string); ok {
		return v
	}
	return ""
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldStatusCode, status, applog.FieldPath, r.URL.Path, applog.FieldError, msg)
	}
}

// writeServiceError maps domain errors onto HTTP statuses: validation errors
// to 422, missing rows to 404, duplicates to 409, bad logins to 401.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadBody):
		writeError(w, r, http.StatusBadRequest, "malformed request body")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidUsername),
		errors.Is(err, core.ErrInvalidPassword),
		errors.Is(err, core.ErrInvalidEmail):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrBadCredentials):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Internal error",
			applog.FieldPath, r.URL.Path, applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// errBadBody marks an unparseable request body.
var errBadBody = errors.New("malformed request body")

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", errBadBody, err)
	}
	return nil
}

// parseYearMonth extracts the optional year/month query parameters. Absent
// parameters mean no period filter; values that are not positive integers
// (month 1-12) are rejected.
func parseYearMonth(r *http.Request) (year, month int, err error) {
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year <= 0 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
	}
	return year, month, nil
}

// parseID reads an entry id from the query string.
func parseID(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("id"))
	if v == "" {
		return 0, fmt.Errorf("missing id parameter")
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
