package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"budget/internal/auth"
	"budget/internal/core"
	applog "budget/internal/log"
)

type contextKey string

const userIDKey contextKey = "user_id"

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Errors []core.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps the error taxonomy to a status and a body that never
// carries storage detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	fields := applog.NewFields().
		With(applog.FieldMethod, r.Method).
		With(applog.FieldPath, r.URL.Path).
		WithError(err).
		WithErrorType(applog.Classify(err))
	if id := userIDFrom(ctx); id != "" {
		fields = fields.WithUser(id)
	}

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.InfoContext(ctx, "Request rejected", fields.Args()...)
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: ve.Fields})
	case core.IsNotFound(err):
		logger.InfoContext(ctx, "Resource not found", fields.Args()...)
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		logger.InfoContext(ctx, "Authentication failed", fields.Args()...)
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case core.IsConflict(err):
		logger.InfoContext(ctx, "Conflict", fields.Args()...)
		writeMessage(w, http.StatusConflict, "Already exists")
	default:
		logger.ErrorContext(ctx, "Request failed", fields.Args()...)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object. Malformed bodies become a
// ValidationError on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		ve := &core.ValidationError{}
		ve.Add("body", "request body must be a JSON object")
		return ve
	}
	return nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireAuth resolves the bearer token to a user id before next runs.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, err := s.auth.Verify(token)
		if err != nil {
			applog.FromContext(r.Context()).InfoContext(r.Context(), "Invalid token", applog.FieldError, err.Error())
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := withUserID(r.Context(), userID)
		ctx = applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, userID))
		next(w, r.WithContext(ctx))
	}
}
