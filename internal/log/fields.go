package log

import (
	"context"
	"errors"

	"budget/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldPeriodID   = "period_id"
	FieldExpenseID  = "expense_id"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldEventType  = "event_type"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentAuth      = "auth"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentExport    = "export"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentCLI       = "cli"
)

const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeConflict   = "conflict_error"
	ErrorTypeDatabase   = "database_error"
	ErrorTypeTimeout    = "timeout_error"
	ErrorTypeInternal   = "internal_error"
)

// Classify names the error category used in the error_type field.
func Classify(err error) string {
	var se *core.StorageError
	switch {
	case err == nil:
		return ""
	case core.IsValidation(err):
		return ErrorTypeValidation
	case core.IsNotFound(err):
		return ErrorTypeNotFound
	case core.IsConflict(err):
		return ErrorTypeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.As(err, &se):
		return ErrorTypeDatabase
	default:
		return ErrorTypeInternal
	}
}

// Fields builds structured attributes in a fixed order.
type Fields []any

func NewFields() Fields {
	return Fields{}
}

func (f Fields) With(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) WithRequestID(requestID string) Fields {
	if requestID == "" {
		return f
	}
	return f.With(FieldRequestID, requestID)
}

func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return f.With(FieldError, err.Error())
}

func (f Fields) WithErrorType(t string) Fields {
	if t == "" {
		return f
	}
	return f.With(FieldErrorType, t)
}

func (f Fields) WithOperation(op string) Fields {
	return f.With(FieldOperation, op)
}

func (f Fields) WithUser(userID string) Fields {
	return f.With(FieldUserID, userID)
}

// WithPeriod adds the ledger period coordinates.
func (f Fields) WithPeriod(year, month int) Fields {
	return f.With(FieldYear, year).With(FieldMonth, month)
}

func (f Fields) WithHTTP(method, path string, status int, durationMs int64) Fields {
	return f.With(FieldMethod, method).
		With(FieldPath, path).
		With(FieldStatusCode, status).
		With(FieldDuration, durationMs)
}

// Args returns the fields as slog key/value arguments.
func (f Fields) Args() []any {
	return []any(f)
}
