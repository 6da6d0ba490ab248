package errors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandguard/domainrisk/internal/metrics"
	"github.com/brandguard/domainrisk/internal/observability"
	"github.com/brandguard/domainrisk/internal/server/middleware"
)

// Error codes carried by envelopes and mapped to HTTP statuses.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeConfigInvalid      = "CONFIG_INVALID"
)

var statusByCode = map[string]int{
	CodeInvalidInput:       http.StatusBadRequest,
	CodeValidationFailed:   http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
	CodeExternalService:    http.StatusBadGateway,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
}

func NewValidationError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeValidationFailed, message)
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeServiceUnavailable, message)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

// Wrap helpers keep err in the envelope context and tag it with the request id
// from ctx, or a fresh id outside a request.

func WrapInvalidInput(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInvalidInput, err, message)
}

func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInternal, err, message)
}

func WrapExternalService(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeExternalService, err, message)
}

func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeConfigInvalid, err, message)
}

func wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	id := observability.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.New().String()
	}
	// No tracer is wired; the request id doubles as the trace id.
	envelope := errors.NewErrorEnvelope(code, message).WithCorrelationID(id).WithTraceID(id)
	return withCause(envelope, err)
}

func withCause(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if err == nil {
		return envelope
	}
	if updated, updateErr := envelope.WithContext(map[string]interface{}{"wrapped_error": err.Error()}); updateErr == nil {
		return updated
	}
	return envelope
}

// asEnvelope returns err as an envelope, wrapping foreign errors as internal ones.
func asEnvelope(err error) *errors.ErrorEnvelope {
	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}
	if err == nil {
		envelope, _ := NewInternalError("unexpected nil error").WithSeverity(errors.SeverityCritical)
		return envelope
	}
	envelope, _ := withCause(NewInternalError("unexpected error"), err).WithSeverity(errors.SeverityHigh)
	return envelope
}

// HTTPStatusFromEnvelope resolves the HTTP status for an envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status for an error code; unknown codes are 500.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HTTPErrorDetail is the body of an envelope error response.
type HTTPErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// HTTPErrorResponse is written for routing, health and metrics failures.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// MessageResponse is the flat error body of POST /check-domain.
type MessageResponse struct {
	Error string `json:"error"`
}

// RespondWithError writes any error as an envelope response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithEnvelope(w, r, asEnvelope(err))
}

// RespondWithEnvelope writes the envelope body, logging and counting it first.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}
	envelope, status := finalize(r, envelope)
	writeJSON(w, status, HTTPErrorResponse{Error: HTTPErrorDetail{
		Code:      envelope.Code,
		Message:   envelope.Message,
		Details:   publicDetails(envelope),
		RequestID: envelope.CorrelationID,
	}})
}

// RespondWithMessage logs and counts like RespondWithEnvelope but writes only
// {"error": envelope.Message}. Details stay in the logs.
func RespondWithMessage(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}
	envelope, status := finalize(r, envelope)
	writeJSON(w, status, MessageResponse{Error: envelope.Message})
}

// publicDetails merges envelope details with context; details win on key clashes.
func publicDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if len(envelope.Details) == 0 && len(envelope.Context) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(envelope.Details)+len(envelope.Context))
	for key, value := range envelope.Context {
		merged[key] = value
	}
	for key, value := range envelope.Details {
		merged[key] = value
	}
	return merged
}

func finalize(r *http.Request, envelope *errors.ErrorEnvelope) (*errors.ErrorEnvelope, int) {
	if envelope == nil {
		envelope = asEnvelope(nil)
	}
	if envelope.CorrelationID == "" {
		id := ""
		if r != nil {
			id = observability.RequestIDFromContext(r.Context())
		}
		if id == "" {
			id = "fallback-" + errors.GenerateCorrelationID()
		}
		envelope = envelope.WithCorrelationID(id)
	}

	status := HTTPStatusFromEnvelope(envelope)
	logHTTPError(envelope, status)

	endpoint := "/unknown"
	if r != nil {
		endpoint = middleware.EndpointLabel(r)
	}
	metrics.RecordHTTPError(endpoint, envelope.Code, status)

	return envelope, status
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func logHTTPError(envelope *errors.ErrorEnvelope, status int) {
	logger := observability.ServerLogger
	if logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", status),
		zap.String("request_id", envelope.CorrelationID),
	}
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}

	switch {
	case envelope.Severity == errors.SeverityCritical, envelope.Severity == errors.SeverityHigh, status >= http.StatusInternalServerError:
		logger.Error(envelope.Message, fields...)
	case envelope.Severity == errors.SeverityMedium:
		logger.Warn(envelope.Message, fields...)
	default:
		logger.Info(envelope.Message, fields...)
	}
}
