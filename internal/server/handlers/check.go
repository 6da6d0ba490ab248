package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/brandguard/domainrisk/internal/core"
	"github.com/brandguard/domainrisk/internal/core/engine"
	apperrors "github.com/brandguard/domainrisk/internal/errors"
	"github.com/brandguard/domainrisk/internal/metrics"
	"github.com/brandguard/domainrisk/internal/observability"
)

// MaxCheckBodyBytes caps the /check-domain request body.
const MaxCheckBodyBytes = 1 << 20

// Messages returned in the flat {"error": ...} body.
const (
	MessageDomainRequired = "Domain is required"
	MessageInvalidBody    = "Invalid request body"
	MessageCheckFailed    = "Domain check failed"
)

// DomainChecker runs the combined registration and trademark check for one domain.
type DomainChecker interface {
	Check(ctx context.Context, domain string) (*core.DomainCheckResponse, error)
}

// CheckDomainHandler serves POST /check-domain.
type CheckDomainHandler struct {
	checker DomainChecker
}

// NewCheckDomainHandler returns a handler backed by checker.
func NewCheckDomainHandler(checker DomainChecker) *CheckDomainHandler {
	return &CheckDomainHandler{checker: checker}
}

func (h *CheckDomainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	domain, envelope := decodeDomain(ctx, http.MaxBytesReader(w, r.Body, MaxCheckBodyBytes))
	if envelope != nil {
		metrics.RecordCheckRejected(rejectReason(envelope.Message))
		apperrors.RespondWithMessage(w, r, envelope)
		return
	}

	if h == nil || h.checker == nil {
		apperrors.RespondWithMessage(w, r, apperrors.NewInternalError(MessageCheckFailed))
		return
	}

	resp, err := h.checker.Check(ctx, domain)
	if errors.Is(err, engine.ErrDomainRequired) {
		metrics.RecordCheckRejected(metrics.RejectDomainRequired)
		apperrors.RespondWithMessage(w, r, apperrors.NewValidationError(MessageDomainRequired))
		return
	}
	if ctx.Err() != nil {
		// Client went away; nobody is left to read a response.
		logAbandoned(ctx, domain)
		return
	}
	if err != nil {
		apperrors.RespondWithMessage(w, r, apperrors.WrapInternal(ctx, err, MessageCheckFailed))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// decodeDomain extracts a non-empty string "domain" from a JSON object body.
// Malformed JSON is an invalid body; well-formed JSON of any other shape is a
// missing domain.
func decodeDomain(ctx context.Context, body io.Reader) (string, *gferrors.ErrorEnvelope) {
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF), errors.As(err, &typeErr):
			return "", apperrors.NewValidationError(MessageDomainRequired)
		default:
			return "", apperrors.WrapInvalidInput(ctx, err, MessageInvalidBody)
		}
	}

	raw, ok := payload["domain"]
	if !ok {
		return "", apperrors.NewValidationError(MessageDomainRequired)
	}

	var domain string
	if err := json.Unmarshal(raw, &domain); err != nil || domain == "" {
		return "", apperrors.NewValidationError(MessageDomainRequired)
	}

	return domain, nil
}

func rejectReason(message string) string {
	if message == MessageInvalidBody {
		return metrics.RejectInvalidBody
	}
	return metrics.RejectDomainRequired
}

func logAbandoned(ctx context.Context, domain string) {
	if observability.ServerLogger == nil {
		return
	}
	observability.ServerLogger.Info("Domain check abandoned by client",
		zap.String("domain", domain),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Error(ctx.Err()))
}
