package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
)

// Messages returned to callers for entitlement failures.
const (
	msgPlanUpgradeRequired = "Plan upgrade required for this agent type"
	msgUsageLimitReached   = "Usage limit reached for your plan"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
// The body is {"error": message, "code": errorCode}.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  errorCode,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// serviceError describes how a service error is presented to callers.
type serviceError struct {
	status  int
	code    string
	message string
}

// classifyError maps service sentinel errors to an HTTP status, code and
// message. notFound and failure are the messages used for 404 and 500.
func classifyError(err error, notFound, failure string) serviceError {
	switch {
	case errors.Is(err, apperrors.ErrUnknownAgentType):
		return serviceError{http.StatusBadRequest, "unknown_agent_type", "Unknown agent type"}
	case errors.Is(err, apperrors.ErrInvalidStatus):
		return serviceError{http.StatusBadRequest, "invalid_status", "Invalid workflow status"}
	case errors.Is(err, apperrors.ErrInvalidRole):
		return serviceError{http.StatusBadRequest, "invalid_role", "Invalid role"}
	case errors.Is(err, apperrors.ErrInvalidInput):
		return serviceError{http.StatusBadRequest, "invalid_input", err.Error()}
	case errors.Is(err, apperrors.ErrNotFound):
		return serviceError{http.StatusNotFound, "not_found", notFound}
	case errors.Is(err, apperrors.ErrPlanUpgradeRequired):
		return serviceError{http.StatusForbidden, "plan_upgrade_required", msgPlanUpgradeRequired}
	case errors.Is(err, apperrors.ErrUsageLimitReached):
		return serviceError{http.StatusForbidden, "usage_limit_reached", msgUsageLimitReached}
	case errors.Is(err, apperrors.ErrInvalidSignature):
		return serviceError{http.StatusUnauthorized, "invalid_signature", "Invalid signature"}
	default:
		return serviceError{http.StatusInternalServerError, "internal_error", failure}
	}
}

// writeServiceError converts err to a JSON error response. Server errors are
// logged with the underlying cause; the caller only sees the generic message.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, notFound, failure string) {
	se := classifyError(err, notFound, failure)
	if se.status >= http.StatusInternalServerError {
		logger.Error(failure, zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.String("code", se.code), zap.Error(err))
	}
	if err := ErrorResponse(w, se.status, se.code, se.message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeError writes an error response, logging if the write fails.
func writeError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeResponse writes a JSON body, logging if the write fails.
func writeResponse(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
