package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/auth"
)

// ParseWorkflowID extracts and validates the workflow ID from the request path.
// Returns the parsed UUID and true on success, or uuid.Nil and false on error
// (after writing an error response).
// Expects path parameter: id
func ParseWorkflowID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r.PathValue("id"), "invalid_workflow_id", "Invalid workflow ID format", logger)
}

// ParseUserID validates a caller-supplied user_id and, when the request
// carries a verified token, checks that it belongs to the same user.
// Writes 400 for a missing or malformed id and 403 on subject mismatch.
func ParseUserID(w http.ResponseWriter, r *http.Request, raw string, auditor *audit.SecurityAuditor, logger *zap.Logger) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		writeError(w, logger, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return uuid.Nil, false
	}

	userID, ok := parseUUID(w, raw, "invalid_user_id", "Invalid user_id format", logger)
	if !ok {
		return uuid.Nil, false
	}

	if err := auth.CheckSubject(r.Context(), userID.String()); err != nil {
		if errors.Is(err, auth.ErrSubjectMismatch) {
			auditor.LogSubjectMismatch(r.Context(), userID.String())
		}
		writeError(w, logger, http.StatusForbidden, "subject_mismatch", "Token does not belong to this user")
		return uuid.Nil, false
	}
	return userID, true
}

// QueryUserID reads user_id from the query string and validates it like ParseUserID.
func QueryUserID(w http.ResponseWriter, r *http.Request, auditor *audit.SecurityAuditor, logger *zap.Logger) (uuid.UUID, bool) {
	return ParseUserID(w, r, r.URL.Query().Get("user_id"), auditor, logger)
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, raw, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, errorCode, errorMessage)
		return uuid.Nil, false
	}
	return id, true
}
