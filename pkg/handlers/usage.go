package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/services"
)

// UsageHandler serves per-user usage summaries.
type UsageHandler struct {
	usageService services.UsageService
	auditor      *audit.SecurityAuditor
	logger       *zap.Logger
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(usageService services.UsageService, auditor *audit.SecurityAuditor, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{usageService: usageService, auditor: auditor, logger: logger}
}

// RegisterRoutes registers the usage handler's routes on the given mux.
func (h *UsageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /usage", h.Summary)
}

// Summary handles GET /usage?user_id=
func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := QueryUserID(w, r, h.auditor, h.logger)
	if !ok {
		return
	}

	summary, err := h.usageService.Summary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found", "Failed to load usage")
		return
	}

	writeResponse(w, h.logger, http.StatusOK, summary)
}
