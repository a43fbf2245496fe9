package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/middleware"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/services"
)

// GenerateWorkflowRequest for POST /workflows/generate
type GenerateWorkflowRequest struct {
	UserID string `json:"user_id"`
	models.AgentConfig
}

// GenerateWorkflowResponse is the stored workflow plus where its document came from.
type GenerateWorkflowResponse struct {
	Workflow *models.Workflow `json:"workflow"`
	Source   string           `json:"source"`
}

// AIWorkflowHandler handles model-assisted workflow generation.
type AIWorkflowHandler struct {
	aiService services.AIWorkflowService
	limiter   *middleware.RateLimiter
	metrics   *middleware.Metrics
	auditor   *audit.SecurityAuditor
	logger    *zap.Logger
}

// NewAIWorkflowHandler creates a new AI workflow handler. limiter and
// metrics may be nil.
func NewAIWorkflowHandler(
	aiService services.AIWorkflowService,
	limiter *middleware.RateLimiter,
	metrics *middleware.Metrics,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) *AIWorkflowHandler {
	return &AIWorkflowHandler{
		aiService: aiService,
		limiter:   limiter,
		metrics:   metrics,
		auditor:   auditor,
		logger:    logger,
	}
}

// RegisterRoutes registers POST /workflows/generate behind the per-caller rate limiter.
func (h *AIWorkflowHandler) RegisterRoutes(mux *http.ServeMux) {
	var handler http.Handler = http.HandlerFunc(h.Generate)
	if h.limiter != nil {
		handler = h.limiter.Handler(handler)
	}
	mux.Handle("POST /workflows/generate", handler)
}

// Generate handles POST /workflows/generate
func (h *AIWorkflowHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateWorkflowRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID, ok := ParseUserID(w, r, req.UserID, h.auditor, h.logger)
	if !ok {
		return
	}

	result, err := h.aiService.Generate(r.Context(), services.GenerateWorkflowRequest{
		UserID: userID,
		Config: req.AgentConfig,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found", "Failed to generate workflow")
		return
	}

	h.metrics.RecordWorkflowCreated(string(result.Workflow.Type), result.Source)
	writeResponse(w, h.logger, http.StatusOK, GenerateWorkflowResponse{
		Workflow: result.Workflow,
		Source:   result.Source,
	})
}
