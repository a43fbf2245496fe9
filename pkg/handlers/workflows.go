package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/middleware"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/services"
)

// maxRequestBodyBytes caps JSON request bodies.
const maxRequestBodyBytes = 1 << 20

// CreateWorkflowRequest for POST /workflows
type CreateWorkflowRequest struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateWorkflowStatusRequest for PATCH /workflows/{id}
type UpdateWorkflowStatusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

// WorkflowHandler handles workflow CRUD requests.
type WorkflowHandler struct {
	workflowService services.WorkflowService
	metrics         *middleware.Metrics
	auditor         *audit.SecurityAuditor
	logger          *zap.Logger
}

// NewWorkflowHandler creates a new workflow handler. metrics may be nil.
func NewWorkflowHandler(
	workflowService services.WorkflowService,
	metrics *middleware.Metrics,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
		metrics:         metrics,
		auditor:         auditor,
		logger:          logger,
	}
}

// RegisterRoutes registers the workflow handler's routes on the given mux.
func (h *WorkflowHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /workflows", h.Create)
	mux.HandleFunc("GET /workflows", h.List)
	mux.HandleFunc("GET /workflows/{id}", h.Get)
	mux.HandleFunc("PATCH /workflows/{id}", h.UpdateStatus)
	mux.HandleFunc("DELETE /workflows/{id}", h.Delete)
}

// Create handles POST /workflows
func (h *WorkflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkflowRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID, ok := ParseUserID(w, r, req.UserID, h.auditor, h.logger)
	if !ok {
		return
	}

	workflow, err := h.workflowService.Create(r.Context(), services.CreateWorkflowRequest{
		UserID:      userID,
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found", "Failed to create workflow")
		return
	}

	h.metrics.RecordWorkflowCreated(string(workflow.Type), "template")
	writeResponse(w, h.logger, http.StatusOK, workflow)
}

// List handles GET /workflows?user_id=
func (h *WorkflowHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := QueryUserID(w, r, h.auditor, h.logger)
	if !ok {
		return
	}

	workflows, err := h.workflowService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found", "Failed to list workflows")
		return
	}
	if workflows == nil {
		workflows = []*models.Workflow{}
	}

	writeResponse(w, h.logger, http.StatusOK, workflows)
}

// Get handles GET /workflows/{id}?user_id=
func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseWorkflowID(w, r, h.logger)
	if !ok {
		return
	}
	userID, ok := QueryUserID(w, r, h.auditor, h.logger)
	if !ok {
		return
	}

	workflow, err := h.workflowService.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Workflow not found", "Failed to load workflow")
		return
	}

	writeResponse(w, h.logger, http.StatusOK, workflow)
}

// UpdateStatus handles PATCH /workflows/{id}
func (h *WorkflowHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseWorkflowID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateWorkflowStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	userID, ok := ParseUserID(w, r, req.UserID, h.auditor, h.logger)
	if !ok {
		return
	}

	workflow, err := h.workflowService.UpdateStatus(r.Context(), userID, id, req.Status)
	if err != nil {
		writeServiceError(w, h.logger, err, "Workflow not found", "Failed to update workflow")
		return
	}

	writeResponse(w, h.logger, http.StatusOK, workflow)
}

// Delete handles DELETE /workflows/{id}?user_id=
func (h *WorkflowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseWorkflowID(w, r, h.logger)
	if !ok {
		return
	}
	userID, ok := QueryUserID(w, r, h.auditor, h.logger)
	if !ok {
		return
	}

	if err := h.workflowService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err, "Workflow not found", "Failed to delete workflow")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes a size-limited JSON body into dst, writing 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Debug("Failed to decode request body", zap.Error(err))
		writeError(w, logger, http.StatusBadRequest, "invalid_request_body", "Invalid request body")
		return false
	}
	return true
}
