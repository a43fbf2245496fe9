package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/services"
)

// TemplateHandler serves template previews. Previews are neither gated nor stored.
type TemplateHandler struct {
	workflowService services.WorkflowService
	logger          *zap.Logger
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(workflowService services.WorkflowService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{workflowService: workflowService, logger: logger}
}

// RegisterRoutes registers the template handler's routes on the given mux.
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /templates/{type}", h.Preview)
}

// Preview handles GET /templates/{type}?name=&description=
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	generated, err := h.workflowService.Preview(r.Context(), r.PathValue("type"), q.Get("name"), q.Get("description"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Template not found", "Failed to render template")
		return
	}

	writeResponse(w, h.logger, http.StatusOK, generated)
}
