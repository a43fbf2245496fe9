package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/plans"
)

// PlansResponse for GET /plans
type PlansResponse struct {
	Plans []plans.Plan `json:"plans"`
}

// PlanHandler serves the entitlement table.
type PlanHandler struct {
	logger *zap.Logger
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(logger *zap.Logger) *PlanHandler {
	return &PlanHandler{logger: logger}
}

// RegisterRoutes registers the plan handler's routes on the given mux.
func (h *PlanHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /plans", h.List)
}

// List handles GET /plans
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, h.logger, http.StatusOK, PlansResponse{Plans: plans.All()})
}
