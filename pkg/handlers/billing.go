package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/services"
)

// SignatureHeader carries the hex HMAC-SHA512 of the webhook body.
const SignatureHeader = "x-paystack-signature"

// maxWebhookBodyBytes caps billing webhook payloads.
const maxWebhookBodyBytes = 64 << 10

// BillingHandler receives payment provider webhooks.
type BillingHandler struct {
	billingService services.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(billingService services.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: billingService, logger: logger}
}

// RegisterRoutes registers the billing handler's routes on the given mux.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /billing/webhook", h.Webhook)
}

// Webhook handles POST /billing/webhook
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, http.StatusRequestEntityTooLarge, "payload_too_large", "Payload too large")
			return
		}
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request_body", "Invalid request body")
		return
	}

	result, err := h.billingService.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		writeServiceError(w, h.logger, err, "User not found", "Failed to process billing event")
		return
	}

	writeResponse(w, h.logger, http.StatusOK, result)
}
