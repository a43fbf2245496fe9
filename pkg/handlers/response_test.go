package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		message    string
	}{
		{"bad request", http.StatusBadRequest, "unknown_agent_type", "Unknown agent type"},
		{"forbidden", http.StatusForbidden, "plan_upgrade_required", "Plan upgrade required for this agent type"},
		{"internal error", http.StatusInternalServerError, "internal_error", "Failed to create workflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := ErrorResponse(w, tt.statusCode, tt.errorCode, tt.message)
			if err != nil {
				t.Fatalf("ErrorResponse returned error: %v", err)
			}

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.statusCode {
				t.Errorf("status code = %d, want %d", resp.StatusCode, tt.statusCode)
			}

			ct := resp.Header.Get("Content-Type")
			if ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}

			if body["code"] != tt.errorCode {
				t.Errorf("body[code] = %q, want %q", body["code"], tt.errorCode)
			}
			if body["error"] != tt.message {
				t.Errorf("body[error] = %q, want %q", body["error"], tt.message)
			}
		})
	}
}

func TestWriteJSON_Status200(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"key": "value"}

	err := WriteJSON(w, http.StatusOK, data)
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	resp := w.Result()
	defer resp.Body.Close()

	// Status 200 is the default for ResponseRecorder, WriteJSON should not call WriteHeader
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["key"] != "value" {
		t.Errorf("body[key] = %q, want %q", body["key"], "value")
	}
}

func TestWriteJSON_NonOKStatus(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]int{"count": 5}

	err := WriteJSON(w, http.StatusCreated, data)
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
}

func TestWriteJSON_UnencodableData(t *testing.T) {
	w := httptest.NewRecorder()
	data := make(chan int) // channels cannot be JSON-encoded

	err := WriteJSON(w, http.StatusOK, data)
	if err == nil {
		t.Error("expected error for unencodable data, got nil")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"unknown type", fmt.Errorf("%w: %q", apperrors.ErrUnknownAgentType, "voice"), http.StatusBadRequest, "unknown_agent_type", "Unknown agent type"},
		{"invalid status", apperrors.ErrInvalidStatus, http.StatusBadRequest, "invalid_status", "Invalid workflow status"},
		{"invalid input", fmt.Errorf("name: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "invalid_input", "name: invalid input"},
		{"not found", fmt.Errorf("profile: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found", "User not found"},
		{"plan upgrade", fmt.Errorf("rag on free: %w", apperrors.ErrPlanUpgradeRequired), http.StatusForbidden, "plan_upgrade_required", msgPlanUpgradeRequired},
		{"usage limit", apperrors.ErrUsageLimitReached, http.StatusForbidden, "usage_limit_reached", msgUsageLimitReached},
		{"signature", apperrors.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature", "Invalid signature"},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, "internal_error", "Failed to create workflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := classifyError(tt.err, "User not found", "Failed to create workflow")
			if se.status != tt.wantStatus {
				t.Errorf("status = %d, want %d", se.status, tt.wantStatus)
			}
			if se.code != tt.wantCode {
				t.Errorf("code = %q, want %q", se.code, tt.wantCode)
			}
			if se.message != tt.wantMsg {
				t.Errorf("message = %q, want %q", se.message, tt.wantMsg)
			}
		})
	}
}
