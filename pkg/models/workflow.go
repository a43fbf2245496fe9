package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentType selects which canned automation graph is produced for a workflow.
type AgentType string

const (
	AgentTypeChat       AgentType = "chat"
	AgentTypeRAG        AgentType = "rag"
	AgentTypeTools      AgentType = "tools"
	AgentTypeSupervisor AgentType = "supervisor"
)

// ValidAgentTypes contains all known agent types.
var ValidAgentTypes = []AgentType{AgentTypeChat, AgentTypeRAG, AgentTypeTools, AgentTypeSupervisor}

// ParseAgentType returns the AgentType for s and whether it is a known type.
func ParseAgentType(s string) (AgentType, bool) {
	for _, t := range ValidAgentTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// WorkflowStatus is the lifecycle state of a stored workflow.
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"
	WorkflowStatusInactive WorkflowStatus = "inactive"
	WorkflowStatusTesting  WorkflowStatus = "testing"
)

// ValidWorkflowStatuses contains all valid workflow status values.
var ValidWorkflowStatuses = []WorkflowStatus{WorkflowStatusActive, WorkflowStatusInactive, WorkflowStatusTesting}

// ParseWorkflowStatus returns the WorkflowStatus for s and whether it is valid.
func ParseWorkflowStatus(s string) (WorkflowStatus, bool) {
	for _, st := range ValidWorkflowStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Workflow is the stored metadata for a generated agent workflow.
// Document is only populated on single-row reads and on create.
type Workflow struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Type           AgentType         `json:"type"`
	Status         WorkflowStatus    `json:"status"`
	WebhookURL     string            `json:"webhookUrl"`
	ExecutionCount int               `json:"execution_count"`
	Document       *WorkflowDocument `json:"workflow,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
