package templates

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentforge-io/agent-builder/pkg/llm"
	"github.com/agentforge-io/agent-builder/pkg/models"
)

// DecodeResult is the outcome of decoding model output into a workflow.
// When Fallback is true, Document is the fallback document and Reason
// says why the model output was rejected.
type DecodeResult struct {
	Document *models.WorkflowDocument
	Fallback bool
	Reason   string
}

var errNoNodes = errors.New("workflow has no nodes")

// DecodeModelOutput best-effort decodes a model response into a workflow
// document. It never fails: unusable output yields the fallback document.
func (g *Generator) DecodeModelOutput(raw, webhookPath string) DecodeResult {
	doc, err := g.decode(raw)
	if err != nil {
		return DecodeResult{
			Document: g.Fallback(webhookPath),
			Fallback: true,
			Reason:   err.Error(),
		}
	}
	return DecodeResult{Document: doc}
}

func (g *Generator) decode(raw string) (*models.WorkflowDocument, error) {
	jsonStr, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	// Models sometimes wrap the document, e.g. {"workflow": {...}}.
	var envelope struct {
		Workflow *models.WorkflowDocument `json:"workflow"`
	}
	var doc models.WorkflowDocument
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal workflow: %w", err)
	}
	if len(doc.Nodes) == 0 {
		if err := json.Unmarshal([]byte(jsonStr), &envelope); err == nil && envelope.Workflow != nil {
			doc = *envelope.Workflow
		}
	}

	if len(doc.Nodes) == 0 {
		return nil, errNoNodes
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.Meta.InstanceID == "" {
		doc.Meta.InstanceID = g.instanceID
	}
	return &doc, nil
}
