// Package templates produces n8n workflow documents for each agent type.
//
// Only the chat template is a populated pipeline. The rag, tools and
// supervisor templates are empty placeholder graphs until their pipelines
// are defined by product.
package templates

import (
	"fmt"
	"strings"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/models"
)

// DefaultInstanceID is used for meta.instanceId when none is configured.
const DefaultInstanceID = "agent-builder"

const nodeSpacingX = 220

// Display holds the human-readable metadata shown next to a template.
type Display struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var displays = map[models.AgentType]Display{
	models.AgentTypeChat: {
		Name:        "Chat Agent",
		Description: "Conversational agent that answers incoming webhook messages with an LLM.",
	},
	models.AgentTypeRAG: {
		Name:        "RAG Agent",
		Description: "Agent that answers questions grounded in your knowledge base.",
	},
	models.AgentTypeTools: {
		Name:        "Tools Agent",
		Description: "Agent that can call external tools and APIs to complete tasks.",
	},
	models.AgentTypeSupervisor: {
		Name:        "Supervisor Agent",
		Description: "Agent that coordinates a team of specialised sub-agents.",
	},
}

// Generated is a template rendered for a specific request.
type Generated struct {
	Display
	Document *models.WorkflowDocument `json:"workflow"`
}

// Generator renders workflow templates. It holds no mutable state.
type Generator struct {
	instanceID string
}

// NewGenerator creates a Generator stamping documents with instanceID.
func NewGenerator(instanceID string) *Generator {
	if instanceID == "" {
		instanceID = DefaultInstanceID
	}
	return &Generator{instanceID: instanceID}
}

// Defaults returns the built-in display metadata for agentType.
func Defaults(agentType models.AgentType) (Display, bool) {
	d, ok := displays[agentType]
	return d, ok
}

// Generate returns the workflow document for agentType. Empty name or
// description fall back to the template's built-in values.
func (g *Generator) Generate(agentType models.AgentType, name, description string) (*Generated, error) {
	display, ok := displays[agentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownAgentType, agentType)
	}

	if n := strings.TrimSpace(name); n != "" {
		display.Name = n
	}
	if d := strings.TrimSpace(description); d != "" {
		display.Description = d
	}

	var doc *models.WorkflowDocument
	switch agentType {
	case models.AgentTypeChat:
		doc = g.chatDocument()
	default:
		doc = g.emptyDocument()
	}

	return &Generated{Display: display, Document: doc}, nil
}

// Fallback returns the minimal webhook -> LLM call document used when a
// model could not produce a usable workflow.
func (g *Generator) Fallback(webhookPath string) *models.WorkflowDocument {
	if webhookPath == "" {
		webhookPath = "agent"
	}
	nodes := []models.WorkflowNode{
		webhookNode("fallback-webhook", "Webhook", webhookPath, "lastNode", 0),
		openAINode("fallback-llm", "LLM Call", "={{ JSON.stringify({ model: 'gpt-4o-mini', messages: [{ role: 'user', content: $json.body.message }] }) }}", 1),
	}
	return g.document(nodes)
}

func (g *Generator) emptyDocument() *models.WorkflowDocument {
	return g.document(nil)
}

func (g *Generator) chatDocument() *models.WorkflowDocument {
	nodes := []models.WorkflowNode{
		webhookNode("chat-webhook", "Webhook", "agent-chat", "responseNode", 0),
		{
			ID:          "chat-normalize",
			Name:        "Normalize Input",
			Type:        "n8n-nodes-base.set",
			TypeVersion: 3,
			Position:    position(1),
			Parameters: map[string]any{
				"keepOnlySet": true,
				"values": map[string]any{
					"string": []any{
						map[string]any{"name": "message", "value": "={{ ($json.body.message || '').trim() }}"},
						map[string]any{"name": "sessionId", "value": "={{ $json.body.sessionId || 'default' }}"},
					},
				},
			},
		},
		{
			ID:          "chat-prompt",
			Name:        "Build Prompt",
			Type:        "n8n-nodes-base.code",
			TypeVersion: 2,
			Position:    position(2),
			Parameters: map[string]any{
				"jsCode": "const message = $input.first().json.message;\n" +
					"return [{ json: { request: { model: 'gpt-4o-mini', temperature: 0.7, messages: [\n" +
					"  { role: 'system', content: 'You are a helpful assistant.' },\n" +
					"  { role: 'user', content: message }\n" +
					"] } } }];",
			},
		},
		openAINode("chat-llm", "OpenAI Chat", "={{ JSON.stringify($json.request) }}", 3),
		{
			ID:          "chat-extract",
			Name:        "Extract Reply",
			Type:        "n8n-nodes-base.set",
			TypeVersion: 3,
			Position:    position(4),
			Parameters: map[string]any{
				"keepOnlySet": true,
				"values": map[string]any{
					"string": []any{
						map[string]any{"name": "reply", "value": "={{ $json.choices[0].message.content }}"},
					},
				},
			},
		},
		{
			ID:          "chat-respond",
			Name:        "Respond to Webhook",
			Type:        "n8n-nodes-base.respondToWebhook",
			TypeVersion: 1,
			Position:    position(5),
			Parameters: map[string]any{
				"respondWith":  "json",
				"responseBody": "={{ { reply: $json.reply } }}",
			},
		},
	}
	return g.document(nodes)
}

// document wires nodes into a simple linear chain.
func (g *Generator) document(nodes []models.WorkflowNode) *models.WorkflowDocument {
	doc := &models.WorkflowDocument{
		Meta:        models.DocumentMeta{InstanceID: g.instanceID},
		Nodes:       nodes,
		Connections: map[string]models.NodeConnections{},
	}
	for i := 0; i+1 < len(nodes); i++ {
		doc.Connections[nodes[i].Name] = models.NodeConnections{
			Main: [][]models.ConnectionTarget{{
				{Node: nodes[i+1].Name, Type: "main", Index: 0},
			}},
		}
	}
	doc.Normalize()
	return doc
}

func webhookNode(id, name, path, responseMode string, slot int) models.WorkflowNode {
	return models.WorkflowNode{
		ID:          id,
		Name:        name,
		Type:        "n8n-nodes-base.webhook",
		TypeVersion: 1,
		Position:    position(slot),
		Parameters: map[string]any{
			"httpMethod":   "POST",
			"path":         path,
			"responseMode": responseMode,
		},
	}
}

func openAINode(id, name, body string, slot int) models.WorkflowNode {
	return models.WorkflowNode{
		ID:          id,
		Name:        name,
		Type:        "n8n-nodes-base.httpRequest",
		TypeVersion: 4,
		Position:    position(slot),
		Parameters: map[string]any{
			"method":      "POST",
			"url":         "https://api.openai.com/v1/chat/completions",
			"sendHeaders": true,
			"headerParameters": map[string]any{
				"parameters": []any{
					map[string]any{"name": "Authorization", "value": "=Bearer {{ $env.OPENAI_API_KEY }}"},
				},
			},
			"sendBody":    true,
			"specifyBody": "json",
			"jsonBody":    body,
		},
	}
}

func position(slot int) [2]float64 {
	return [2]float64{float64(250 + slot*nodeSpacingX), 300}
}
