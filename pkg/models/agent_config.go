package models

// AgentConfig is the configuration collected by the agent wizard and
// used to prompt a model for a bespoke workflow document.
type AgentConfig struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Type             AgentType `json:"type"`
	Model            string    `json:"model,omitempty"`
	SystemPrompt     string    `json:"system_prompt,omitempty"`
	Temperature      float64   `json:"temperature,omitempty"`
	Tools            []string  `json:"tools,omitempty"`
	KnowledgeSources []string  `json:"knowledge_sources,omitempty"`
}
