package llm

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object",
			input: `{"nodes": [], "connections": {}}`,
			want:  `{"nodes": [], "connections": {}}`,
		},
		{
			name:  "plain array",
			input: `[{"name": "Webhook"}, {"name": "LLM"}]`,
			want:  `[{"name": "Webhook"}, {"name": "LLM"}]`,
		},
		{
			name:  "nested",
			input: `{"nodes": [{"parameters": {"values": {"string": [1, 2]}}}]}`,
			want:  `{"nodes": [{"parameters": {"values": {"string": [1, 2]}}}]}`,
		},
		{
			name:  "json code fence",
			input: "```json\n{\"nodes\": []}\n```",
			want:  `{"nodes": []}`,
		},
		{
			name:  "bare code fence with prose",
			input: "Sure! Here is the workflow:\n```\n{\"nodes\": []}\n```\nLet me know if you need changes.",
			want:  `{"nodes": []}`,
		},
		{
			name:  "think tags",
			input: "<think>\nThe user wants a chat agent.\n</think>\n{\"nodes\": []}",
			want:  `{"nodes": []}`,
		},
		{
			name:  "brackets inside strings",
			input: `{"jsCode": "return [{ json: {} }];", "count": 1}`,
			want:  `{"jsCode": "return [{ json: {} }];", "count": 1}`,
		},
		{
			name:  "escaped quotes",
			input: `{"value": "He said \"hi\" {"}`,
			want:  `{"value": "He said \"hi\" {"}`,
		},
		{
			name:  "first of two objects",
			input: `{"a": 1} and also {"b": 2}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "backticks inside a string are kept",
			input: "{\"jsCode\": \"const s = `x`;\"}",
			want:  "{\"jsCode\": \"const s = `x`;\"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractJSON_Errors(t *testing.T) {
	inputs := map[string]string{
		"no json":     "This is just plain text with no JSON.",
		"unclosed":    `{"unclosed": "object"`,
		"empty":       "",
		"only fences": "```json\n```",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := ExtractJSON(input); err == nil {
				t.Errorf("expected error for %q", input)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	input := "```json\n{\"a\": 1}\n```"
	got := StripCodeFences(input)
	if got != "\n{\"a\": 1}\n" {
		t.Errorf("unexpected result %q", got)
	}
}
