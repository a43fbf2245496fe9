package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckField(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantKind string // empty means clean
	}{
		{name: "empty", value: ""},
		{name: "plain name", value: "Support Bot"},
		{name: "plain description", value: "Answers billing questions for customers"},
		{name: "email", value: "user@example.com"},
		{name: "script tag", value: "<script>alert(1)</script>", wantKind: KindXSS},
		{name: "event handler", value: `<img src=x onerror=alert(1)>`, wantKind: KindXSS},
		{name: "tautology", value: "' OR '1'='1", wantKind: KindSQLi},
		{name: "stacked drop", value: "'; DROP TABLE users--", wantKind: KindSQLi},
		{name: "union select", value: "1 UNION SELECT * FROM passwords", wantKind: KindSQLi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckField("field", tt.value)
			if tt.wantKind == "" {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, "field", result.FieldName)
			assert.Equal(t, tt.wantKind, result.Kind)
			if tt.wantKind == KindSQLi {
				assert.NotEmpty(t, result.Fingerprint)
			}
		})
	}
}

func TestCheckFields_OrderedByName(t *testing.T) {
	results := CheckFields(map[string]string{
		"name":        "<script>alert(1)</script>",
		"description": "<img src=x onerror=alert(1)>",
		"model":       "gpt-4o-mini",
	})

	require.Len(t, results, 2)
	assert.Equal(t, "description", results[0].FieldName)
	assert.Equal(t, "name", results[1].FieldName)
}

func TestCheckFields_Clean(t *testing.T) {
	assert.Empty(t, CheckFields(map[string]string{"name": "Helper", "description": ""}))
	assert.Empty(t, CheckFields(nil))
}
