package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agentforge-io/agent-builder/pkg/auth"
)

// setupTestLogger creates a test logger with an observer to capture log entries.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func callerContext(subject, ip string) context.Context {
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
	ctx := auth.WithClaims(context.Background(), claims, "token")
	return WithClientIP(ctx, ip)
}

func TestLogInjectionAttempt(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		wantLevel zapcore.Level
		wantSev   string
	}{
		{name: "xss is critical", kind: "xss", wantLevel: zapcore.ErrorLevel, wantSev: "critical"},
		{name: "sqli is a warning", kind: "sqli", wantLevel: zapcore.WarnLevel, wantSev: "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, recorded := setupTestLogger(t)
			auditor := NewSecurityAuditor(logger)

			auditor.LogInjectionAttempt(callerContext("user-1", "10.0.0.5"), "user-1", InjectionDetails{
				FieldName:  "name",
				FieldValue: "<script>alert(1)</script>",
				Kind:       tt.kind,
			})

			logs := recorded.All()
			require.Len(t, logs, 1)
			entry := logs[0]
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, "security_audit", entry.LoggerName)

			fields := entry.ContextMap()
			assert.Equal(t, "name", fields["field_name"])
			assert.Equal(t, "10.0.0.5", fields["client_ip"])
			assert.Equal(t, "user-1", fields["caller"])
			assert.Equal(t, tt.wantSev, fields["severity"])

			var event SecurityEvent
			require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
			assert.Equal(t, EventInjectionAttempt, event.EventType)
			details, ok := event.Details.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "<script>alert(1)</script>", details["field_value"])
		})
	}
}

func TestLogEntitlementDenied(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	auditor.LogEntitlementDenied(context.Background(), "user-2", "free", "rag")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	fields := logs[0].ContextMap()
	assert.Equal(t, "free", fields["role"])
	assert.Equal(t, "rag", fields["agent_type"])
	assert.Equal(t, "", fields["caller"], "anonymous request has no caller")
}

func TestLogSignatureFailure(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	auditor.LogSignatureFailure(WithClientIP(context.Background(), "203.0.113.9"), "charge.success")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	fields := logs[0].ContextMap()
	assert.Equal(t, "charge.success", fields["event"])
	assert.Equal(t, "203.0.113.9", fields["client_ip"])
	assert.Equal(t, string(EventSignatureFailure), fields["event_type"])
}

func TestLogSubjectMismatch(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	auditor.LogSubjectMismatch(callerContext("user-a", ""), "user-b")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	fields := logs[0].ContextMap()
	assert.Equal(t, "user-a", fields["caller"])
	assert.Equal(t, "user-b", fields["user_id"])
}

func TestNilAuditorIsNoop(t *testing.T) {
	var auditor *SecurityAuditor
	assert.NotPanics(t, func() {
		auditor.LogInjectionAttempt(context.Background(), "u", InjectionDetails{})
		auditor.LogEntitlementDenied(context.Background(), "u", "free", "rag")
		auditor.LogSignatureFailure(context.Background(), "x")
		auditor.LogSubjectMismatch(context.Background(), "u")
	})
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "", ClientIP(context.Background()))
	assert.Equal(t, "1.2.3.4", ClientIP(WithClientIP(context.Background(), "1.2.3.4")))
}
