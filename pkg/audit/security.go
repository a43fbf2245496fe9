// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/auth"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventInjectionAttempt is logged when libinjection flags a display field.
	EventInjectionAttempt SecurityEventType = "injection_attempt"
	// EventEntitlementDenied is logged when a plan does not allow an agent type.
	EventEntitlementDenied SecurityEventType = "entitlement_denied"
	// EventSignatureFailure is logged when a billing webhook signature does not verify.
	EventSignatureFailure SecurityEventType = "webhook_signature_failure"
	// EventSubjectMismatch is logged when a verified caller names another user.
	EventSubjectMismatch SecurityEventType = "subject_mismatch"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Caller    string            `json:"caller,omitempty"` // verified token subject
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionDetails contains specifics of a flagged field.
type InjectionDetails struct {
	FieldName   string `json:"field_name"`
	FieldValue  string `json:"field_value"`
	Kind        string `json:"kind"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type clientIPKey struct{}

// WithClientIP records the caller's address for events logged further down the request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address stored by WithClientIP, or "".
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// SecurityAuditor logs security events for SIEM consumption.
// A nil *SecurityAuditor is valid and logs nothing.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
// The logger is configured with the "security_audit" namespace for easy
// filtering in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogInjectionAttempt records a flagged display field.
// XSS hits are rejected by the caller and logged as critical; SQL patterns
// are only recorded, at warning.
func (a *SecurityAuditor) LogInjectionAttempt(ctx context.Context, userID string, details InjectionDetails) {
	if a == nil {
		return
	}
	severity := "warning"
	if details.Kind == "xss" {
		severity = "critical"
	}
	event := a.newEvent(ctx, EventInjectionAttempt, userID, details, severity)

	fields := append(a.fields(event),
		zap.String("field_name", details.FieldName),
		zap.String("kind", details.Kind),
		zap.String("fingerprint", details.Fingerprint),
	)
	if severity == "critical" {
		a.logger.Error("Injection attempt detected", fields...)
		return
	}
	a.logger.Warn("Injection pattern detected", fields...)
}

// LogEntitlementDenied records a create refused by the plan table.
func (a *SecurityAuditor) LogEntitlementDenied(ctx context.Context, userID, role, agentType string) {
	if a == nil {
		return
	}
	event := a.newEvent(ctx, EventEntitlementDenied, userID, map[string]string{
		"role":       role,
		"agent_type": agentType,
	}, "info")

	a.logger.Info("Entitlement denied",
		append(a.fields(event),
			zap.String("role", role),
			zap.String("agent_type", agentType),
		)...,
	)
}

// LogSignatureFailure records a billing webhook whose signature did not verify.
// Logged at ERROR level: this is either a misconfigured secret or a forgery.
func (a *SecurityAuditor) LogSignatureFailure(ctx context.Context, event string) {
	if a == nil {
		return
	}
	ev := a.newEvent(ctx, EventSignatureFailure, "", map[string]string{"event": event}, "critical")
	a.logger.Error("Billing webhook signature rejected",
		append(a.fields(ev), zap.String("event", event))...,
	)
}

// LogSubjectMismatch records a verified caller acting on someone else's user_id.
func (a *SecurityAuditor) LogSubjectMismatch(ctx context.Context, userID string) {
	if a == nil {
		return
	}
	event := a.newEvent(ctx, EventSubjectMismatch, userID, nil, "warning")
	a.logger.Warn("Token subject does not match user_id", a.fields(event)...)
}

func (a *SecurityAuditor) newEvent(ctx context.Context, eventType SecurityEventType, userID string, details any, severity string) SecurityEvent {
	var caller string
	if claims, ok := auth.GetClaims(ctx); ok {
		caller = claims.Subject
	}
	return SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Caller:    caller,
		ClientIP:  ClientIP(ctx),
		Details:   details,
		Severity:  severity,
	}
}

func (a *SecurityAuditor) fields(event SecurityEvent) []zap.Field {
	// Marshaling known types cannot fail.
	eventJSON, _ := json.Marshal(event)
	return []zap.Field{
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(event.EventType)),
		zap.String("user_id", event.UserID),
		zap.String("caller", event.Caller),
		zap.String("client_ip", event.ClientIP),
		zap.String("severity", event.Severity),
	}
}
