// Package audit writes security-relevant connector events as structured log
// entries that a SIEM can filter on the "security_audit" logger name.
package audit

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags a search input.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventParameterValidation is logged when request parameters cannot be decoded.
	EventParameterValidation SecurityEventType = "parameter_validation_failure"
	// EventQueryExecution is logged once per executed batch.
	EventQueryExecution SecurityEventType = "query_execution"
)

// Severity levels.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// maxLoggedValue caps flagged input values copied into events.
const maxLoggedValue = 200

// SecurityEvent is one auditable event.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"`
}

// InjectionDetails describes a search input flagged by the injection check.
type InjectionDetails struct {
	Operation   string `json:"operation"`
	Field       string `json:"field"`
	Value       string `json:"value"`
	Fingerprint string `json:"fingerprint"`
}

// QueryExecutionDetails summarizes one executed batch.
type QueryExecutionDetails struct {
	Statements int `json:"statements"`
	Failed     int `json:"failed"`
}

// SecurityAuditor logs security events.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates an auditor logging under the "security_audit" name.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{
		logger: logger.Named("security_audit"),
		now:    time.Now,
	}
}

// LogInjectionAttempt records a flagged search input. The input is only
// ever sent to the engine as a quoted literal.
func (a *SecurityAuditor) LogInjectionAttempt(details InjectionDetails) {
	details.Value = logging.TruncateString(details.Value, maxLoggedValue)
	event := a.event(EventSQLInjectionAttempt, "", details, SeverityCritical)

	a.logger.Warn("SQL injection attempt detected",
		zap.String("event_json", event),
		zap.String("operation", details.Operation),
		zap.String("field", details.Field),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("severity", SeverityCritical),
	)
}

// LogParameterValidation records request parameters that could not be used.
func (a *SecurityAuditor) LogParameterValidation(operation, errorMessage string) {
	event := a.event(EventParameterValidation, "", map[string]string{
		"operation": operation,
		"error":     errorMessage,
	}, SeverityWarning)

	a.logger.Warn("Parameter validation failed",
		zap.String("event_json", event),
		zap.String("operation", operation),
		zap.String("error", errorMessage),
		zap.String("severity", SeverityWarning),
	)
}

// LogQueryExecution records one executed batch. Statement text is not logged.
func (a *SecurityAuditor) LogQueryExecution(requestID string, details QueryExecutionDetails) {
	event := a.event(EventQueryExecution, requestID, details, SeverityInfo)

	a.logger.Info("Query executed",
		zap.String("event_json", event),
		zap.String("request_id", requestID),
		zap.Int("statements", details.Statements),
		zap.Int("failed", details.Failed),
		zap.String("severity", SeverityInfo),
	)
}

func (a *SecurityAuditor) event(eventType SecurityEventType, requestID string, details any, severity string) string {
	// Marshaling these known types cannot fail.
	b, _ := json.Marshal(SecurityEvent{
		Timestamp: a.now().UTC(),
		EventType: eventType,
		RequestID: requestID,
		Details:   details,
		Severity:  severity,
	})
	return string(b)
}
