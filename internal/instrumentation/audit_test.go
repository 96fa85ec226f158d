package instrumentation

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// Test constants to reduce string repetition and satisfy goconst
const (
	testEmail       = "jane@example.com"
	testDomain      = "example.com"
	testWorkspace   = "1200000000000001"
	testTraceID     = "abc123def456"
	testSpanID      = "span789"
	testToolTasks   = "get_tasks_due_today"
	testToolStatus  = "get_project_status"
	testToolMeeting = "get_next_meeting"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolTasks)

	// Verify initial state
	if ti.Tool != testToolTasks {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolTasks)
	}
	if ti.InvocationID == "" {
		t.Error("InvocationID should not be empty")
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	// Complete the invocation - duration should be calculated from StartTime
	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	// Duration is calculated from StartTime, so it should be >= 0
	// We don't check for > 0 as the test may complete instantly
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Error != "" {
		t.Errorf("Error should be empty, got %q", ti.Error)
	}
}

func TestToolInvocation_UniqueInvocationIDs(t *testing.T) {
	a := NewToolInvocation(testToolTasks)
	b := NewToolInvocation(testToolTasks)

	if a.InvocationID == b.InvocationID {
		t.Errorf("expected distinct invocation IDs, both were %q", a.InvocationID)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolStatus)
	err := errors.New("permission denied")

	ti.CompleteWithError(err)

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "permission denied" {
		t.Errorf("Error = %q, want %q", ti.Error, "permission denied")
	}
}

func TestToolInvocation_WithActor(t *testing.T) {
	ti := NewToolInvocation(testToolTasks)
	ti.WithActor(testEmail)

	if ti.ActorEmail != testEmail {
		t.Errorf("ActorEmail = %q, want %q", ti.ActorEmail, testEmail)
	}
}

func TestToolInvocation_WithWorkspace(t *testing.T) {
	ti := NewToolInvocation(testToolTasks)
	ti.WithWorkspace(testWorkspace)

	if ti.Workspace != testWorkspace {
		t.Errorf("Workspace = %q, want %q", ti.Workspace, testWorkspace)
	}
}

func TestToolInvocation_WithService(t *testing.T) {
	ti := NewToolInvocation(testToolTasks)
	ti.WithService(ServiceAsana, OperationList)

	if ti.ServiceName != ServiceAsana {
		t.Errorf("ServiceName = %q, want %q", ti.ServiceName, ServiceAsana)
	}
	if ti.Operation != OperationList {
		t.Errorf("Operation = %q, want %q", ti.Operation, OperationList)
	}
}

func TestToolInvocation_ActorDomain(t *testing.T) {
	ti := NewToolInvocation("test")
	ti.ActorEmail = testEmail

	if domain := ti.ActorDomain(); domain != testDomain {
		t.Errorf("ActorDomain() = %q, want %q", domain, testDomain)
	}
}

func TestToolInvocation_Status(t *testing.T) {
	ti := NewToolInvocation("test")

	ti.Success = true
	if status := ti.Status(); status != StatusSuccess {
		t.Errorf("Status() = %q, want %q", status, StatusSuccess)
	}

	ti.Success = false
	if status := ti.Status(); status != StatusError {
		t.Errorf("Status() = %q, want %q", status, StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolMeeting)
	ti.WithActor(testEmail).
		WithWorkspace(testWorkspace).
		WithService(ServiceMeetings, OperationGet).
		CompleteSuccess()
	ti.TraceID = testTraceID

	attrs := ti.LogAttrs()

	// Verify we have the expected attributes
	attrMap := make(map[string]slog.Attr)
	for _, attr := range attrs {
		attrMap[attr.Key] = attr
	}

	// Check required attributes
	requiredKeys := []string{"invocation_id", "tool", "actor_domain", "duration", "success"}
	for _, key := range requiredKeys {
		if _, ok := attrMap[key]; !ok {
			t.Errorf("Missing required attribute: %s", key)
		}
	}

	// Check cardinality-controlled values
	if domain := attrMap["actor_domain"].Value.String(); domain != testDomain {
		t.Errorf("actor_domain = %q, want %q", domain, testDomain)
	}

	// Full email must never appear in the low-cardinality attributes
	if _, ok := attrMap["actor"]; ok {
		t.Error("actor should not be present in LogAttrs")
	}

	// Check service-related attributes
	if service := attrMap["service"].Value.String(); service != ServiceMeetings {
		t.Errorf("service = %q, want %q", service, ServiceMeetings)
	}
	if operation := attrMap["operation"].Value.String(); operation != OperationGet {
		t.Errorf("operation = %q, want %q", operation, OperationGet)
	}
}

func TestToolInvocation_LogAttrs_WithError(t *testing.T) {
	ti := NewToolInvocation(testToolStatus)
	ti.WithActor(testEmail).
		WithWorkspace(testWorkspace).
		CompleteWithError(errors.New("test error"))

	attrs := ti.LogAttrs()

	attrMap := make(map[string]slog.Attr)
	for _, attr := range attrs {
		attrMap[attr.Key] = attr
	}

	// Check error attribute is present
	if _, ok := attrMap["error"]; !ok {
		t.Error("Missing error attribute")
	}
	if errVal := attrMap["error"].Value.String(); errVal != "test error" {
		t.Errorf("error = %q, want %q", errVal, "test error")
	}
}

func TestToolInvocation_LogAttrs_MinimalFields(t *testing.T) {
	ti := NewToolInvocation(testToolTasks)
	ti.CompleteSuccess()

	attrs := ti.LogAttrs()

	// Verify minimal attributes are present
	attrMap := make(map[string]slog.Attr)
	for _, attr := range attrs {
		attrMap[attr.Key] = attr
	}

	// These should NOT be present when not set
	if _, ok := attrMap["service"]; ok {
		t.Error("service should not be present when empty")
	}
	if _, ok := attrMap["operation"]; ok {
		t.Error("operation should not be present when empty")
	}
	if _, ok := attrMap["trace_id"]; ok {
		t.Error("trace_id should not be present when empty")
	}
	if _, ok := attrMap["workspace"]; ok {
		t.Error("workspace should not be present when empty")
	}
	if _, ok := attrMap["actor_domain"]; ok {
		t.Error("actor_domain should not be present when actor is unset")
	}
}

func TestToolInvocation_LogAuditAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolMeeting)
	ti.WithActor(testEmail).
		WithWorkspace(testWorkspace).
		WithService(ServiceMeetings, OperationGet).
		CompleteSuccess()
	ti.TraceID = testTraceID
	ti.SpanID = testSpanID

	attrs := ti.LogAuditAttrs()

	// Verify we have the expected attributes
	attrMap := make(map[string]slog.Attr)
	for _, attr := range attrs {
		attrMap[attr.Key] = attr
	}

	// Check that full values are present (not cardinality-controlled)
	if actor := attrMap["actor"].Value.String(); actor != testEmail {
		t.Errorf("actor = %q, want %q", actor, testEmail)
	}
	if workspace := attrMap["workspace"].Value.String(); workspace != testWorkspace {
		t.Errorf("workspace = %q, want %q", workspace, testWorkspace)
	}

	// Check trace context
	if traceID := attrMap["trace_id"].Value.String(); traceID != testTraceID {
		t.Errorf("trace_id = %q, want %q", traceID, testTraceID)
	}
	if spanID := attrMap["span_id"].Value.String(); spanID != testSpanID {
		t.Errorf("span_id = %q, want %q", spanID, testSpanID)
	}
}

func TestToolInvocation_LogAuditAttrs_WithError(t *testing.T) {
	ti := NewToolInvocation(testToolStatus)
	ti.WithActor(testEmail).
		WithWorkspace(testWorkspace).
		CompleteWithError(errors.New("audit error"))

	attrs := ti.LogAuditAttrs()

	attrMap := make(map[string]slog.Attr)
	for _, attr := range attrs {
		attrMap[attr.Key] = attr
	}

	// Check error attribute is present
	if _, ok := attrMap["error"]; !ok {
		t.Error("Missing error attribute")
	}
}

func TestToolInvocation_LogAuditAttrs_MinimalFields(t *testing.T) {
	ti := NewToolInvocation(testToolTasks)
	ti.CompleteSuccess()

	attrs := ti.LogAuditAttrs()

	attrMap := make(map[string]slog.Attr)
	for _, attr := range attrs {
		attrMap[attr.Key] = attr
	}

	// These should NOT be present when not set
	if _, ok := attrMap["service"]; ok {
		t.Error("service should not be present when empty")
	}
	if _, ok := attrMap["operation"]; ok {
		t.Error("operation should not be present when empty")
	}
}

func TestToolInvocation_MethodChaining(t *testing.T) {
	ti := NewToolInvocation(testToolTasks).
		WithActor("user@example.com").
		WithWorkspace(testWorkspace).
		WithService(ServiceAsana, OperationSearch).
		CompleteSuccess()

	if ti.Tool != testToolTasks {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolTasks)
	}
	if ti.ActorEmail != "user@example.com" {
		t.Errorf("ActorEmail = %q, want %q", ti.ActorEmail, "user@example.com")
	}
	if ti.Workspace != testWorkspace {
		t.Errorf("Workspace = %q, want %q", ti.Workspace, testWorkspace)
	}
	if ti.ServiceName != ServiceAsana {
		t.Errorf("ServiceName = %q, want %q", ti.ServiceName, ServiceAsana)
	}
	if !ti.Success {
		t.Error("Success should be true")
	}
}

func TestAuditLogger_New(t *testing.T) {
	// Test with nil logger (should use default)
	al := NewAuditLogger(nil)
	if al.logger == nil {
		t.Error("logger should not be nil when created with nil")
	}
	if al.includePII {
		t.Error("includePII should default to false")
	}

	// Test with custom logger
	logger := slog.Default()
	al = NewAuditLogger(logger)
	if al.logger != logger {
		t.Error("logger should be the provided logger")
	}
}

func TestAuditLogger_NewWithConfig(t *testing.T) {
	al := NewAuditLoggerWithConfig(slog.Default(), AuditLoggingConfig{
		Enabled:    true,
		IncludePII: true,
	})

	if !al.enabled {
		t.Error("enabled should be true")
	}
	if !al.includePII {
		t.Error("includePII should be true")
	}
}

func TestAuditLogger_LogToolInvocation_Success(t *testing.T) {
	// This test verifies the method runs without panic
	al := NewAuditLogger(slog.Default())
	ti := NewToolInvocation(testToolTasks).
		WithActor(testEmail).
		WithWorkspace(testWorkspace).
		CompleteSuccess()

	// Should not panic
	al.LogToolInvocation(ti)
}

func TestAuditLogger_LogToolInvocation_Failure(t *testing.T) {
	// This test verifies the method runs without panic for failures
	al := NewAuditLogger(slog.Default())
	ti := NewToolInvocation(testToolStatus).
		WithActor(testEmail).
		WithWorkspace(testWorkspace).
		CompleteWithError(errors.New("test error"))

	// Should not panic
	al.LogToolInvocation(ti)
}

func TestAuditLogger_LogToolInvocation_Disabled(t *testing.T) {
	al := NewAuditLogger(slog.Default())
	al.SetEnabled(false)

	ti := NewToolInvocation(testToolTasks).CompleteSuccess()

	// Should not panic, should not log
	al.LogToolInvocation(ti)
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ctx := context.Background()
	ti := NewToolInvocation("test").WithSpanContext(ctx)

	if ti.TraceID != "" {
		t.Errorf("TraceID = %q, want empty string", ti.TraceID)
	}
	if ti.SpanID != "" {
		t.Errorf("SpanID = %q, want empty string", ti.SpanID)
	}
}

func TestToolInvocation_Complete_NilError(t *testing.T) {
	ti := NewToolInvocation("test")
	ti.Complete(true, nil)

	if ti.Error != "" {
		t.Errorf("Error = %q, want empty string", ti.Error)
	}
}

func TestToolInvocation_Complete_WithError(t *testing.T) {
	ti := NewToolInvocation("test")
	ti.Complete(false, errors.New("some error"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "some error" {
		t.Errorf("Error = %q, want %q", ti.Error, "some error")
	}
}
