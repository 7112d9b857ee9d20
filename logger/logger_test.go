package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "svc", &buf)
	l.Debug("spawned", Fields(FieldPID, 42, FieldExecutable, "/bin/ls"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "spawned" {
		t.Errorf("expected message 'spawned', got %v", entry["message"])
	}
	if entry[FieldPID] != float64(42) {
		t.Errorf("expected pid 42, got %v", entry[FieldPID])
	}
	if entry[FieldExecutable] != "/bin/ls" {
		t.Errorf("expected executable field, got %v", entry[FieldExecutable])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "json"}, "svc", &buf)
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info/debug to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn entry, got %q", buf.String())
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "spawner", &buf)
	l.Info("hello")
	out := buf.String()
	if !strings.Contains(out, "[SPA][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "test", &buf)
	cl := l.WithComponent("registry")
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
	cl.Info("x")
	if !strings.Contains(buf.String(), `"component":"registry"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestWithContextSpan(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "test", &buf)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	l.WithContext(ctx).Info("traced")
	if !strings.Contains(buf.String(), span.SpanContext().TraceID().String()) {
		t.Errorf("expected trace id in output, got %q", buf.String())
	}
}

func TestWithContextNoSpan(t *testing.T) {
	l := NewDefault("test")
	if l.WithContext(context.Background()) != l {
		t.Error("expected same logger when context carries no span")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "test", &buf)
	l.WithFields(map[string]interface{}{"k": "v"}).WithError(fmt.Errorf("boom")).Error("failed")
	out := buf.String()
	if !strings.Contains(out, `"k":"v"`) || !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("expected k and error fields, got %q", out)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded")
	l.WithComponent("x").Error("discarded")
}

func TestGlobalLogger(t *testing.T) {
	first := GetGlobalLogger()
	if first == nil {
		t.Fatal("expected a default global logger")
	}
	if GetGlobalLogger() != first {
		t.Error("expected the global logger to be created once")
	}
	Info("info msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("registered-spawner", l)

	if Get("registered-spawner") != l {
		t.Error("expected Get to return the registered logger")
	}

	replacement := Nop()
	Register("registered-spawner", replacement)
	if Get("registered-spawner") != replacement {
		t.Error("expected a later Register to replace the logger")
	}
}

func TestGetUnregisteredTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	globalMu.Lock()
	saved := globalLogger
	globalLogger = NewWithWriter(&Config{Level: "info", Format: "json"}, "default", &buf)
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		globalLogger = saved
		globalMu.Unlock()
	})

	Get("unregistered-spawner").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != "unregistered-spawner" {
		t.Errorf("expected component field, got %v", entry[FieldComponent])
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"key-value pairs", []interface{}{"op", "spawn", "pid", 42}, map[string]interface{}{"op": "spawn", "pid": 42}},
		{"odd number of args", []interface{}{"op", "spawn", "trailing"}, map[string]interface{}{"op": "spawn"}},
		{"empty", []interface{}{}, map[string]interface{}{}},
		{"non-string key skipped", []interface{}{123, "value", "key", "val"}, map[string]interface{}{"key": "val"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Errorf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	fields := ErrorFields("fork_exec", fmt.Errorf("something broke"))
	if fields[FieldOperation] != "fork_exec" {
		t.Errorf("expected operation 'fork_exec', got %v", fields[FieldOperation])
	}
	if fields[FieldError] != "something broke" {
		t.Errorf("expected error 'something broke', got %v", fields[FieldError])
	}

	d := DurationFields("launch", 150*time.Millisecond)
	if d[FieldDuration] != int64(150) {
		t.Errorf("expected duration 150, got %v", d[FieldDuration])
	}

	m := MergeWithError(nil, fmt.Errorf("x"))
	if m[FieldError] != "x" {
		t.Errorf("expected error field, got %v", m[FieldError])
	}
}

func TestOutputWriter(t *testing.T) {
	if outputWriter("stdout") != os.Stdout {
		t.Error("expected stdout")
	}
	if outputWriter("anything") != os.Stderr {
		t.Error("expected stderr as fallback")
	}
}
