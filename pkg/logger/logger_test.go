package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := globalLogger
	globalLogger = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { globalLogger = old })
	return &buf
}

func TestWithContextEmitsTraceFields(t *testing.T) {
	buf := withCapturedLogger(t)

	ctx := WithSpanID(WithTraceID(context.Background(), "trace-123"), "span-456")
	Info(ctx, "request handled")

	out := buf.String()
	if !strings.Contains(out, `"trace_id":"trace-123"`) {
		t.Fatalf("trace_id missing from log output: %s", out)
	}
	if !strings.Contains(out, `"span_id":"span-456"`) {
		t.Fatalf("span_id missing from log output: %s", out)
	}
}

func TestWithContextIgnoresForeignStringKeys(t *testing.T) {
	buf := withCapturedLogger(t)

	// 裸字符串 key 与私有类型 key 不冲突
	ctx := context.WithValue(context.Background(), "trace_id", "should-not-leak") //nolint:staticcheck
	Info(ctx, "request handled")

	if strings.Contains(buf.String(), "should-not-leak") {
		t.Fatalf("string-keyed value leaked into log output: %s", buf.String())
	}
}

func TestWithContextWithoutTraceReturnsBase(t *testing.T) {
	withCapturedLogger(t)

	if WithContext(context.Background()) != Get() {
		t.Fatal("context without trace fields should reuse the base logger")
	}
}
