package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{in: "debug", want: LevelDebug},
		{in: " WARN ", want: LevelWarn},
		{in: "warning", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "", want: LevelInfo},
		{in: "verbose", want: LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLevel(%q)=%s want=%s", tt.in, got, tt.want)
		}
	}
}

func TestLogger_InfoContextWritesFieldsAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo)

	ctx := WithRequestID(context.Background(), "req-42")
	logger.InfoContext(ctx, "matches served", "date", "2024-12-01", "count", 3, "error", errors.New("boom"))

	var line map[string]any
	if err := sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "matches served" {
		t.Fatalf("unexpected msg: %v", line["msg"])
	}
	if line["request_id"] != "req-42" {
		t.Fatalf("expected request_id=req-42, got %v", line["request_id"])
	}
	if line["date"] != "2024-12-01" {
		t.Fatalf("unexpected date field: %v", line["date"])
	}
	if line["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", line["error"])
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelWarn)

	logger.Info("dropped")
	logger.Debug("dropped too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	logger.Warn("kept", "odd")
	if !strings.Contains(buf.String(), `"odd":null`) {
		t.Fatalf("expected dangling key to be logged with null value, got %q", buf.String())
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if got := logger.With("k", "v"); got == nil {
		t.Fatalf("expected non-nil logger from nil With")
	}
}
