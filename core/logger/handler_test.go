package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, *bytes.Buffer, func()) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := newAsyncWriter([]io.Writer{buf}, 0)
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: writer,
		format: format,
	})
	cleanup := func() {
		if err := writer.Close(); err != nil {
			t.Fatalf("close writer: %v", err)
		}
	}
	return slog.New(handler), buf, cleanup
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	logg, buf, cleanup := newTestLogger(t, formatKV)

	ctx := WithUpdateMeta(Background(), 42, 100, 200)
	LogEvent(ctx, logg.With("component", "tg"), slog.LevelInfo, "update_received",
		slog.String("status", "ok"),
		slog.String("payload", "exp_cat:3"),
	)

	cleanup()

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log output")
	}
	wantOrder := []string{"ts=", "level=INFO", "component=tg", "event=update_received", "status=ok", "update_id=42", "user_id=100", "chat_id=200", "payload=exp_cat:3"}
	pos := -1
	for _, token := range wantOrder {
		idx := strings.Index(line, token)
		if idx < 0 {
			t.Fatalf("missing %q in %q", token, line)
		}
		if idx < pos {
			t.Fatalf("token %q out of order in %q", token, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	logg, buf, cleanup := newTestLogger(t, formatJSON)

	LogEvent(Background(), logg.With("component", "db"), slog.LevelWarn, "insert_failed",
		slog.String("status", "fail"),
		slog.Int64("category_id", 7),
		slog.String("err", "missing reference"),
	)

	cleanup()

	line := strings.TrimSpace(buf.String())
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		t.Fatalf("invalid JSON line %q: %v", line, err)
	}
	if fields["level"] != "WARN" {
		t.Fatalf("level = %v, want WARN", fields["level"])
	}
	if fields["component"] != "db" {
		t.Fatalf("component = %v, want db", fields["component"])
	}
	if fields["event"] != "insert_failed" {
		t.Fatalf("event = %v, want insert_failed", fields["event"])
	}
	tsIdx := strings.Index(line, `"ts"`)
	levelIdx := strings.Index(line, `"level"`)
	componentIdx := strings.Index(line, `"component"`)
	if !(tsIdx >= 0 && tsIdx < levelIdx && levelIdx < componentIdx) {
		t.Fatalf("stable key prefix out of order in %q", line)
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	logg, buf, cleanup := newTestLogger(t, formatKV)

	ctx := WithRID(Background(), BuildRID(123456, 987654321, 111222333))
	LogEvent(ctx, logg, slog.LevelInfo, "handled")

	cleanup()

	line := strings.TrimSpace(buf.String())
	want := "rid=" + CompactRID(BuildRID(123456, 987654321, 111222333))
	if !strings.Contains(line, want) {
		t.Fatalf("missing %q in %q", want, line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("kv format must not carry rid_full: %q", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	logg, buf, cleanup := newTestLogger(t, formatJSON)

	full := BuildRID(123456, 987654321, 111222333)
	ctx := WithRID(Background(), full)
	LogEvent(ctx, logg, slog.LevelInfo, "handled")

	cleanup()

	var fields map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &fields); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if fields["rid"] != CompactRID(full) {
		t.Fatalf("rid = %v, want %v", fields["rid"], CompactRID(full))
	}
	if fields["rid_full"] != full {
		t.Fatalf("rid_full = %v, want %v", fields["rid_full"], full)
	}
}
