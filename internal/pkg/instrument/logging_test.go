package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return out
}

func TestHandlerMasksFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "shield", "info", nil, []string{"OTP_CODE", " "}))

	logger.Info("otp submitted", "otp_code", "123456", "flow_id", "abc", "body", `{"otp_code":"654321","phone":"9876543210"}`)

	line := decodeLine(t, &buf)
	if line["otp_code"] != "***" {
		t.Fatalf("otp_code = %v, want masked", line["otp_code"])
	}
	if line["flow_id"] != "abc" {
		t.Fatalf("flow_id = %v", line["flow_id"])
	}
	if line["body"] != `{"otp_code":"***","phone":"9876543210"}` {
		t.Fatalf("body = %v", line["body"])
	}
	if line["service"] != "shield" {
		t.Fatalf("service = %v", line["service"])
	}
	if line["severity"] != "INFO" {
		t.Fatalf("severity = %v", line["severity"])
	}
}

func TestHandlerAddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "", "debug", nil, nil)).With("component", "test")

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.DebugContext(ctx, "hello")

	line := decodeLine(t, &buf)
	if line["_cID"] != "cid-1" {
		t.Fatalf("_cID = %v", line["_cID"])
	}
	if line["component"] != "test" {
		t.Fatalf("component = %v", line["component"])
	}
	if _, ok := line["service"]; ok {
		t.Fatal("service attribute should be omitted when blank")
	}
}

func TestHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "shield", "warn", nil, nil))

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %s", buf.String())
	}
}

func TestGetCorrelationIDMissing(t *testing.T) {
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Fatalf("GetCorrelationID() = %q", got)
	}
}

func TestNewDisabledReturnsNoop(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	ins, err := New(context.Background(), &Config{ServiceName: "shield"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := ins.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	_, span := ins.Tracer("t").Start(context.Background(), "op")
	span.End()
}

func TestHandlerKeepsPhoneSuffix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "shield", "info", nil, []string{"phone:4", "otp_code:x"}))

	logger.Info("code requested", "phone", "9876543210", "otp_code", "123456", "payload", map[string]any{"phone": "12"})

	line := decodeLine(t, &buf)
	if line["phone"] != "******3210" {
		t.Fatalf("phone = %v", line["phone"])
	}
	if line["otp_code"] != "***" {
		t.Fatalf("otp_code = %v", line["otp_code"])
	}
	if payload, _ := line["payload"].(map[string]any); payload["phone"] != "***" {
		t.Fatalf("payload = %v", line["payload"])
	}
}
