package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("wstransport")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("connected", "server", "wss://localhost:3001/gfx")

	out := buf.String()
	if strings.Contains(out, `msg="INFO connected`) {
		t.Fatalf("unexpected nested severity prefix in message: %s", out)
	}
	if !strings.Contains(out, "msg=connected") {
		t.Fatalf("expected plain connected message, got: %s", out)
	}
	if !strings.Contains(out, "component=wstransport") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "server=wss://localhost:3001/gfx") {
		t.Fatalf("expected server field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("wstransport")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestWithFrameAttachesFrameID(t *testing.T) {
	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger := WithFrame(L("compositor"), 42)
	logger.Info("frame decoded")

	if !strings.Contains(buf.String(), "frameId=42") {
		t.Fatalf("expected frameId field, got: %s", buf.String())
	}
}
