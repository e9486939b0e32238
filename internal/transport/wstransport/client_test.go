package wstransport

import (
	"strings"
	"testing"
)

func TestBuildWSURLRewritesSchemeAndAddsAuth(t *testing.T) {
	c := New(&Config{
		ServerURL: "https://gfx.example.com:9443",
		ClientID:  "abc-123",
		AuthToken: "tok",
		SendQueueSize: 4,
	})

	u, err := c.buildWSURL()
	if err != nil {
		t.Fatalf("buildWSURL: %v", err)
	}
	if !strings.HasPrefix(u, "wss://gfx.example.com:9443/api/v1/gfx-ws/abc-123/ws") {
		t.Fatalf("url = %s, want wss scheme + gfx-ws path", u)
	}
	if !strings.Contains(u, "token=tok") {
		t.Fatalf("url = %s, want token query param", u)
	}
}

func TestBuildWSURLPlainHTTPBecomesWS(t *testing.T) {
	c := New(&Config{ServerURL: "http://localhost:3001", ClientID: "x", SendQueueSize: 1})
	u, err := c.buildWSURL()
	if err != nil {
		t.Fatalf("buildWSURL: %v", err)
	}
	if !strings.HasPrefix(u, "ws://localhost:3001") {
		t.Fatalf("url = %s, want ws scheme", u)
	}
}

func TestSendAfterStopErrors(t *testing.T) {
	c := New(&Config{ServerURL: "ws://localhost", ClientID: "x", SendQueueSize: 1})
	c.Stop()
	if err := c.Send([]byte{1, 2, 3}); err == nil {
		t.Fatal("Send after Stop should error")
	}
}

func TestSendQueueFullErrors(t *testing.T) {
	c := New(&Config{ServerURL: "ws://localhost", ClientID: "x", SendQueueSize: 1})
	if err := c.Send([]byte{1}); err != nil {
		t.Fatalf("first Send: %v", err)
	}
	if err := c.Send([]byte{2}); err == nil {
		t.Fatal("second Send should fail: queue full")
	}
}
