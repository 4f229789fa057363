package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLogstashHookForwardsJSONLines(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	hook, err := NewLogstashHook("logstash:5000")
	if err != nil {
		t.Fatalf("new hook: %v", err)
	}
	hook.dial = func(network, addr string, timeout time.Duration) (net.Conn, error) {
		return client, nil
	}
	defer hook.Close()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.AddHook(hook)

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(server).ReadString('\n')
		lines <- line
	}()

	logger.WithField("vendor_id", "v-1").Info("live session started")

	select {
	case line := <-lines:
		var payload map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &payload); err != nil {
			t.Fatalf("expected JSON line, got %q: %v", line, err)
		}
		if payload["msg"] != "live session started" || payload["vendor_id"] != "v-1" {
			t.Fatalf("unexpected payload: %v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for forwarded entry")
	}
}

func TestLogstashHookDropsEntriesDuringCooldown(t *testing.T) {
	dials := 0
	hook, err := NewLogstashHook("logstash:5000", WithRetryInterval(time.Hour))
	if err != nil {
		t.Fatalf("new hook: %v", err)
	}
	hook.dial = func(network, addr string, timeout time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	entry := logrus.NewEntry(logrus.New())
	entry.Message = "first"
	if err := hook.Fire(entry); err != nil {
		t.Fatalf("fire must not fail: %v", err)
	}
	entry.Message = "second"
	if err := hook.Fire(entry); err != nil {
		t.Fatalf("fire must not fail: %v", err)
	}
	if dials != 1 {
		t.Fatalf("expected a single dial during cooldown, got %d", dials)
	}
}

func TestNewLoggerDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Options{Level: "nonsense", Output: &buf})
	defer closer.Close()

	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level fallback, got %s", logger.GetLevel())
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}
