package core

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestObserveOperation_RecordsMetricsAndLogs(t *testing.T) {
	api := newStubUserAPI()
	api.users["bob"] = User{Name: "bob"}
	api.passwords["bob"] = "hunter2"
	logger := &capturingLogger{}
	metrics := &recordingMetrics{}
	svc := newDirectService(t, api, WithLogger(logger), WithMetricsRecorder(metrics))

	if _, err := svc.Get(context.Background(), "bob", GetOptions{}); err != nil {
		t.Fatalf("get: %v", err)
	}
	_, _ = svc.Login(context.Background(), LoginInfo{Name: "bob", Password: "wrong"})

	if len(metrics.counters) != 2 {
		t.Fatalf("expected two operation counters, got %d", len(metrics.counters))
	}
	if metrics.counters[0].name != "accounts.get.total" || metrics.counters[0].tags["status"] != "success" {
		t.Fatalf("unexpected get counter %#v", metrics.counters[0])
	}
	if metrics.counters[1].name != "accounts.login.total" || metrics.counters[1].tags["status"] != "failure" {
		t.Fatalf("unexpected login counter %#v", metrics.counters[1])
	}

	var sawFailure bool
	for _, entry := range logger.entries {
		line := fmt.Sprint(entry.args...)
		if strings.Contains(line, "hunter2") || strings.Contains(line, "wrong") {
			t.Fatalf("expected password never logged, got %q", line)
		}
		if entry.level == "error" && entry.message == "login failed" {
			sawFailure = true
			if !strings.Contains(line, AccountErrorIncorrectCredential) {
				t.Fatalf("expected text code in failure fields, got %q", line)
			}
		}
	}
	if !sawFailure {
		t.Fatalf("expected login failure to be logged")
	}
}

func TestRedactSensitiveMap(t *testing.T) {
	redacted := RedactSensitiveMap(map[string]any{
		"name":       "bob",
		"password":   "hunter2",
		"bearer":     "rockbot",
		"request_id": "r-1",
		"nested":     map[string]any{"api_key": "k"},
	})
	if redacted["name"] != "bob" || redacted["request_id"] != "r-1" {
		t.Fatalf("expected traceable fields kept, got %#v", redacted)
	}
	if redacted["password"] != RedactedValue || redacted["bearer"] != RedactedValue {
		t.Fatalf("expected credentials redacted, got %#v", redacted)
	}
	nested, _ := redacted["nested"].(map[string]any)
	if nested["api_key"] != RedactedValue {
		t.Fatalf("expected nested redaction, got %#v", nested)
	}
}
