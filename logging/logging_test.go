package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("login", "email", "a@b.com", "password", "hunter2", "session_secret", "x", "nested", map[string]any{"api_token": "t", "ok": 1})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "a@b.com" {
		t.Errorf("email = %v", fields["email"])
	}
	if fields["password"] != "[REDACTED]" || fields["session_secret"] != "[REDACTED]" {
		t.Errorf("secrets not redacted: %v", fields)
	}
	nested, ok := fields["nested"].(map[string]any)
	if !ok || nested["api_token"] != "[REDACTED]" {
		t.Errorf("nested = %#v", fields["nested"])
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("component", "store")
	log.Warn("slow")
	if got := logs.All()[0].ContextMap()["component"]; got != "store" {
		t.Fatalf("component = %v", got)
	}
}

func TestOddKeyValues(t *testing.T) {
	got := sanitizeKVs([]any{"a", 1, "dangling"})
	if len(got) != 3 || got[2] != "dangling" {
		t.Fatalf("sanitizeKVs = %v", got)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.Debug("hello")
	}
	Nop().Error("ignored")
}
