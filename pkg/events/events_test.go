package events_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/JaimeStill/school-feed/pkg/events"
)

func TestConfig_Subject(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"school-feed", "school-feed.post.created"},
		{"", "post.created"},
	}

	for _, tt := range tests {
		cfg := events.Config{Prefix: tt.prefix}
		if got := cfg.Subject("post.created"); got != tt.want {
			t.Errorf("Subject() with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestConfig_Finalize(t *testing.T) {
	t.Setenv("TEST_EVENTS_ENABLED", "true")

	cfg := events.Config{}
	if err := cfg.Finalize(&events.Env{Enabled: "TEST_EVENTS_ENABLED"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if !cfg.Enabled || cfg.URL != "nats://localhost:4222" || cfg.Prefix != "school-feed" {
		t.Errorf("cfg = %+v", cfg)
	}

	bad := events.Config{Prefix: "school feed"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("prefix with whitespace should fail validation")
	}
}

func TestNew_DisabledIsNoop(t *testing.T) {
	sys := events.New(&events.Config{}, slog.New(slog.DiscardHandler))

	if err := sys.Publish(context.Background(), "post.created", map[string]string{"id": "1"}); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}

func TestPublish_BeforeStart(t *testing.T) {
	sys := events.New(&events.Config{Enabled: true, Prefix: "school-feed"}, slog.New(slog.DiscardHandler))

	if err := sys.Publish(context.Background(), "post.created", struct{}{}); err == nil {
		t.Error("Publish() before Start should fail")
	}
}
