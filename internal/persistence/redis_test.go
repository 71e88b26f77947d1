package persistence

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Fluffaro/desk-cartel/internal/config"
)

func TestNewRedisWithoutAddr(t *testing.T) {
	r := NewRedis(config.RedisConfig{}, zap.NewNop())

	if r == nil {
		t.Fatal("NewRedis returned nil")
	}
	if r.Client != nil {
		t.Fatal("expected nil client when no address is configured")
	}
}

func TestUnconfiguredRedisReportsErrors(t *testing.T) {
	r := NewRedis(config.RedisConfig{}, zap.NewNop())
	ctx := context.Background()

	if err := r.Ping(ctx); err == nil {
		t.Error("Ping on unconfigured redis should fail")
	}

	marked, err := r.MarkDeadlineWarned(ctx, "ticket-1", time.Hour)
	if err == nil {
		t.Error("MarkDeadlineWarned on unconfigured redis should fail")
	}
	if marked {
		t.Error("MarkDeadlineWarned should not report success without a client")
	}

	// Close must tolerate the nil client.
	r.Close()
}
