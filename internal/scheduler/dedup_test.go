package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestMemoryDeduperFirstWins(t *testing.T) {
	d := NewMemoryDeduper()
	ctx := context.Background()

	first, err := d.MarkDeadlineWarned(ctx, "ticket-1", time.Hour)
	if err != nil {
		t.Fatalf("MarkDeadlineWarned: %v", err)
	}
	if !first {
		t.Error("first mark should report true")
	}

	repeat, err := d.MarkDeadlineWarned(ctx, "ticket-1", time.Hour)
	if err != nil {
		t.Fatalf("MarkDeadlineWarned: %v", err)
	}
	if repeat {
		t.Error("repeat mark should report false")
	}
}

func TestMemoryDeduperTracksTicketsIndependently(t *testing.T) {
	d := NewMemoryDeduper()
	ctx := context.Background()

	if first, _ := d.MarkDeadlineWarned(ctx, "ticket-1", time.Hour); !first {
		t.Error("ticket-1 first mark should report true")
	}
	if first, _ := d.MarkDeadlineWarned(ctx, "ticket-2", time.Hour); !first {
		t.Error("ticket-2 first mark should report true")
	}
}

func TestMemoryDeduperExpiry(t *testing.T) {
	d := NewMemoryDeduper()
	ctx := context.Background()

	if _, err := d.MarkDeadlineWarned(ctx, "ticket-1", time.Millisecond); err != nil {
		t.Fatalf("MarkDeadlineWarned: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	again, err := d.MarkDeadlineWarned(ctx, "ticket-1", time.Hour)
	if err != nil {
		t.Fatalf("MarkDeadlineWarned: %v", err)
	}
	if !again {
		t.Error("mark should report true again after expiry")
	}
}
