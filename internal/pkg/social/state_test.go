package social

import (
	"context"
	"errors"
	"testing"
)

func TestNewStateIsRandom(t *testing.T) {
	a, err := NewState()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewState()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two generated states must differ")
	}
	if len(a) != 48 {
		t.Errorf("unexpected state length %d", len(a))
	}
}

func TestMemoryStateStoreConsumeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()

	state, _ := NewState()
	if err := store.Put(ctx, state, 42); err != nil {
		t.Fatal(err)
	}

	userID, err := store.Consume(ctx, state)
	if err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected user 42, got %d", userID)
	}

	// A replayed callback with the same state must fail without a second
	// exchange.
	if _, err := store.Consume(ctx, state); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("second consume: expected ErrStateMismatch, got %v", err)
	}
}

func TestMemoryStateStoreUnknownState(t *testing.T) {
	store := NewMemoryStateStore()
	if _, err := store.Consume(context.Background(), "never-stored"); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("expected ErrStateMismatch, got %v", err)
	}
}

func TestMemoryStateStoreRejectsCollision(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()

	if err := store.Put(ctx, "same", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "same", 2); err == nil {
		t.Error("expected collision error for duplicate state")
	}
}
