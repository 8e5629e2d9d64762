package token

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySessionStoreSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if err := store.Save(ctx, "tok", "user-1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	userID, err := store.Take(ctx, "tok")
	if err != nil || userID != "user-1" {
		t.Fatalf("take = %q, %v", userID, err)
	}
	if _, err := store.Take(ctx, "tok"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second take err = %v, want ErrSessionNotFound", err)
	}
}

func TestMemorySessionStoreExpiryAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	_ = store.Save(ctx, "expired", "user-1", -time.Second)
	if _, err := store.Take(ctx, "expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired take err = %v", err)
	}

	_ = store.Save(ctx, "revoked", "user-1", time.Hour)
	if err := store.Delete(ctx, "revoked"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Take(ctx, "revoked"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("revoked take err = %v", err)
	}
}
