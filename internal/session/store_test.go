package session

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/user-auth-service/internal/model"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	sess := New(time.Hour)
	sess.Identity = &Identity{UserID: 7, Role: "Admin"}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Identity == nil || got.Identity.UserID != 7 || got.Identity.Role != "Admin" {
		t.Fatalf("identity claim not preserved: %+v", got.Identity)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Delete is idempotent.
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
}

func TestMemoryStore_ExpiredRecordIsAbsent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	sess := New(time.Hour)
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestStageAndTakePending(t *testing.T) {
	t.Parallel()

	sess := New(time.Hour)
	p := model.PendingRegistration{FullName: "Alice", Email: "alice@example.com", PasswordHash: "h"}
	sess.Stage("alice@example.com", p)

	// Staging overwrites prior entries for the same email.
	p2 := p
	p2.FullName = "Alice B"
	sess.Stage("alice@example.com", p2)

	got, ok := sess.TakePending("alice@example.com")
	if !ok {
		t.Fatal("expected staged entry")
	}
	if got.FullName != "Alice B" {
		t.Fatalf("expected overwritten entry, got %+v", got)
	}

	// Take removes atomically; a second take finds nothing.
	if _, ok := sess.TakePending("alice@example.com"); ok {
		t.Fatal("entry should be gone after take")
	}
}

func TestMemoryStore_CallersDoNotShareState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	sess := New(time.Hour)
	sess.Stage("a@example.com", model.PendingRegistration{Email: "a@example.com"})
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Mutating the caller's copy after Save must not affect the store.
	sess.TakePending("a@example.com")

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if _, ok := got.Pending["a@example.com"]; !ok {
		t.Fatal("stored session lost its pending entry via caller mutation")
	}
}
