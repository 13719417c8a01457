package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndLookup(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	name := "  Ada   Lovelace "
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	u, err := s.CreateUser(ctx, CreateUserInput{
		Email:        " Ada@Example.com ",
		FullName:     &name,
		PasswordHash: "$argon2id$stub",
		Now:          now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !ValidULID(u.ID) {
		t.Fatalf("expected ULID id, got %q", u.ID)
	}
	if u.Email != "Ada@Example.com" || u.EmailNorm != "ada@example.com" {
		t.Fatalf("email mismatch: %q / %q", u.Email, u.EmailNorm)
	}
	if u.FullName == nil || *u.FullName != "Ada Lovelace" {
		t.Fatalf("full name not normalized: %v", u.FullName)
	}
	if !u.IsActive || u.SubscriptionTier != TierFree || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected defaults: %+v", u)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("id mismatch")
	}

	auth, err := s.GetUserAuthByEmail(ctx, "ADA@example.COM")
	if err != nil {
		t.Fatalf("GetUserAuthByEmail: %v", err)
	}
	if auth.User.ID != u.ID || auth.PasswordHash != "$argon2id$stub" {
		t.Fatalf("auth mismatch: %+v", auth)
	}
}

func TestMemoryStore_DuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, CreateUserInput{Email: "user@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create 1: %v", err)
	}
	_, err := s.CreateUser(ctx, CreateUserInput{Email: "USER@example.com", PasswordHash: "h"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var ce ConflictError
	if !errors.As(err, &ce) || ce.Field != "email" {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestMemoryStore_InvalidInput(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	cases := []CreateUserInput{
		{Email: "", PasswordHash: "h"},
		{Email: "not-an-email", PasswordHash: "h"},
		{Email: "Ada <ada@example.com>", PasswordHash: "h"},
		{Email: "ada@example.com", PasswordHash: "  "},
	}
	for _, in := range cases {
		if _, err := s.CreateUser(ctx, in); !IsInvalidInput(err) {
			t.Fatalf("%+v: expected invalid input, got %v", in, err)
		}
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetUserByID(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetUserAuthByEmail(ctx, "ghost@example.com"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.UpdatePasswordHash(ctx, "missing", "h", time.Now()); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.SetActive(ctx, "missing", false, time.Now()); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_SetActiveAndRehash(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserInput{Email: "user@example.com", PasswordHash: "old"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := s.SetActive(ctx, u.ID, false, time.Now()); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.IsActive {
		t.Fatalf("expected inactive user")
	}

	if err := s.UpdatePasswordHash(ctx, u.ID, "new", time.Now()); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	auth, err := s.GetUserAuthByEmail(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetUserAuthByEmail: %v", err)
	}
	if auth.PasswordHash != "new" {
		t.Fatalf("hash not updated")
	}
}

func TestMemoryStore_ContextCanceled(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.GetUserByID(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewULID_SortsWithinMillisecond(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	prev := ""
	for i := 0; i < 50; i++ {
		id, err := NewULID(now)
		if err != nil {
			t.Fatalf("NewULID: %v", err)
		}
		if !ValidULID(id) || len(id) != 26 {
			t.Fatalf("invalid id %q", id)
		}
		if id <= prev {
			t.Fatalf("ids out of order: %q after %q", id, prev)
		}
		prev = id
	}
}
