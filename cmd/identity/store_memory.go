package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]User
	hashes  map[string]string // user id -> digest
	byEmail map[string]string // email_norm -> user id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]User),
		hashes:  make(map[string]string),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	in, emailNorm, err := prepareCreate(op, in)
	if err != nil {
		return User{}, err
	}
	id, err := NewULID(in.Now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[emailNorm]; taken {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := User{
		ID:               id,
		Email:            in.Email,
		EmailNorm:        emailNorm,
		FullName:         in.FullName,
		SubscriptionTier: TierFree,
		IsActive:         true,
		CreatedAt:        in.Now,
		UpdatedAt:        in.Now,
	}
	s.users[id] = u
	s.hashes[id] = in.PasswordHash
	s.byEmail[emailNorm] = id
	return u, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, invalid(op, "missing id")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}

func (s *MemoryStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}
	norm := NormalizeEmail(email)
	if norm == "" {
		return UserAuth{}, invalid(op, "missing email")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[norm]
	if !ok {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	return UserAuth{User: s.users[id], PasswordHash: s.hashes[id]}, nil
}

func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(hash) == "" {
		return invalid(op, "missing user_id or hash")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hashes[userID]; !ok {
		return NotFoundError{Op: op, Resource: "credentials"}
	}
	s.hashes[userID] = hash
	return nil
}

func (s *MemoryStore) SetActive(ctx context.Context, userID string, active bool, now time.Time) error {
	const op = "identity.SetActive"

	if err := ctx.Err(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return NotFoundError{Op: op, Resource: "user"}
	}
	u.IsActive = active
	u.UpdatedAt = now
	s.users[userID] = u
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
