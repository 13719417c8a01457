package identity

import (
	"context"
	"strings"
	"time"
)

// Subscription tiers stored in profiles.subscription_tier.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// User is a profile row.
type User struct {
	ID               string
	Email            string
	EmailNorm        string
	FullName         *string
	AvatarURL        *string
	SubscriptionTier string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserAuth pairs a user with their stored password digest.
// PasswordHash must never be logged or serialized.
type UserAuth struct {
	User         User
	PasswordHash string
}

// CreateUserInput carries an already-hashed password; the store never sees plaintext.
type CreateUserInput struct {
	Email        string
	FullName     *string
	PasswordHash string
	Now          time.Time
}

// Store is the profile persistence boundary.
type Store interface {
	// CreateUser inserts the profile and its credential atomically.
	// A duplicate email (case-insensitive) is a ConflictError on "email".
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetUserByID returns NotFoundError for unknown ids. Inactive users are
	// returned as-is; callers decide what IsActive=false means.
	GetUserByID(ctx context.Context, id string) (User, error)

	// GetUserAuthByEmail looks up by normalized email.
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)

	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error

	SetActive(ctx context.Context, userID string, active bool, now time.Time) error
}

func prepareCreate(op string, in CreateUserInput) (CreateUserInput, string, error) {
	email := strings.TrimSpace(in.Email)
	if !ValidEmail(email) {
		return in, "", invalid(op, "invalid email")
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return in, "", invalid(op, "password hash is required")
	}
	in.Email = email
	if in.FullName != nil {
		n := NormalizeFullName(*in.FullName)
		if n == "" {
			in.FullName = nil
		} else {
			in.FullName = &n
		}
	}
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}
	return in, NormalizeEmail(email), nil
}
