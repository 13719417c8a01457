package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema is the Postgres schema created by the migrations.
const DefaultSchema = "folio"

// PostgresStore implements Store over PostgreSQL.
//
// The pool is owned by the caller and never closed here. Schema and table
// identifiers are quoted through pgx.Identifier.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema overrides DefaultSchema. The name must be a plain identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const profileColumns = `p.id, p.email, p.email_norm, p.full_name, p.avatar_url,
       p.subscription_tier, p.is_active, p.created_at, p.updated_at`

func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	in, emailNorm, err := prepareCreate(op, in)
	if err != nil {
		return User{}, err
	}

	userID, err := NewULID(in.Now)
	if err != nil {
		return User{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	profiles := pgIdent(s.schema, "profiles")
	creds := pgIdent(s.schema, "user_credentials")

	_, err = tx.Exec(ctx,
		`INSERT INTO `+profiles+` (
		     id, email, email_norm, full_name, subscription_tier, is_active, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)`,
		userID,
		in.Email,
		emailNorm,
		in.FullName,
		TierFree,
		in.Now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+creds+` (user_id, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		userID, in.PasswordHash, in.Now,
	)
	if err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}

	return User{
		ID:               userID,
		Email:            in.Email,
		EmailNorm:        emailNorm,
		FullName:         in.FullName,
		SubscriptionTier: TierFree,
		IsActive:         true,
		CreatedAt:        in.Now,
		UpdatedAt:        in.Now,
	}, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, invalid(op, "missing id")
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+`
		   FROM `+pgIdent(s.schema, "profiles")+` p
		  WHERE p.id = $1`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	norm := NormalizeEmail(email)
	if norm == "" {
		return UserAuth{}, invalid(op, "missing email")
	}

	var (
		out  UserAuth
		hash string
	)
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+`, c.password_hash
		   FROM `+pgIdent(s.schema, "profiles")+` p
		   JOIN `+pgIdent(s.schema, "user_credentials")+` c ON c.user_id = p.id
		  WHERE p.email_norm = $1`,
		norm,
	)
	u, err := scanUser(row, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
		}
		return UserAuth{}, err
	}
	out.User = u
	out.PasswordHash = hash
	return out, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(hash) == "" {
		return invalid(op, "missing user_id or hash")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE `+pgIdent(s.schema, "user_credentials")+`
		    SET password_hash = $2, updated_at = $3
		  WHERE user_id = $1`,
		userID, hash, now,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "credentials"}
	}
	return nil
}

func (s *PostgresStore) SetActive(ctx context.Context, userID string, active bool, now time.Time) error {
	const op = "identity.SetActive"

	if strings.TrimSpace(userID) == "" {
		return invalid(op, "missing user_id")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE `+pgIdent(s.schema, "profiles")+`
		    SET is_active = $2, updated_at = $3
		  WHERE id = $1`,
		userID, active, now,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

func scanUser(row pgx.Row, extra ...any) (User, error) {
	var u User
	dest := []any{
		&u.ID,
		&u.Email,
		&u.EmailNorm,
		&u.FullName,
		&u.AvatarURL,
		&u.SubscriptionTier,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return User{}, err
	}
	return u, nil
}

// pgIdent quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case c == "uq_profiles_email_norm", strings.Contains(c, "email"):
		return "email", true
	case c == "profiles_pkey":
		return "id", true
	default:
		return "unique", true
	}
}
