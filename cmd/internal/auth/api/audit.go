package authapi

import (
	"context"
	"encoding/json"
	"net"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit actions.
const (
	actionSignup           = "auth.signup"
	actionLoginSuccess     = "auth.login.success"
	actionLoginFailed      = "auth.login.failed"
	actionLoginRateLimited = "auth.login.rate_limited"
	actionLogout           = "auth.logout"
)

// AuditEvent is one row of the auth audit trail.
type AuditEvent struct {
	Action     string
	UserID     *string
	Identifier string
	IP         net.IP
	UserAgent  string
	Meta       map[string]any
	At         time.Time
}

// AuditLog stores auth events and answers the failure-history queries that
// drive login throttling.
type AuditLog interface {
	Record(ctx context.Context, ev AuditEvent) error
	LoginFailuresByIP(ctx context.Context, ip net.IP, since time.Time) ([]time.Time, error)
	LoginFailuresByIdentifier(ctx context.Context, identifier string, since time.Time) ([]time.Time, error)
}

// PostgresAuditLog writes to <schema>.audit_log.
type PostgresAuditLog struct {
	pool  *pgxpool.Pool
	table string
}

func NewPostgresAuditLog(pool *pgxpool.Pool, schema string) *PostgresAuditLog {
	if strings.TrimSpace(schema) == "" {
		schema = "folio"
	}
	return &PostgresAuditLog{pool: pool, table: pgx.Identifier{schema, "audit_log"}.Sanitize()}
}

func (a *PostgresAuditLog) Record(ctx context.Context, ev AuditEvent) error {
	var ipVal any
	if ev.IP != nil {
		ipVal = ev.IP.String()
	}
	var metaVal *string
	if len(ev.Meta) > 0 {
		if b, err := json.Marshal(ev.Meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := a.pool.Exec(ctx, `
		INSERT INTO `+a.table+` (
			user_id, action, identifier, created_at, ip, user_agent, meta
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	`, ev.UserID, ev.Action, trimOrNil(ev.Identifier), ev.At, ipVal, trimOrNil(ev.UserAgent), metaVal)
	return err
}

func (a *PostgresAuditLog) LoginFailuresByIP(ctx context.Context, ip net.IP, since time.Time) ([]time.Time, error) {
	if ip == nil {
		return nil, nil
	}
	return a.failures(ctx, `ip = $2::inet`, ip.String(), since)
}

func (a *PostgresAuditLog) LoginFailuresByIdentifier(ctx context.Context, identifier string, since time.Time) ([]time.Time, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, nil
	}
	return a.failures(ctx, `identifier = $2`, identifier, since)
}

func (a *PostgresAuditLog) failures(ctx context.Context, where string, arg any, since time.Time) ([]time.Time, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT created_at
		  FROM `+a.table+`
		 WHERE action = $1
		   AND `+where+`
		   AND created_at >= $3
		 ORDER BY created_at DESC
		 LIMIT 100
	`, actionLoginFailed, arg, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

// MemoryAuditLog keeps a bounded in-process trail for single-instance runs.
type MemoryAuditLog struct {
	mu     sync.Mutex
	events []AuditEvent
	max    int
}

func NewMemoryAuditLog(max int) *MemoryAuditLog {
	if max <= 0 {
		max = 10_000
	}
	return &MemoryAuditLog{max: max}
}

func (a *MemoryAuditLog) Record(_ context.Context, ev AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.events = append(a.events, ev)
	if over := len(a.events) - a.max; over > 0 {
		a.events = slices.Delete(a.events, 0, over)
	}
	return nil
}

// Events returns a copy of the recorded events, oldest first.
func (a *MemoryAuditLog) Events() []AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.events)
}

func (a *MemoryAuditLog) LoginFailuresByIP(_ context.Context, ip net.IP, since time.Time) ([]time.Time, error) {
	if ip == nil {
		return nil, nil
	}
	return a.failures(func(ev AuditEvent) bool { return ev.IP.Equal(ip) }, since), nil
}

func (a *MemoryAuditLog) LoginFailuresByIdentifier(_ context.Context, identifier string, since time.Time) ([]time.Time, error) {
	if identifier == "" {
		return nil, nil
	}
	return a.failures(func(ev AuditEvent) bool { return ev.Identifier == identifier }, since), nil
}

func (a *MemoryAuditLog) failures(match func(AuditEvent) bool, since time.Time) []time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []time.Time
	for _, ev := range a.events {
		if ev.Action == actionLoginFailed && !ev.At.Before(since) && match(ev) {
			out = append(out, ev.At)
		}
	}
	return out
}

func (h *Handler) audit(ctx context.Context, ev AuditEvent) {
	if h.auditLog == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = h.now()
	}
	if err := h.auditLog.Record(ctx, ev); err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", ev.Action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}

var (
	_ AuditLog = (*PostgresAuditLog)(nil)
	_ AuditLog = (*MemoryAuditLog)(nil)
)
