package authapi

import (
	"context"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"
)

type lockoutTier struct {
	Threshold int
	Duration  time.Duration
}

// evaluateWindowThrottle blocks once max failures fall inside window. retry is
// how long until enough of them age out.
func evaluateWindowThrottle(now time.Time, failures []time.Time, max int, window time.Duration) (bool, time.Duration) {
	if max <= 0 || window <= 0 {
		return false, 0
	}
	cut := now.Add(-window)
	var in []time.Time
	for _, f := range failures {
		if f.After(cut) {
			in = append(in, f)
		}
	}
	if len(in) < max {
		return false, 0
	}
	slices.SortFunc(in, func(a, b time.Time) int { return a.Compare(b) })
	return true, in[len(in)-max].Add(window).Sub(now)
}

// evaluateProgressiveLockout checks tiers in order; the first tier whose
// threshold is reached within its own duration wins. retry runs from the most
// recent failure.
func evaluateProgressiveLockout(now time.Time, failures []time.Time, tiers []lockoutTier) (bool, time.Duration) {
	for _, tier := range tiers {
		if tier.Threshold <= 0 || tier.Duration <= 0 {
			continue
		}
		cut := now.Add(-tier.Duration)
		var (
			count  int
			latest time.Time
		)
		for _, f := range failures {
			if !f.After(cut) {
				continue
			}
			count++
			if f.After(latest) {
				latest = f
			}
		}
		if count >= tier.Threshold {
			return true, latest.Add(tier.Duration).Sub(now)
		}
	}
	return false, 0
}

func (h *Handler) checkLoginIPThrottle(ctx context.Context, ip net.IP, now time.Time) (bool, time.Duration, error) {
	if h.auditLog == nil || ip == nil || h.cfg.LoginIPMax <= 0 {
		return false, 0, nil
	}
	failures, err := h.auditLog.LoginFailuresByIP(ctx, ip, now.Add(-h.cfg.LoginIPWindow))
	if err != nil {
		return false, 0, err
	}
	blocked, retry := evaluateWindowThrottle(now, failures, h.cfg.LoginIPMax, h.cfg.LoginIPWindow)
	return blocked, retry, nil
}

func (h *Handler) checkLoginIdentifierThrottle(ctx context.Context, identifier string, now time.Time) (bool, time.Duration, error) {
	if h.auditLog == nil || identifier == "" {
		return false, 0, nil
	}
	tiers := h.cfg.lockoutTiers()
	var longest time.Duration
	for _, t := range tiers {
		longest = max(longest, t.Duration)
	}
	failures, err := h.auditLog.LoginFailuresByIdentifier(ctx, identifier, now.Add(-longest))
	if err != nil {
		return false, 0, err
	}
	blocked, retry := evaluateProgressiveLockout(now, failures, tiers)
	return blocked, retry, nil
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		secs := int64((retryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	}
	writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many attempts")
}
