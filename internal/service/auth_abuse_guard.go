package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/config"
)

type AuthAbuseScope string

const (
	AuthAbuseScopeLogin  AuthAbuseScope = "login"
	AuthAbuseScopeVerify AuthAbuseScope = "verify"
	AuthAbuseScopeForgot AuthAbuseScope = "forgot"
)

type AuthAbusePolicy struct {
	FreeAttempts int
	BaseDelay    time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	ResetWindow  time.Duration
	// ScopeFreeAttempts overrides FreeAttempts for individual scopes.
	ScopeFreeAttempts map[AuthAbuseScope]int
}

func (p AuthAbusePolicy) freeAttempts(scope AuthAbuseScope) int {
	if n, ok := p.ScopeFreeAttempts[scope]; ok {
		return n
	}
	return p.FreeAttempts
}

// abuseDimension is one counter a failure is charged to.
type abuseDimension struct {
	name  string
	value string
}

// abuseDimensions charges every failure to the target identity and to the
// client IP, so neither spraying one account nor one source can escape.
func abuseDimensions(identity, ip string) [2]abuseDimension {
	return [2]abuseDimension{
		{name: "id", value: normalizeAuthIdentity(identity)},
		{name: "ip", value: normalizeAuthIP(ip)},
	}
}

// AuthAbuseGuard throttles repeated failures per identity and per client IP.
// The returned duration is the remaining cooldown; zero means allowed.
type AuthAbuseGuard interface {
	Check(ctx context.Context, scope AuthAbuseScope, identity, ip string) (time.Duration, error)
	RegisterFailure(ctx context.Context, scope AuthAbuseScope, identity, ip string) (time.Duration, error)
	Reset(ctx context.Context, scope AuthAbuseScope, identity, ip string) error
}

type NoopAuthAbuseGuard struct{}

func NewNoopAuthAbuseGuard() *NoopAuthAbuseGuard {
	return &NoopAuthAbuseGuard{}
}

func (g *NoopAuthAbuseGuard) Check(context.Context, AuthAbuseScope, string, string) (time.Duration, error) {
	return 0, nil
}

func (g *NoopAuthAbuseGuard) RegisterFailure(context.Context, AuthAbuseScope, string, string) (time.Duration, error) {
	return 0, nil
}

func (g *NoopAuthAbuseGuard) Reset(context.Context, AuthAbuseScope, string, string) error {
	return nil
}

type authAbuseEntry struct {
	FailCount     int
	LastFailureAt time.Time
	CooldownUntil time.Time
}

type InMemoryAuthAbuseGuard struct {
	mu     sync.Mutex
	policy AuthAbusePolicy
	data   map[string]authAbuseEntry
	now    func() time.Time
}

func NewInMemoryAuthAbuseGuard(policy AuthAbusePolicy) *InMemoryAuthAbuseGuard {
	return &InMemoryAuthAbuseGuard{
		policy: normalizeAuthAbusePolicy(policy),
		data:   make(map[string]authAbuseEntry),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AuthAbusePolicyFromConfig builds the shared policy. Verification codes are
// six digits, so the verify scope may be given a smaller free budget.
func AuthAbusePolicyFromConfig(cfg *config.Config) AuthAbusePolicy {
	policy := AuthAbusePolicy{
		FreeAttempts: cfg.AuthAbuseFreeAttempts,
		BaseDelay:    cfg.AuthAbuseBaseDelay,
		Multiplier:   cfg.AuthAbuseMultiplier,
		MaxDelay:     cfg.AuthAbuseMaxDelay,
		ResetWindow:  cfg.AuthAbuseResetWindow,
	}
	if cfg.AuthAbuseVerifyFreeAttempts > 0 {
		policy.ScopeFreeAttempts = map[AuthAbuseScope]int{AuthAbuseScopeVerify: cfg.AuthAbuseVerifyFreeAttempts}
	}
	return policy
}

func (g *InMemoryAuthAbuseGuard) Check(_ context.Context, scope AuthAbuseScope, identity, ip string) (time.Duration, error) {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	var longest time.Duration
	for _, dim := range abuseDimensions(identity, ip) {
		longest = max(longest, g.activeCooldownLocked(now, g.stateKey(scope, dim)))
	}
	return longest, nil
}

func (g *InMemoryAuthAbuseGuard) RegisterFailure(_ context.Context, scope AuthAbuseScope, identity, ip string) (time.Duration, error) {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	var longest time.Duration
	for _, dim := range abuseDimensions(identity, ip) {
		longest = max(longest, g.bumpLocked(now, scope, g.stateKey(scope, dim)))
	}
	return longest, nil
}

func (g *InMemoryAuthAbuseGuard) Reset(_ context.Context, scope AuthAbuseScope, identity, ip string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, dim := range abuseDimensions(identity, ip) {
		delete(g.data, g.stateKey(scope, dim))
	}
	return nil
}

func (g *InMemoryAuthAbuseGuard) bumpLocked(now time.Time, scope AuthAbuseScope, key string) time.Duration {
	entry := g.data[key]
	if entry.LastFailureAt.IsZero() || now.Sub(entry.LastFailureAt) > g.policy.ResetWindow {
		entry.FailCount = 0
	}
	entry.FailCount++
	entry.LastFailureAt = now
	delay := abuseDelay(g.policy, g.policy.freeAttempts(scope), entry.FailCount)
	entry.CooldownUntil = now.Add(delay)
	g.data[key] = entry
	return delay
}

func (g *InMemoryAuthAbuseGuard) activeCooldownLocked(now time.Time, key string) time.Duration {
	entry, ok := g.data[key]
	if !ok {
		return 0
	}
	if now.Sub(entry.LastFailureAt) > g.policy.ResetWindow {
		delete(g.data, key)
		return 0
	}
	if now.After(entry.CooldownUntil) {
		return 0
	}
	return entry.CooldownUntil.Sub(now)
}

// abuseDelay is zero for the first free failures, then grows geometrically
// from BaseDelay and saturates at MaxDelay.
func abuseDelay(policy AuthAbusePolicy, free, failCount int) time.Duration {
	if failCount <= free {
		return 0
	}
	power := math.Pow(policy.Multiplier, float64(failCount-free-1))
	delay := float64(policy.BaseDelay) * power
	if delay > float64(policy.MaxDelay) || math.IsInf(delay, 1) {
		return policy.MaxDelay
	}
	return time.Duration(delay)
}

func (g *InMemoryAuthAbuseGuard) stateKey(scope AuthAbuseScope, dim abuseDimension) string {
	return fmt.Sprintf("%s:%s:%s", scope, dim.name, dim.value)
}

// Identities are lower-cased here even though account lookups are
// case-sensitive, so "Ann@x.edu" and "ann@x.edu" share one budget.
func normalizeAuthIdentity(identity string) string {
	v := strings.TrimSpace(strings.ToLower(identity))
	if v == "" {
		return "anonymous"
	}
	return v
}

func normalizeAuthIP(ip string) string {
	v := strings.TrimSpace(strings.ToLower(ip))
	if v == "" {
		return "unknown"
	}
	return v
}

func normalizeAuthAbusePolicy(policy AuthAbusePolicy) AuthAbusePolicy {
	if policy.FreeAttempts < 0 {
		policy.FreeAttempts = 0
	}
	if len(policy.ScopeFreeAttempts) > 0 {
		scoped := make(map[AuthAbuseScope]int, len(policy.ScopeFreeAttempts))
		for scope, n := range policy.ScopeFreeAttempts {
			scoped[scope] = max(n, 0)
		}
		policy.ScopeFreeAttempts = scoped
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 2 * time.Second
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = 5 * time.Minute
	}
	if policy.ResetWindow <= 0 {
		policy.ResetWindow = 30 * time.Minute
	}
	return policy
}
