package config

import (
    "strings"
    "time"
)

// Rate limit scopes.  ScopeUpstream only guards the routes that call the
// movie catalog (/add and /upload); ScopeAll guards every page.
const (
    ScopeAll      = "all"
    ScopeUpstream = "upstream"
)

// RateLimitConfig drives the Redis token bucket placed in front of the
// HTTP routes.  A client (keyed by KeyStrategy) may burst Capacity
// requests and regains RefillTokens every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Scope          string
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string // ip, route or ip_route
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables and clamps them to
// usable values.
func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Scope:          strings.ToLower(envStr("RATE_LIMIT_SCOPE", ScopeUpstream)),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 2*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    strings.ToLower(envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route")),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "movies:rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if rl.Scope != ScopeAll { rl.Scope = ScopeUpstream }
    if rl.Capacity < 1 { rl.Capacity = 1 }
    if rl.RefillTokens < 1 { rl.RefillTokens = 1 }
    if rl.RefillInterval <= 0 { rl.RefillInterval = time.Second }
    // the bucket must outlive a full refill cycle
    if minTTL := time.Duration(rl.Capacity) * rl.RefillInterval; rl.TTL < minTTL {
        rl.TTL = minTTL
    }
    return rl
}
