package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"aboutsettings/internal/log"
	"aboutsettings/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClaimsKey is the gin context key holding validated token claims
const ClaimsKey = "claims"

// Idle per-IP limiters are dropped once the table grows past
// maxTrackedClients.
const (
	maxTrackedClients = 1024
	limiterIdleTTL    = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements token bucket rate limiting per IP
type RateLimiter struct {
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
	mu       sync.Mutex
}

// NewRateLimiter creates a rate limiter allowing rps requests per second
// per IP with the given burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if entry, exists := rl.limiters[ip]; exists {
		entry.lastSeen = now
		return entry.limiter
	}

	if len(rl.limiters) >= maxTrackedClients {
		rl.pruneLocked(now)
	}

	entry := &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst), lastSeen: now}
	rl.limiters[ip] = entry
	return entry.limiter
}

// pruneLocked drops limiters idle for longer than limiterIdleTTL.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(rl.limiters, ip)
		}
	}
}

// Len returns the number of tracked client IPs
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			log.Warn().Str("ip", ip).Msg("[SECURITY] Rate limit exceeded")
			rateLimitRejects.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 1,
			})
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Cache-Control", "no-store")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// BearerAuth requires a valid token in the Authorization header. A nil
// auth service disables the check.
func BearerAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			log.Warn().Str("ip", c.ClientIP()).Msg("[SECURITY] Missing bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required in Authorization header"})
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			log.Warn().Str("ip", c.ClientIP()).Err(err).Msg("[SECURITY] Failed authentication")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// IPAllowList restricts access to listed IPs
type IPAllowList struct {
	ips map[string]bool
}

// NewIPAllowList creates an allow list. An empty list allows everyone.
func NewIPAllowList(ips []string) *IPAllowList {
	wl := &IPAllowList{ips: make(map[string]bool)}
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			wl.ips[ip] = true
		}
	}
	return wl
}

// IsAllowed checks if an IP is allowed
func (wl *IPAllowList) IsAllowed(ip string) bool {
	// Allow localhost always
	if ip == "127.0.0.1" || ip == "::1" || ip == "localhost" {
		return true
	}

	if len(wl.ips) == 0 {
		return true
	}

	// Strip port from IP if present
	ipOnly, _, _ := net.SplitHostPort(ip)
	if ipOnly == "" {
		ipOnly = ip
	}

	return wl.ips[ipOnly]
}

// IPAllowListMiddleware rejects clients not on the allow list
func IPAllowListMiddleware(allow *IPAllowList) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !allow.IsAllowed(ip) {
			log.Warn().Str("ip", ip).Msg("[SECURITY] Access denied for IP not on allow list")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}
