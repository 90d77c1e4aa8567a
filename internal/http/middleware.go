package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/mylist-service/internal/apperror"
	"github.com/tazhibayda/mylist-service/internal/log"
	"github.com/tazhibayda/mylist-service/internal/metrics"
	"github.com/tazhibayda/mylist-service/internal/security"
	"github.com/tazhibayda/mylist-service/internal/service"
	"github.com/tazhibayda/mylist-service/internal/session"
)

const (
	requestIDKey  = "request_id"
	claimsKey     = "claims"
	requestHeader = "X-Request-ID"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestHeader, id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.InFlight.Inc()
		defer metrics.InFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithDD(c.Request.Context(), logger).Info("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// RequireAccess admits requests carrying a valid access token, taken from the
// access cookie or an Authorization bearer header. Expired and invalid tokens
// get distinct error codes so clients know whether to try /refresh.
func RequireAccess(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := session.Token(c.Request, session.AccessCookie)
		if tok == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(strings.ToLower(h), "bearer ") {
				tok = strings.TrimSpace(h[len("Bearer "):])
			}
		}
		claims, err := auth.Authenticate(tok)
		if err != nil {
			abortWithError(c, logger, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireOwner lets a caller reach /profiles/:userId only for their own id,
// unless their role is admin.
func RequireOwner(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			abortWithError(c, logger, apperror.Token(apperror.ReasonAbsent))
			return
		}
		if claims.UID == c.Param("userId") {
			c.Next()
			return
		}
		uid, err := primitive.ObjectIDFromHex(claims.UID)
		if err != nil {
			abortWithError(c, logger, apperror.Token(apperror.ReasonInvalid))
			return
		}
		caller, err := auth.FindUser(c.Request.Context(), uid)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			abortWithError(c, logger, err)
			return
		}
		if caller == nil || !caller.IsAdmin() {
			abortWithError(c, logger, apperror.Forbidden("not allowed to access this user's profiles"))
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *security.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	cl, _ := v.(*security.Claims)
	return cl
}

// RateLimiter decides whether another request for key fits in the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit guards credential endpoints per client IP. A limiter failure lets
// the request through.
func RateLimit(rl RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		ok, err := rl.Allow(c.Request.Context(), c.FullPath()+":"+ClientIP(c))
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
		} else if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResp{Error: "rate_limited", Message: "too many requests"})
			return
		}
		c.Next()
	}
}

type bucket struct {
	tokens  int
	updated time.Time
}

// sweepAbove is the bucket count past which expired windows are evicted.
const sweepAbove = 1024

// MemoryLimiter is a per-process fixed-window limiter used when no Redis is configured.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      int
	window    time.Duration
	sweepAt   int
	lastSweep time.Time
}

func NewMemoryLimiter(rate int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*bucket), rate: rate, window: window, sweepAt: sweepAbove}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweep(now)
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.updated) > rl.window {
		rl.buckets[key] = &bucket{tokens: 1, updated: now}
		return true, nil
	}
	if b.tokens < rl.rate {
		b.tokens++
		return true, nil
	}
	return false, nil
}

// sweep drops expired buckets once the map is large, at most once per window.
// Callers hold rl.mu.
func (rl *MemoryLimiter) sweep(now time.Time) {
	if len(rl.buckets) < rl.sweepAt || now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now
	for k, b := range rl.buckets {
		if now.Sub(b.updated) > rl.window {
			delete(rl.buckets, k)
		}
	}
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}
	return ip
}
