package httpapi

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/docroute/internal/ctxutil"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 30 * time.Minute
)

type actorLimiter struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	last    time.Time
}

// actorLimiters holds one token bucket per authenticated actor.
type actorLimiters struct {
	rps       rate.Limit
	burst     int
	limiters  sync.Map // map[string]*actorLimiter
	sweepOnce sync.Once
}

func newActorLimiters(rps float64, burst int) *actorLimiters {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst <= 0 {
		burst = 1
	}
	return &actorLimiters{rps: limit, burst: burst}
}

func (l *actorLimiters) allow(actor string) bool {
	v, ok := l.limiters.Load(actor)
	if !ok {
		v, _ = l.limiters.LoadOrStore(actor, &actorLimiter{limiter: rate.NewLimiter(l.rps, l.burst)})
		l.sweepOnce.Do(func() { go l.sweep() })
	}
	al := v.(*actorLimiter)
	al.mu.Lock()
	al.last = time.Now()
	al.mu.Unlock()
	return al.limiter.Allow()
}

// sweep drops limiters of actors idle for longer than limiterIdleTTL.
func (l *actorLimiters) sweep() {
	t := time.NewTicker(limiterSweepInterval)
	defer t.Stop()
	for range t.C {
		now := time.Now()
		l.limiters.Range(func(key, val any) bool {
			al := val.(*actorLimiter)
			al.mu.Lock()
			idle := now.Sub(al.last) > limiterIdleTTL
			al.mu.Unlock()
			if idle {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiters.allow(ctxutil.ActorFromContext(r.Context())) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
