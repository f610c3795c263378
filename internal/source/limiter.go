package source

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces requests per hostname so paginated fetches stay polite
// toward each job board. All sources share one instance.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(reqPerSec),
		b:        burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.limiters[host] = lim
	return lim
}

// Wait blocks until the limiter for rawURL's host permits a request, or ctx
// is cancelled.
func (hl *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if hl == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil // unparsable URL: let the HTTP client report it
	}
	return hl.limiterFor(u.Hostname()).Wait(ctx)
}
