package httpapi

import (
	"sync"
	"time"
)

const (
	defaultRateWindow                = 30 * time.Second
	defaultMaxRequestsPerIPPerWindow = 6
)

// ipRateLimiter counts requests per client IP in fixed windows. Counters of past windows are dropped when a new window starts.
type ipRateLimiter struct {
	window        time.Duration
	limit         int
	now           func() time.Time
	mutex         sync.Mutex
	currentBucket int64
	countersByIP  map[string]int
}

func newIPRateLimiter(window time.Duration, limit int) *ipRateLimiter {
	if window <= 0 {
		window = defaultRateWindow
	}
	if limit <= 0 {
		limit = defaultMaxRequestsPerIPPerWindow
	}
	return &ipRateLimiter{
		window:       window,
		limit:        limit,
		now:          time.Now,
		countersByIP: make(map[string]int),
	}
}

func (limiter *ipRateLimiter) isRateLimited(ip string) bool {
	bucket := limiter.now().UnixNano() / int64(limiter.window)

	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()

	if bucket != limiter.currentBucket {
		limiter.currentBucket = bucket
		limiter.countersByIP = make(map[string]int)
	}
	limiter.countersByIP[ip]++
	return limiter.countersByIP[ip] > limiter.limit
}
