package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// Pinger is implemented by route providers backed by an external store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderCheck reports whether the route provider's backing store is
// reachable.
func ProviderCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) Check {
		if err := p.Ping(ctx); err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Status: StatusHealthy}
	}
}

// RedisCheck pings a Redis client directly.
func RedisCheck(client redis.UniversalClient) CheckFunc {
	return func(ctx context.Context) Check {
		if err := client.Ping(ctx).Err(); err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Status: StatusHealthy}
	}
}

// BreakerCheck reports degraded while a circuit breaker is open or
// half-open. The service still serves from whatever the resolver can
// reach, so an open breaker is not a readiness failure.
func BreakerCheck(breaker interface{ State() gobreaker.State }) CheckFunc {
	return func(ctx context.Context) Check {
		state := breaker.State()
		if state == gobreaker.StateClosed {
			return Check{Status: StatusHealthy}
		}
		return Check{Status: StatusDegraded, Message: "circuit breaker " + state.String()}
	}
}

// TCPCheck dials a TCP address.
func TCPCheck(addr string, timeout time.Duration) CheckFunc {
	return func(ctx context.Context) Check {
		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		_ = conn.Close()
		return Check{Status: StatusHealthy}
	}
}

// HTTPCheck performs a GET against a URL and expects a 2xx answer.
func HTTPCheck(url string, client *http.Client) CheckFunc {
	if client == nil {
		client = &http.Client{Timeout: DefaultCheckTimeout}
	}

	return func(ctx context.Context) Check {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}

		resp, err := client.Do(req)
		if err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return Check{Status: StatusUnhealthy, Message: resp.Status}
		}
		return Check{Status: StatusHealthy}
	}
}
