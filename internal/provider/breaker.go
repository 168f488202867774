package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/resolver"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Breaker defaults, matching the gateway's middleware settings.
const (
	defaultBreakerThreshold = uint32(5)
	defaultBreakerTimeout   = 30 * time.Second
)

// BreakerProvider decorates a provider with a circuit breaker so a
// failing backing store sheds load instead of stalling every request.
// No-route and unknown-name results are successes as far as the
// breaker is concerned; only provider failures trip it.
type BreakerProvider struct {
	inner  resolver.Provider
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger

	name      string
	threshold uint32
	timeout   time.Duration
}

// BreakerOption is a functional option for the breaker provider.
type BreakerOption func(*BreakerProvider)

// WithBreakerLogger sets the logger.
func WithBreakerLogger(logger observability.Logger) BreakerOption {
	return func(p *BreakerProvider) {
		p.logger = logger
	}
}

// WithBreakerName sets the breaker name used in logs.
func WithBreakerName(name string) BreakerOption {
	return func(p *BreakerProvider) {
		p.name = name
	}
}

// WithBreakerThreshold sets the request count required before the
// failure ratio can trip the breaker.
func WithBreakerThreshold(threshold uint32) BreakerOption {
	return func(p *BreakerProvider) {
		p.threshold = threshold
	}
}

// WithBreakerTimeout sets how long the breaker stays open before
// probing again.
func WithBreakerTimeout(timeout time.Duration) BreakerOption {
	return func(p *BreakerProvider) {
		p.timeout = timeout
	}
}

// NewBreakerProvider wraps a provider with a circuit breaker.
func NewBreakerProvider(inner resolver.Provider, opts ...BreakerOption) *BreakerProvider {
	p := &BreakerProvider{
		inner:     inner,
		logger:    observability.NopLogger(),
		name:      "provider",
		threshold: defaultBreakerThreshold,
		timeout:   defaultBreakerTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	settings := gobreaker.Settings{
		Name:        p.name,
		MaxRequests: p.threshold,
		Interval:    p.timeout,
		Timeout:     p.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= p.threshold && failureRatio >= 0.5
		},
		IsSuccessful: func(err error) bool {
			// Empty results and unknown names are valid answers, not
			// store failures.
			return err == nil || util.IsNoRoute(err) || util.IsNotFound(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			p.logger.Info("provider circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
	}

	p.cb = gobreaker.NewCircuitBreaker(settings)
	return p
}

// State returns the breaker state.
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

// CandidatesFor implements resolver.Provider.
func (p *BreakerProvider) CandidatesFor(ctx context.Context, req *http.Request) ([]*route.Route, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.inner.CandidatesFor(ctx, req)
	})
	if err != nil {
		return nil, p.translate(err)
	}

	candidates, _ := result.([]*route.Route)
	return candidates, nil
}

// RouteByName implements resolver.Provider.
func (p *BreakerProvider) RouteByName(ctx context.Context, name string) (*route.Route, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.inner.RouteByName(ctx, name)
	})
	if err != nil {
		return nil, p.translate(err)
	}

	r, _ := result.(*route.Route)
	return r, nil
}

// translate maps breaker rejections to the provider error taxonomy
// and passes everything else through unchanged.
func (p *BreakerProvider) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		p.logger.Warn("provider circuit breaker rejected call",
			observability.String("name", p.name),
			observability.String("state", p.cb.State().String()),
		)
		return util.NewProviderErrorWithCause(p.name, "circuit breaker open", err)
	}
	return err
}
