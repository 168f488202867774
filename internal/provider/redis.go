package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Default key layout: records live under <prefix>route:<name>, the
// name set under <prefix>routes.
const (
	defaultKeyPrefix = "avrouter:"
	routeKeyPart     = "route:"
	routeSetPart     = "routes"
)

// RedisProvider serves routes stored as JSON values in Redis, letting
// several instances share one route table. It does no local caching;
// every CandidatesFor call reads the current table.
type RedisProvider struct {
	client    *redis.Client
	keyPrefix string
	logger    observability.Logger
}

// RedisOption is a functional option for the Redis provider.
type RedisOption func(*RedisProvider)

// WithRedisLogger sets the logger.
func WithRedisLogger(logger observability.Logger) RedisOption {
	return func(p *RedisProvider) {
		p.logger = logger
	}
}

// WithKeyPrefix overrides the default key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(p *RedisProvider) {
		p.keyPrefix = prefix
	}
}

// NewRedisProvider creates a provider on an existing Redis client. The
// caller owns the client's lifecycle unless Close is used.
func NewRedisProvider(client *redis.Client, opts ...RedisOption) *RedisProvider {
	p := &RedisProvider{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		logger:    observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *RedisProvider) routeKey(name string) string {
	return p.keyPrefix + routeKeyPart + name
}

func (p *RedisProvider) setKey() string {
	return p.keyPrefix + routeSetPart
}

// Add validates and stores a route, overwriting any record with the
// same name.
func (p *RedisProvider) Add(ctx context.Context, r *route.Route) error {
	if err := r.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return util.NewProviderErrorWithCause("redis", "failed to encode route", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.routeKey(r.Name), data, 0)
	pipe.SAdd(ctx, p.setKey(), r.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return util.NewProviderErrorWithCause("redis", "failed to store route", err)
	}

	p.logger.Debug("route stored", observability.String("route", r.Name))
	return nil
}

// Remove deletes a route by name.
func (p *RedisProvider) Remove(ctx context.Context, name string) error {
	pipe := p.client.TxPipeline()
	delCmd := pipe.Del(ctx, p.routeKey(name))
	pipe.SRem(ctx, p.setKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return util.NewProviderErrorWithCause("redis", "failed to delete route", err)
	}

	if delCmd.Val() == 0 {
		return util.NewUnknownRouteError(name)
	}
	return nil
}

// Load atomically replaces the whole route table.
func (p *RedisProvider) Load(ctx context.Context, routes []*route.Route) error {
	if err := route.ValidateAll(routes); err != nil {
		return err
	}

	existing, err := p.client.SMembers(ctx, p.setKey()).Result()
	if err != nil {
		return util.NewProviderErrorWithCause("redis", "failed to list routes", err)
	}

	pipe := p.client.TxPipeline()
	for _, name := range existing {
		pipe.Del(ctx, p.routeKey(name))
	}
	pipe.Del(ctx, p.setKey())

	for _, r := range routes {
		data, err := json.Marshal(r)
		if err != nil {
			return util.NewProviderErrorWithCause("redis", "failed to encode route", err)
		}
		pipe.Set(ctx, p.routeKey(r.Name), data, 0)
		pipe.SAdd(ctx, p.setKey(), r.Name)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return util.NewProviderErrorWithCause("redis", "failed to load routes", err)
	}

	p.logger.Info("route table loaded", observability.Int("routes", len(routes)))
	return nil
}

// CandidatesFor implements resolver.Provider. The full table is read
// with one SMEMBERS plus one MGET; records are ordered by priority
// descending with name breaking ties so the order is deterministic
// across instances.
func (p *RedisProvider) CandidatesFor(ctx context.Context, _ *http.Request) ([]*route.Route, error) {
	names, err := p.client.SMembers(ctx, p.setKey()).Result()
	if err != nil {
		return nil, util.NewProviderErrorWithCause("redis", "failed to list routes", err)
	}
	if len(names) == 0 {
		return []*route.Route{}, nil
	}

	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, p.routeKey(name))
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, util.NewProviderErrorWithCause("redis", "failed to fetch routes", err)
	}

	candidates := make([]*route.Route, 0, len(values))
	for i, v := range values {
		if v == nil {
			// Name set and record diverged, e.g. a concurrent delete.
			p.logger.Warn("route record missing", observability.String("route", names[i]))
			continue
		}

		raw, ok := v.(string)
		if !ok {
			return nil, util.NewProviderError("redis", "unexpected value type for route "+names[i])
		}

		r := &route.Route{}
		if err := json.Unmarshal([]byte(raw), r); err != nil {
			return nil, util.NewProviderErrorWithCause("redis", "failed to decode route "+names[i], err)
		}
		candidates = append(candidates, r)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Name < candidates[j].Name
	})

	return candidates, nil
}

// RouteByName implements resolver.Provider.
func (p *RedisProvider) RouteByName(ctx context.Context, name string) (*route.Route, error) {
	raw, err := p.client.Get(ctx, p.routeKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, util.NewUnknownRouteError(name)
		}
		return nil, util.NewProviderErrorWithCause("redis", "failed to fetch route "+name, err)
	}

	r := &route.Route{}
	if err := json.Unmarshal([]byte(raw), r); err != nil {
		return nil, util.NewProviderErrorWithCause("redis", "failed to decode route "+name, err)
	}
	return r, nil
}

// Ping checks the Redis connection, for health checks.
func (p *RedisProvider) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return util.NewProviderErrorWithCause("redis", "ping failed", err)
	}
	return nil
}

// Close closes the underlying client.
func (p *RedisProvider) Close() error {
	return p.client.Close()
}
