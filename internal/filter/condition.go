package filter

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/route"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// ConditionFilter evaluates each candidate's CEL condition against the
// request. Routes without a condition always pass; routes whose
// condition evaluates to false are dropped. Compiled programs are
// cached per expression.
//
// Expressions see the variables method, path, host, scheme, query and
// headers, e.g.:
//
//	method == "GET" && headers["x-api-version"] == "2"
type ConditionFilter struct {
	env    *cel.Env
	logger observability.Logger

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// ConditionOption is a functional option for the condition filter.
type ConditionOption func(*ConditionFilter)

// WithConditionLogger sets the logger.
func WithConditionLogger(logger observability.Logger) ConditionOption {
	return func(f *ConditionFilter) {
		f.logger = logger
	}
}

// NewConditionFilter creates a new condition filter.
func NewConditionFilter(opts ...ConditionOption) (*ConditionFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("method", cel.StringType),
		cel.Variable("path", cel.StringType),
		cel.Variable("host", cel.StringType),
		cel.Variable("scheme", cel.StringType),
		cel.Variable("query", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("headers", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, util.WrapError(err, "failed to create CEL environment")
	}

	f := &ConditionFilter{
		env:      env,
		logger:   observability.NopLogger(),
		programs: make(map[string]cel.Program),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Name implements resolver.Filter.
func (f *ConditionFilter) Name() string {
	return "condition"
}

// Filter implements resolver.Filter.
func (f *ConditionFilter) Filter(_ context.Context, candidates []*route.Route, req *http.Request) ([]*route.Route, error) {
	activation := buildActivation(req)

	kept := make([]*route.Route, 0, len(candidates))
	for _, r := range candidates {
		if r.Condition == "" {
			kept = append(kept, r)
			continue
		}

		ok, err := f.evaluate(r, activation)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, r)
		}
	}

	if len(kept) == 0 {
		return nil, exhausted(req, f.Name())
	}
	return kept, nil
}

// evaluate runs one route's condition. Compile and evaluation failures
// surface as route definition errors: the route is broken, not merely
// unmatched.
func (f *ConditionFilter) evaluate(r *route.Route, activation map[string]any) (bool, error) {
	prg, err := f.programFor(r)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(activation)
	if err != nil {
		return false, util.NewRouteDefinitionErrorWithCause(r.Name, "condition", "condition evaluation failed", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, util.NewRouteDefinitionError(r.Name, "condition", "condition did not evaluate to a boolean")
	}

	f.logger.Debug("condition evaluated",
		observability.String("route", r.Name),
		observability.Bool("result", result),
	)

	return result, nil
}

// programFor returns the compiled program for a route's condition,
// compiling and caching it on first use.
func (f *ConditionFilter) programFor(r *route.Route) (cel.Program, error) {
	f.mu.RLock()
	prg, ok := f.programs[r.Condition]
	f.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := f.env.Compile(r.Condition)
	if issues != nil && issues.Err() != nil {
		return nil, util.NewRouteDefinitionErrorWithCause(r.Name, "condition", "condition compile failed", issues.Err())
	}

	prg, err := f.env.Program(ast)
	if err != nil {
		return nil, util.NewRouteDefinitionErrorWithCause(r.Name, "condition", "condition program creation failed", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.programs[r.Condition]; ok {
		return existing, nil
	}
	f.programs[r.Condition] = prg
	return prg, nil
}

// buildActivation flattens the request into the CEL variable set.
// Multi-valued query parameters and headers keep their first value;
// header names are lowercased.
func buildActivation(req *http.Request) map[string]any {
	query := make(map[string]string)
	for k, vs := range req.URL.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}

	headers := make(map[string]string)
	for k, vs := range req.Header {
		if len(vs) > 0 {
			headers[strings.ToLower(k)] = vs[0]
		}
	}

	return map[string]any{
		"method":  req.Method,
		"path":    req.URL.Path,
		"host":    requestHost(req),
		"scheme":  requestScheme(req),
		"query":   query,
		"headers": headers,
	}
}
