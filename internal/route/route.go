// Package route defines the route record resolved by the engine and the
// validation rules that keep providers honest.
package route

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Route represents a named routing rule. Providers store and serve these
// records; filters and matchers read the match criteria; the resolved
// attribute map is seeded from Defaults.
type Route struct {
	// Name uniquely identifies the route within a provider.
	Name string `yaml:"name" json:"name"`

	// Path is the path pattern: exact, with {param} segments, or with
	// * / ** wildcards. Mutually exclusive with PathRegex.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// PathRegex is an anchored regular expression matched against the
	// request path. Named groups become path parameters.
	PathRegex string `yaml:"pathRegex,omitempty" json:"pathRegex,omitempty"`

	// Methods restricts the HTTP methods. Empty means any method.
	Methods []string `yaml:"methods,omitempty" json:"methods,omitempty"`

	// Hosts restricts the request host. Entries are exact hostnames or
	// wildcard patterns such as "*.example.com". Empty means any host.
	Hosts []string `yaml:"hosts,omitempty" json:"hosts,omitempty"`

	// Schemes restricts the request scheme (http, https). Empty means
	// any scheme.
	Schemes []string `yaml:"schemes,omitempty" json:"schemes,omitempty"`

	// Headers lists header constraints that must all hold.
	Headers []HeaderMatch `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Condition is an optional CEL expression over the request. Routes
	// whose condition evaluates to false are dropped during filtering.
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`

	// Priority orders candidates; higher values are tried first.
	Priority int `yaml:"priority,omitempty" json:"priority,omitempty"`

	// Defaults seeds the resolved attribute map, e.g. the handler name.
	Defaults map[string]any `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// Metadata carries opaque data that is never interpreted by the
	// resolution pipeline.
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// HeaderMatch represents a header constraint on a route.
type HeaderMatch struct {
	Name    string `yaml:"name" json:"name"`
	Exact   string `yaml:"exact,omitempty" json:"exact,omitempty"`
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Regex   string `yaml:"regex,omitempty" json:"regex,omitempty"`
	Present *bool  `yaml:"present,omitempty" json:"present,omitempty"`
	Absent  *bool  `yaml:"absent,omitempty" json:"absent,omitempty"`
}

// HasMatchCriteria returns true if the route constrains at least one
// request property.
func (r *Route) HasMatchCriteria() bool {
	return r.Path != "" || r.PathRegex != "" ||
		len(r.Methods) > 0 || len(r.Hosts) > 0 ||
		len(r.Schemes) > 0 || len(r.Headers) > 0 ||
		r.Condition != ""
}

// HasPathParams returns true if the path pattern contains {param}
// segments.
func (r *Route) HasPathParams() bool {
	return strings.Contains(r.Path, "{")
}

// HasWildcard returns true if the path pattern contains * or **
// wildcards.
func (r *Route) HasWildcard() bool {
	return strings.Contains(r.Path, "*")
}

// String returns a short description for logs.
func (r *Route) String() string {
	pattern := r.Path
	if pattern == "" {
		pattern = r.PathRegex
	}
	return fmt.Sprintf("%s (%s, priority=%d)", r.Name, pattern, r.Priority)
}

// Clone returns a deep copy of the route.
func (r *Route) Clone() *Route {
	clone := *r

	if r.Methods != nil {
		clone.Methods = append([]string(nil), r.Methods...)
	}
	if r.Hosts != nil {
		clone.Hosts = append([]string(nil), r.Hosts...)
	}
	if r.Schemes != nil {
		clone.Schemes = append([]string(nil), r.Schemes...)
	}
	if r.Headers != nil {
		clone.Headers = make([]HeaderMatch, len(r.Headers))
		copy(clone.Headers, r.Headers)
	}
	if r.Defaults != nil {
		clone.Defaults = make(map[string]any, len(r.Defaults))
		for k, v := range r.Defaults {
			clone.Defaults[k] = v
		}
	}
	if r.Metadata != nil {
		clone.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}

// Validate checks the route definition and returns a
// util.RouteDefinitionError describing the first problem found.
func (r *Route) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return util.NewRouteDefinitionError(r.Name, "name", "name cannot be empty")
	}

	if !r.HasMatchCriteria() {
		return util.NewRouteDefinitionError(r.Name, "", "route has no match criteria")
	}

	if r.Path != "" && r.PathRegex != "" {
		return util.NewRouteDefinitionError(r.Name, "path", "path and pathRegex are mutually exclusive")
	}

	if r.Path != "" {
		if !strings.HasPrefix(r.Path, "/") {
			return util.NewRouteDefinitionError(r.Name, "path", "path must start with /")
		}
		if err := validatePathParams(r.Path); err != nil {
			return util.NewRouteDefinitionErrorWithCause(r.Name, "path", "invalid parameter syntax", err)
		}
	}

	if r.PathRegex != "" {
		if err := util.ValidateRegex(r.PathRegex); err != nil {
			return util.NewRouteDefinitionErrorWithCause(r.Name, "pathRegex", "invalid pattern", err)
		}
	}

	for _, m := range r.Methods {
		if err := util.ValidateHTTPMethod(m); err != nil {
			return util.NewRouteDefinitionErrorWithCause(r.Name, "methods", "invalid method", err)
		}
	}

	for _, h := range r.Hosts {
		if err := util.ValidateHostname(h); err != nil {
			return util.NewRouteDefinitionErrorWithCause(r.Name, "hosts", "invalid host pattern", err)
		}
	}

	for _, s := range r.Schemes {
		if err := util.ValidateScheme(s); err != nil {
			return util.NewRouteDefinitionErrorWithCause(r.Name, "schemes", "invalid scheme", err)
		}
	}

	for i, h := range r.Headers {
		if err := h.validate(); err != nil {
			return util.NewRouteDefinitionErrorWithCause(r.Name, fmt.Sprintf("headers[%d]", i), "invalid header constraint", err)
		}
	}

	return nil
}

func (h *HeaderMatch) validate() error {
	if err := util.ValidateHeaderName(h.Name); err != nil {
		return err
	}

	kinds := 0
	if h.Exact != "" {
		kinds++
	}
	if h.Prefix != "" {
		kinds++
	}
	if h.Regex != "" {
		kinds++
	}
	if kinds > 1 {
		return fmt.Errorf("header %s: exact, prefix and regex are mutually exclusive", h.Name)
	}

	if h.Regex != "" {
		if err := util.ValidateRegex(h.Regex); err != nil {
			return err
		}
	}

	if h.Present != nil && h.Absent != nil && *h.Present && *h.Absent {
		return fmt.Errorf("header %s: cannot be both present and absent", h.Name)
	}

	return nil
}

// validatePathParams checks that {param} segments are well formed.
func validatePathParams(path string) error {
	for _, segment := range strings.Split(path, "/") {
		open := strings.Count(segment, "{")
		closed := strings.Count(segment, "}")
		if open != closed {
			return fmt.Errorf("unbalanced braces in segment %q", segment)
		}
		if open > 1 {
			return fmt.Errorf("multiple parameters in segment %q", segment)
		}
		if open == 1 {
			start := strings.Index(segment, "{")
			end := strings.Index(segment, "}")
			if end < start {
				return fmt.Errorf("malformed parameter in segment %q", segment)
			}
			if name := segment[start+1 : end]; name == "" {
				return fmt.Errorf("empty parameter name in segment %q", segment)
			}
		}
	}
	return nil
}

// ValidateAll validates a route list and checks name uniqueness.
func ValidateAll(routes []*Route) error {
	seen := make(map[string]struct{}, len(routes))

	for _, r := range routes {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.Name]; dup {
			return util.NewRouteDefinitionError(r.Name, "name", "duplicate route name")
		}
		seen[r.Name] = struct{}{}
	}

	return nil
}
