package resolver

import (
	"github.com/vyrodovalexey/avrouter/internal/route"
)

// Reserved attribute keys. AttrRoute holds either a route name (string)
// or a materialized *route.Route; AttrName holds the display name.
const (
	AttrRoute = "route"
	AttrName  = "name"
)

// Attributes is the result of a successful resolution: the route's
// default attributes merged with whatever the final matcher extracted
// from the request (path parameters, for the built-in matcher).
type Attributes map[string]any

// Name returns the value of the reserved name attribute, or "" when it
// is absent or not a string.
func (a Attributes) Name() string {
	if v, ok := a[AttrName].(string); ok {
		return v
	}
	return ""
}

// Route returns the materialized route record, or nil when the route
// attribute is absent or not materialized.
func (a Attributes) Route() *route.Route {
	if v, ok := a[AttrRoute].(*route.Route); ok {
		return v
	}
	return nil
}

// String returns the string value stored under key, or "" when absent
// or of another type.
func (a Attributes) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// StringParams returns all non-reserved string attributes. The built-in
// matcher stores extracted path parameters this way.
func (a Attributes) StringParams() map[string]string {
	params := make(map[string]string)
	for k, v := range a {
		if k == AttrRoute || k == AttrName {
			continue
		}
		if s, ok := v.(string); ok {
			params[k] = s
		}
	}
	return params
}

// Clone returns a shallow copy of the attribute map.
func (a Attributes) Clone() Attributes {
	clone := make(Attributes, len(a))
	for k, v := range a {
		clone[k] = v
	}
	return clone
}
