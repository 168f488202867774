// Package util provides utility functions and types for the route
// resolution engine.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNoRoute.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., NoRouteError, ProviderError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// All custom error types must implement:
//
//	Error() string           – human-readable message
//	Unwrap() error           – if the type wraps another error
//	Is(target error) bool    – for errors.Is() compatibility
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrNoRoute         = errors.New("no route found")
	ErrAmbiguousMatch  = errors.New("ambiguous route match")
	ErrInvalidRoute    = errors.New("invalid route definition")
	ErrProviderUnavailable = errors.New("route provider unavailable")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// NoRouteError indicates that resolution exhausted every candidate
// without producing a match.
type NoRouteError struct {
	Method string
	Path   string
	Stage  string
}

// Error implements the error interface.
func (e *NoRouteError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("no route found for %s %s (stage: %s)", e.Method, e.Path, e.Stage)
	}
	return fmt.Sprintf("no route found for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *NoRouteError) Is(target error) bool {
	if target == ErrNoRoute || target == ErrNotFound {
		return true
	}
	_, ok := target.(*NoRouteError)
	return ok
}

// NewNoRouteError creates a new NoRouteError.
func NewNoRouteError(method, path string) *NoRouteError {
	return &NoRouteError{Method: method, Path: path}
}

// NewNoRouteErrorAtStage creates a new NoRouteError attributed to a
// pipeline stage.
func NewNoRouteErrorAtStage(method, path, stage string) *NoRouteError {
	return &NoRouteError{Method: method, Path: path, Stage: stage}
}

// UnknownRouteError indicates a lookup for a route name that the
// provider does not know.
type UnknownRouteError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("route %q not found", e.Name)
}

// Is checks if the error matches the target.
func (e *UnknownRouteError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*UnknownRouteError)
	return ok
}

// NewUnknownRouteError creates a new UnknownRouteError.
func NewUnknownRouteError(name string) *UnknownRouteError {
	return &UnknownRouteError{Name: name}
}

// AmbiguousMatchError indicates that more than one route matched with
// equal precedence and the matcher was configured to reject ties.
type AmbiguousMatchError struct {
	Method string
	Path   string
	Names  []string
}

// Error implements the error interface.
func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match for %s %s: routes [%s]", e.Method, e.Path, strings.Join(e.Names, ", "))
}

// Is checks if the error matches the target.
func (e *AmbiguousMatchError) Is(target error) bool {
	if target == ErrAmbiguousMatch {
		return true
	}
	_, ok := target.(*AmbiguousMatchError)
	return ok
}

// NewAmbiguousMatchError creates a new AmbiguousMatchError.
func NewAmbiguousMatchError(method, path string, names []string) *AmbiguousMatchError {
	return &AmbiguousMatchError{Method: method, Path: path, Names: names}
}

// RouteDefinitionError indicates a malformed route record.
type RouteDefinitionError struct {
	Route   string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RouteDefinitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("route %q: invalid %s: %s", e.Route, e.Field, e.Message)
	}
	return fmt.Sprintf("route %q: %s", e.Route, e.Message)
}

// Unwrap returns the underlying error.
func (e *RouteDefinitionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *RouteDefinitionError) Is(target error) bool {
	if target == ErrInvalidRoute {
		return true
	}
	_, ok := target.(*RouteDefinitionError)
	return ok || errors.Is(e.Cause, target)
}

// NewRouteDefinitionError creates a new RouteDefinitionError.
func NewRouteDefinitionError(route, field, message string) *RouteDefinitionError {
	return &RouteDefinitionError{Route: route, Field: field, Message: message}
}

// NewRouteDefinitionErrorWithCause creates a new RouteDefinitionError
// with a cause.
func NewRouteDefinitionErrorWithCause(route, field, message string, cause error) *RouteDefinitionError {
	return &RouteDefinitionError{Route: route, Field: field, Message: message, Cause: cause}
}

// ProviderError represents a route provider connectivity error.
type ProviderError struct {
	Provider string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ProviderError) Is(target error) bool {
	if target == ErrProviderUnavailable {
		return true
	}
	_, ok := target.(*ProviderError)
	return ok || errors.Is(e.Cause, target)
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, message string) *ProviderError {
	return &ProviderError{Provider: provider, Message: message}
}

// NewProviderErrorWithCause creates a new ProviderError with a cause.
func NewProviderErrorWithCause(provider, message string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Cause: cause}
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNoRoute returns true if the error signals that no route matched.
func IsNoRoute(err error) bool {
	return errors.Is(err, ErrNoRoute)
}

// IsNotFound returns true if the error signals a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAmbiguousMatch returns true if the error signals a rejected tie.
func IsAmbiguousMatch(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// IsProviderUnavailable returns true if the error signals a provider
// outage rather than an empty result.
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// IsClientError returns true if the error maps to a client-side (4xx)
// condition.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotFound) {
		return true
	}

	if errors.Is(err, ErrInvalidInput) {
		return true
	}

	return false
}

// IsServerError returns true if the error maps to a server-side (5xx)
// condition.
func IsServerError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrProviderUnavailable) {
		return true
	}

	if errors.Is(err, ErrAmbiguousMatch) {
		return true
	}

	if errors.Is(err, ErrInvalidRoute) {
		return true
	}

	return false
}
