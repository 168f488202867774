package matcher

import (
	"regexp"
	"strings"
	"sync"

	"github.com/vyrodovalexey/avrouter/internal/route"
)

// PathMatcher is the interface for path matching.
type PathMatcher interface {
	Match(path string) (bool, map[string]string)
	Type() string
	Pattern() string
}

// ExactMatcher matches exact paths.
type ExactMatcher struct {
	path string
}

// NewExactMatcher creates a new exact path matcher.
func NewExactMatcher(path string) *ExactMatcher {
	return &ExactMatcher{path: path}
}

// Match checks if the path matches exactly.
func (m *ExactMatcher) Match(path string) (matched bool, params map[string]string) {
	return path == m.path, nil
}

// Type returns the matcher type.
func (m *ExactMatcher) Type() string {
	return "exact"
}

// Pattern returns the pattern.
func (m *ExactMatcher) Pattern() string {
	return m.path
}

// RegexMatcher matches paths using regular expressions.
type RegexMatcher struct {
	pattern string
	regex   *regexp.Regexp
}

// regexCacheMaxSize is the maximum number of entries in the regex cache.
const regexCacheMaxSize = 1000

// regexCacheEntry holds a compiled regex and its access order for LRU eviction.
type regexCacheEntry struct {
	regex       *regexp.Regexp
	accessOrder int64
}

// regexCache is a bounded LRU cache for compiled regular expressions.
var (
	regexCache         = make(map[string]*regexCacheEntry)
	regexCacheMu       sync.RWMutex
	regexAccessCounter int64
)

// NewRegexMatcher creates a new regex path matcher.
func NewRegexMatcher(pattern string) (*RegexMatcher, error) {
	regex, err := compileCached(pattern)
	if err != nil {
		return nil, err
	}

	return &RegexMatcher{
		pattern: pattern,
		regex:   regex,
	}, nil
}

// compileCached compiles a pattern through the bounded LRU cache.
func compileCached(pattern string) (*regexp.Regexp, error) {
	metrics := currentCacheMetrics()

	regexCacheMu.Lock()
	entry, ok := regexCache[pattern]
	if ok {
		// Cache hit: update access order for LRU tracking
		regexAccessCounter++
		entry.accessOrder = regexAccessCounter
		regexCacheMu.Unlock()

		metrics.RecordHit()

		return entry.regex, nil
	}
	regexCacheMu.Unlock()

	metrics.RecordMiss()

	// Compile the regex outside the lock (expensive operation)
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexCacheMu.Lock()
	// Double-check after acquiring lock (another goroutine may have added it)
	if existingEntry, exists := regexCache[pattern]; exists {
		regexAccessCounter++
		existingEntry.accessOrder = regexAccessCounter
		regexCacheMu.Unlock()
		return existingEntry.regex, nil
	}

	// Evict LRU entry if cache is at capacity
	if len(regexCache) >= regexCacheMaxSize {
		evictLRURegexEntry()
		metrics.RecordEviction()
	}

	regexAccessCounter++
	regexCache[pattern] = &regexCacheEntry{
		regex:       regex,
		accessOrder: regexAccessCounter,
	}
	metrics.SetSize(len(regexCache))
	regexCacheMu.Unlock()

	return regex, nil
}

// evictLRURegexEntry removes the least recently used entry from the cache.
// Must be called with regexCacheMu held.
func evictLRURegexEntry() {
	var lruKey string
	var lruOrder int64 = -1

	for key, entry := range regexCache {
		if lruOrder == -1 || entry.accessOrder < lruOrder {
			lruOrder = entry.accessOrder
			lruKey = key
		}
	}

	if lruKey != "" {
		delete(regexCache, lruKey)
	}
}

// Match checks if the path matches the regex.
func (m *RegexMatcher) Match(path string) (matched bool, params map[string]string) {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return false, nil
	}

	// Extract named groups
	params = make(map[string]string)
	for i, name := range m.regex.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			params[name] = matches[i]
		}
	}

	return true, params
}

// Type returns the matcher type.
func (m *RegexMatcher) Type() string {
	return "regex"
}

// Pattern returns the pattern.
func (m *RegexMatcher) Pattern() string {
	return m.pattern
}

// ParameterMatcher matches paths with parameters like /users/{id}.
type ParameterMatcher struct {
	pattern  string
	segments []segment
	regex    *regexp.Regexp
}

type segment struct {
	value     string
	isParam   bool
	paramName string
}

// NewParameterMatcher creates a new parameter path matcher.
func NewParameterMatcher(pattern string) (*ParameterMatcher, error) {
	segments := parsePathPattern(pattern)

	// Build regex from pattern
	var regexPattern strings.Builder
	regexPattern.WriteString("^")

	for _, seg := range segments {
		if seg.isParam {
			regexPattern.WriteString("/(?P<")
			regexPattern.WriteString(seg.paramName)
			regexPattern.WriteString(">[^/]+)")
		} else {
			regexPattern.WriteString("/")
			regexPattern.WriteString(regexp.QuoteMeta(seg.value))
		}
	}
	regexPattern.WriteString("$")

	regex, err := regexp.Compile(regexPattern.String())
	if err != nil {
		return nil, err
	}

	return &ParameterMatcher{
		pattern:  pattern,
		segments: segments,
		regex:    regex,
	}, nil
}

// parsePathPattern parses a path pattern into segments.
func parsePathPattern(pattern string) []segment {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	segments := make([]segment, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			paramName := part[1 : len(part)-1]
			segments = append(segments, segment{
				value:     part,
				isParam:   true,
				paramName: paramName,
			})
		} else {
			segments = append(segments, segment{
				value:   part,
				isParam: false,
			})
		}
	}

	return segments
}

// Match checks if the path matches the pattern and extracts parameters.
func (m *ParameterMatcher) Match(path string) (matched bool, params map[string]string) {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return false, nil
	}

	params = make(map[string]string)
	for i, name := range m.regex.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			params[name] = matches[i]
		}
	}

	return true, params
}

// Type returns the matcher type.
func (m *ParameterMatcher) Type() string {
	return "parameter"
}

// Pattern returns the pattern.
func (m *ParameterMatcher) Pattern() string {
	return m.pattern
}

// WildcardMatcher matches paths with wildcards (* and **).
type WildcardMatcher struct {
	pattern string
	regex   *regexp.Regexp
}

// NewWildcardMatcher creates a new wildcard path matcher.
func NewWildcardMatcher(pattern string) (*WildcardMatcher, error) {
	// Convert wildcard pattern to regex
	regexPattern := wildcardToRegex(pattern)

	regex, err := regexp.Compile(regexPattern)
	if err != nil {
		return nil, err
	}

	return &WildcardMatcher{
		pattern: pattern,
		regex:   regex,
	}, nil
}

// wildcardToRegex converts a wildcard pattern to a regex pattern.
func wildcardToRegex(pattern string) string {
	var result strings.Builder
	result.WriteString("^")

	i := 0
	for i < len(pattern) {
		switch {
		case i+1 < len(pattern) && pattern[i:i+2] == "**":
			result.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			result.WriteString("[^/]*")
			i++
		case pattern[i] == '?':
			result.WriteString("[^/]")
			i++
		default:
			result.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}

	result.WriteString("$")
	return result.String()
}

// Match checks if the path matches the wildcard pattern.
func (m *WildcardMatcher) Match(path string) (matched bool, params map[string]string) {
	return m.regex.MatchString(path), nil
}

// Type returns the matcher type.
func (m *WildcardMatcher) Type() string {
	return "wildcard"
}

// Pattern returns the pattern.
func (m *WildcardMatcher) Pattern() string {
	return m.pattern
}

// CompilePattern creates the path matcher for a route record. Routes
// without a path criterion return nil: they match any path and are
// constrained by other criteria only.
func CompilePattern(r *route.Route) (PathMatcher, error) {
	if r.PathRegex != "" {
		return NewRegexMatcher(r.PathRegex)
	}

	if r.Path == "" {
		return nil, nil
	}

	if r.HasPathParams() {
		return NewParameterMatcher(r.Path)
	}

	if r.HasWildcard() {
		return NewWildcardMatcher(r.Path)
	}

	return NewExactMatcher(r.Path), nil
}
