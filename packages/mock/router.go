package mock

import (
	"regexp"
	"strings"
)

// Route represents a mock route
type Route struct {
	Method      string
	PathPattern string
	PathRegex   *regexp.Regexp
	Name        string
	Handler     ResponseFunc
}

// ResponseFunc builds a response body from the captured path parameters
// and query values.
type ResponseFunc func(params map[string]string, query map[string]string) *MockResponse

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Router matches incoming requests to routes
type Router struct {
	routes []*Route
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// Handle registers a route. Path segments written as {name} are captured.
func (r *Router) Handle(method, pattern, name string, fn ResponseFunc) {
	r.routes = append(r.routes, &Route{
		Method:      method,
		PathPattern: pattern,
		PathRegex:   createPathRegex(pattern),
		Name:        name,
		Handler:     fn,
	})
}

// Match finds a route matching the given method and path
func (r *Router) Match(method, path string) (*Route, map[string]string) {
	path = normalizePath(path)

	for _, route := range r.routes {
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		if params := matchPath(route, path); params != nil {
			return route, params
		}
	}

	return nil, nil
}

// Routes returns all registered routes
func (r *Router) Routes() []*Route {
	return r.routes
}

func createPathRegex(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(pattern)
	// QuoteMeta escapes the braces, so match the escaped form
	expr := regexp.MustCompile(`\\\{(\w+)\\\}`).ReplaceAllString(quoted, `(?P<$1>[^/]+)`)
	return regexp.MustCompile("^" + expr + "$")
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// Remove trailing slash (except for root)
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

func matchPath(route *Route, path string) map[string]string {
	matches := route.PathRegex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}

	params := make(map[string]string)
	for i, name := range route.PathRegex.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = matches[i]
		}
	}
	return params
}
