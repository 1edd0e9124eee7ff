package weave

import (
	"fmt"
)

// Query modifiers, passed after "?" in the query path.
const (
	KeyQueryMod    = ""
	PrefixQueryMod = "prefix"
)

// QueryHandler answers queries on one path. Data is a key, or a key prefix
// with PrefixQueryMod, and the handler returns the matching records.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRouter maps query paths such as "/proxy/view" to their handlers.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

// Register panics if path already has a handler.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, taken := r.routes[path]; taken {
		panic(fmt.Sprintf("Re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns nil for unknown paths.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
