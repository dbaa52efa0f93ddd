// Package router abstracts the http router so handlers only see method,
// path and path parameters.
package router

import (
	"context"
	"net/http"
)

type Router interface {
	http.Handler
	Handle(method, path string, handler http.Handler)
	// NotFound sets the handler for unmatched requests.
	NotFound(handler http.Handler)
}

type Param struct {
	Key   string
	Value string
}

type Params []Param

// ByName returns the value of the first parameter named name.
func (ps Params) ByName(name string) string {
	for _, p := range ps {
		if p.Key == name {
			return p.Value
		}
	}
	return ""
}

// ParamGeter extracts path parameters stored in a request context by the
// router implementation.
type ParamGeter interface {
	Get(ctx context.Context) Params
}
