package router

import (
	"net/http"
)

// Chain wraps a handler with middlewares.
type Chain struct {
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
}

func NewChain(h http.Handler) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{handler: h}
}

// WithMiddleware appends middlewares. The first added runs first:
// WithMiddleware(a, b) serves a(b(handler)).
func (c *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

func (c *Chain) Handler() http.Handler {
	h := c.handler
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}
