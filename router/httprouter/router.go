// Package httprouter implements router.Router on julienschmidt/httprouter.
package httprouter

import (
	"context"
	"net/http"

	"github.com/caasmo/accounts/router"
	jshttprouter "github.com/julienschmidt/httprouter"
)

type Router struct {
	rt *jshttprouter.Router
}

func New() *Router {
	rt := jshttprouter.New()
	rt.HandleMethodNotAllowed = false
	return &Router{rt: rt}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

func (r *Router) Handle(method, path string, handler http.Handler) {
	r.rt.Handler(method, path, handler)
}

func (r *Router) NotFound(handler http.Handler) {
	r.rt.NotFound = handler
}

type jsParams struct{}

// Get reads the params httprouter stores in the request context.
func (js *jsParams) Get(ctx context.Context) router.Params {
	pms, _ := ctx.Value(jshttprouter.ParamsKey).(jshttprouter.Params)

	params := make(router.Params, 0, len(pms))
	for _, v := range pms {
		params = append(params, router.Param{Key: v.Key, Value: v.Value})
	}
	return params
}

func NewParamGeter() router.ParamGeter {
	return &jsParams{}
}
