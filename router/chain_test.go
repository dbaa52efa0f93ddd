package router_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	rtr "github.com/caasmo/accounts/router"
)

func recordingMiddleware(name string, calls *[]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*calls = append(*calls, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChainMiddlewareOrder(t *testing.T) {
	var calls []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "handler")
		w.WriteHeader(http.StatusOK)
	})

	chain := rtr.NewChain(handler).
		WithMiddleware(recordingMiddleware("mw1", &calls), recordingMiddleware("mw2", &calls)).
		WithMiddleware(recordingMiddleware("mw3", &calls))

	rec := httptest.NewRecorder()
	chain.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	want := []string{"mw1", "mw2", "mw3", "handler"}
	if !slices.Equal(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestChainMiddlewareReturnEarly(t *testing.T) {
	var calls []string
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "deny")
			w.WriteHeader(http.StatusForbidden)
		})
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "handler")
	})

	rec := httptest.NewRecorder()
	rtr.NewChain(handler).WithMiddleware(deny).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusForbidden || !slices.Equal(calls, []string{"deny"}) {
		t.Errorf("status = %d, calls = %v", rec.Code, calls)
	}
}

func TestNewChainNilHandler(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when creating chain with nil handler")
		}
	}()
	_ = rtr.NewChain(nil)
}

func TestParamsByName(t *testing.T) {
	ps := rtr.Params{{Key: "id", Value: "u1"}, {Key: "id", Value: "u2"}}
	if got := ps.ByName("id"); got != "u1" {
		t.Errorf("ByName(id) = %q", got)
	}
	if got := ps.ByName("missing"); got != "" {
		t.Errorf("ByName(missing) = %q", got)
	}
}
