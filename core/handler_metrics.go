package core

import (
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves Prometheus metrics in the standard format
// Endpoint: GET /metrics
// Authenticated: No, restricted to [metrics] allowed_ips
// Allowed Mimetype: text/plain
//
// Disabled metrics and unlisted clients get 404.
func (a *App) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.Config().Metrics
	if !cfg.Enabled {
		writeJsonError(w, errorNotFound)
		return
	}

	if !slices.Contains(cfg.AllowedIPs, a.GetClientIP(r)) {
		writeJsonError(w, errorNotFound)
		return
	}

	promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
