package core

import (
	"net/http"
)

// HeadersJson are set on every JSON API response.
var HeadersJson = map[string]string{
	"Content-Type": "application/json; charset=utf-8",

	// Ensure the browser respects the declared content type strictly.
	"X-Content-Type-Options": "nosniff",

	// Responses carry tokens and personal data: never stored by any cache.
	"Cache-Control": "no-store, no-cache, must-revalidate",

	"X-Frame-Options": "DENY",

	// JSON is never an active document. frame-ancestors replaces
	// X-Frame-Options in modern browsers.
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// setHeaders applies one or more sets of headers to the response writer.
// Headers from later maps will overwrite headers from earlier maps if keys conflict.
func setHeaders(w http.ResponseWriter, headers ...map[string]string) {
	for _, headerMap := range headers {
		for key, value := range headerMap {
			w.Header().Set(key, value)
		}
	}
}
