package core

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
)

const (
	MimeTypeJSON      = "application/json"
	MimeTypeMultipart = "multipart/form-data"
)

// GetClientIP extracts the client IP address from the request. When
// [server] client_ip_proxy_header is set and present, its first address
// wins over the connection address.
func (a *App) GetClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if header := a.Config().Server.ClientIpProxyHeader; header != "" {
		if forwarded := r.Header.Get(header); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			ip = strings.TrimSpace(parts[0])
		}
	}
	return ip
}

// decodeJson decodes the request body into v. On failure it writes the
// error response and returns false.
func decodeJson(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJsonError(w, errorTooLarge)
		return false
	}
	writeJsonError(w, errorInvalidRequest)
	return false
}
