package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caasmo/accounts/config"
)

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name                string
		remoteAddr          string
		proxyHeader         string
		proxyHeaderValue    string
		clientIpProxyHeader string
		expectedIP          string
	}{
		{
			name:       "direct connection ipv4",
			remoteAddr: "192.0.2.1:12345",
			expectedIP: "192.0.2.1",
		},
		{
			name:       "direct connection ipv6",
			remoteAddr: "[2001:db8::1]:12345",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "direct connection no port",
			remoteAddr: "192.0.2.1",
			expectedIP: "192.0.2.1",
		},
		{
			name:                "proxy connection",
			remoteAddr:          "198.51.100.1:54321",
			proxyHeader:         "X-Forwarded-For",
			proxyHeaderValue:    "203.0.113.1",
			clientIpProxyHeader: "X-Forwarded-For",
			expectedIP:          "203.0.113.1",
		},
		{
			name:                "proxy connection multiple ips",
			remoteAddr:          "198.51.100.1:54321",
			proxyHeader:         "X-Forwarded-For",
			proxyHeaderValue:    "203.0.113.1, 198.51.100.2",
			clientIpProxyHeader: "X-Forwarded-For",
			expectedIP:          "203.0.113.1",
		},
		{
			name:                "proxy header not set",
			remoteAddr:          "192.0.2.1:12345",
			clientIpProxyHeader: "X-Forwarded-For",
			expectedIP:          "192.0.2.1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Server: config.Server{ClientIpProxyHeader: tc.clientIpProxyHeader},
			}
			provider := config.NewProvider(cfg)

			app := &App{}
			app.SetConfigProvider(provider)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.proxyHeader != "" {
				req.Header.Set(tc.proxyHeader, tc.proxyHeaderValue)
			}

			ip := app.GetClientIP(req)

			if ip != tc.expectedIP {
				t.Errorf("GetClientIP() = %q, want %q", ip, tc.expectedIP)
			}
		})
	}
}

func TestDecodeJson(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		limit      int64
		wantOk     bool
		wantStatus int
	}{
		{"valid", `{"email":"ann@x.com"}`, 1024, true, http.StatusOK},
		{"malformed", `{"email":`, 1024, false, http.StatusBadRequest},
		{"over limit", `{"email":"` + strings.Repeat("a", 200) + `"}`, 64, false, http.StatusRequestEntityTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			req.Body = http.MaxBytesReader(rr, req.Body, tc.limit)

			var v struct {
				Email string `json:"email"`
			}
			ok := decodeJson(rr, req, &v)
			if ok != tc.wantOk {
				t.Fatalf("decodeJson() = %v, want %v", ok, tc.wantOk)
			}
			if rr.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if ok && v.Email != "ann@x.com" {
				t.Errorf("unexpected email %q", v.Email)
			}
		})
	}
}
