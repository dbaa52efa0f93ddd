package prerouter

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caasmo/accounts/core"
)

const logMessage = "http_request"

// cutStr limits string length by adding ellipsis if needed
func cutStr(str string, max int) string {
	if max > 0 && len(str) > max {
		return str[:max] + "..."
	}
	return str
}

var logType = slog.String("type", "request")

// RequestLog logs one line per request once the response is written. It
// never logs bodies or the Authorization header.
type RequestLog struct {
	app *core.App
}

func NewRequestLog(app *core.App) *RequestLog {
	return &RequestLog{
		app: app,
	}
}

func (m *RequestLog) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := m.app.Config().Log.Request
		if !cfg.Activated {
			next.ServeHTTP(w, r)
			return
		}

		rec, ok := w.(*core.ResponseRecorder)
		if !ok {
			m.app.Logger().Error("request log: expected core.ResponseRecorder",
				"got", fmt.Sprintf("%T", w))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(rec, r)

		limits := cfg.Limits
		attrs := make([]any, 0, 13)
		attrs = append(attrs, logType)
		attrs = append(attrs, slog.String("method", strings.ToUpper(r.Method)))
		attrs = append(attrs, slog.String("uri", cutStr(r.URL.RequestURI(), limits.URILength)))
		attrs = append(attrs, slog.Int("status", rec.Status))
		attrs = append(attrs, slog.Duration("duration", rec.Duration()))
		attrs = append(attrs, slog.Int64("bytes", rec.BytesWritten))
		attrs = append(attrs, slog.String("remote_ip", cutStr(m.app.GetClientIP(r), limits.RemoteIPLength)))
		attrs = append(attrs, slog.String("user_agent", cutStr(r.UserAgent(), limits.UserAgentLength)))
		attrs = append(attrs, slog.String("referer", cutStr(r.Referer(), limits.RefererLength)))
		attrs = append(attrs, slog.String("host", cutStr(r.Host, limits.RemoteIPLength)))
		attrs = append(attrs, slog.String("proto", r.Proto))
		attrs = append(attrs, slog.Int64("content_length", r.ContentLength))
		attrs = append(attrs, slog.Bool("tls", r.TLS != nil))

		m.app.Logger().Info(logMessage, attrs...)
	})
}
