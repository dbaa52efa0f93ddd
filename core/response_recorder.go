package core

import (
	"net/http"
	"time"
)

// ResponseRecorder wraps the response writer of a request to capture the
// status and size of the response for the request log and the metrics.
type ResponseRecorder struct {
	http.ResponseWriter
	Status       int
	WroteHeader  bool
	BytesWritten int64
	StartTime    time.Time
}

// NewResponseRecorder returns a recorder started now. Status defaults to
// 200 for handlers that write a body without calling WriteHeader.
func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{
		ResponseWriter: w,
		Status:         http.StatusOK,
		StartTime:      time.Now(),
	}
}

// WriteHeader captures the status code and marks headers as written
func (r *ResponseRecorder) WriteHeader(status int) {
	if !r.WroteHeader {
		r.Status = status
		r.WroteHeader = true
		r.ResponseWriter.WriteHeader(status)
	}
}

// Write captures bytes written and ensures headers are written first
func (r *ResponseRecorder) Write(b []byte) (int, error) {
	if !r.WroteHeader {
		r.WriteHeader(http.StatusOK)
	}

	n, err := r.ResponseWriter.Write(b)
	r.BytesWritten += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *ResponseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Duration returns the time elapsed since the request started
func (r *ResponseRecorder) Duration() time.Duration {
	return time.Since(r.StartTime)
}
