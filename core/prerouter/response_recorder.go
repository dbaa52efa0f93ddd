package prerouter

import (
	"net/http"

	"github.com/caasmo/accounts/core"
)

// Recorder starts the shared core.ResponseRecorder. It must be the first
// middleware of the chain, RequestLog and Metrics read from it.
type Recorder struct {
	app *core.App
}

func NewRecorder(app *core.App) *Recorder {
	return &Recorder{
		app: app,
	}
}

func (m *Recorder) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(core.NewResponseRecorder(w), r)
	})
}
