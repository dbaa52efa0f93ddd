package prerouter

import (
	"net/http"
	"slices"

	"github.com/caasmo/accounts/core"
)

// BlockRequestBody limits the size of request bodies.
type BlockRequestBody struct {
	app *core.App
}

func NewBlockRequestBody(app *core.App) *BlockRequestBody {
	return &BlockRequestBody{
		app: app,
	}
}

func (m *BlockRequestBody) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := m.app.Config().BlockRequestBody

		if !cfg.Activated || slices.Contains(cfg.ExcludedPaths, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.Limit)
		next.ServeHTTP(w, r)
	})
}
