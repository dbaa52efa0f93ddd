package prerouter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/core"
)

// newTestApp returns an App carrying only what the middlewares read: the
// config and a logger writing JSON to logs.
func newTestApp(t *testing.T, cfg *config.Config, logs io.Writer) *core.App {
	t.Helper()
	if logs == nil {
		logs = io.Discard
	}
	app := &core.App{}
	app.SetConfigProvider(config.NewProvider(cfg))
	app.SetLogger(slog.New(slog.NewJSONHandler(logs, nil)))
	return app
}

// lastRecord decodes the last JSON log line in b.
func lastRecord(t *testing.T, b *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(b.Bytes()), []byte("\n"))
	var record map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &record); err != nil {
		t.Fatalf("failed to parse log output %q: %v", b.String(), err)
	}
	return record
}
