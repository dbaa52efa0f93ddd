package log

import (
	"io"
	"log/slog"

	"github.com/caasmo/accounts/config"
	phuslog "github.com/phuslu/log"
)

// ProviderLeveler reads the minimum level from the live config, so a config
// update changes verbosity without rebuilding the logger.
type ProviderLeveler struct {
	provider *config.Provider
}

func NewProviderLeveler(provider *config.Provider) *ProviderLeveler {
	if provider == nil {
		panic("log: provider cannot be nil")
	}
	return &ProviderLeveler{provider: provider}
}

func (l *ProviderLeveler) Level() slog.Level {
	return l.provider.Get().Log.Level.Level
}

// New returns the application logger wrapped in a RedactHandler. The json
// format uses the phuslu/log slog handler, text uses slog's own.
func New(provider *config.Provider, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: NewProviderLeveler(provider)}

	var h slog.Handler
	switch provider.Get().Log.Format {
	case config.LogFormatJson:
		h = phuslog.SlogNewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactHandler(h))
}
