package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/fairyhunter13/ai-talent-screener/internal/config"
)

// SetupLogger configures a JSON slog logger on stdout tagged with the service
// name and environment.
func SetupLogger(cfg config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	// dev gets debug output
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, opts)).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}
